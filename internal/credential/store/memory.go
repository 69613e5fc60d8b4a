package store

import (
	"context"
	"sort"
	"sync"

	"licensio/internal/credential"
	id "licensio/pkg/domain"
	"licensio/pkg/platform/sentinel"
)

// Memory is the in-memory credential store. Reads take the shared lock so
// concurrent validations on unrelated keys do not serialize; every returned
// credential is a deep copy, which gives each validation an internally
// consistent snapshot of status/expiry/domains/hash.
type Memory struct {
	mu    sync.RWMutex
	byID  map[id.CredentialID]credential.Credential
	byKey map[string]id.CredentialID
}

func NewMemory() *Memory {
	return &Memory{
		byID:  make(map[id.CredentialID]credential.Credential),
		byKey: make(map[string]id.CredentialID),
	}
}

func clone(c credential.Credential) credential.Credential {
	if c.AllowedDomains != nil {
		c.AllowedDomains = append([]string(nil), c.AllowedDomains...)
	}
	if c.ExpiresAt != nil {
		t := *c.ExpiresAt
		c.ExpiresAt = &t
	}
	return c
}

func (s *Memory) Create(_ context.Context, c credential.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byKey[c.KeyString]; exists {
		return sentinel.ErrConflict
	}
	s.byID[c.ID] = clone(c)
	s.byKey[c.KeyString] = c.ID
	return nil
}

func (s *Memory) FindByID(_ context.Context, credentialID id.CredentialID) (credential.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byID[credentialID]
	if !ok {
		return credential.Credential{}, sentinel.ErrNotFound
	}
	return clone(c), nil
}

func (s *Memory) FindByKey(_ context.Context, keyString string) (credential.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	credentialID, ok := s.byKey[keyString]
	if !ok {
		return credential.Credential{}, sentinel.ErrNotFound
	}
	return clone(s.byID[credentialID]), nil
}

func (s *Memory) ListByOwner(_ context.Context, ownerID id.UserID) ([]credential.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []credential.Credential
	for _, c := range s.byID {
		if c.OwnerID == ownerID {
			out = append(out, clone(c))
		}
	}
	sortByCreated(out)
	return out, nil
}

func (s *Memory) ListAll(_ context.Context) ([]credential.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]credential.Credential, 0, len(s.byID))
	for _, c := range s.byID {
		out = append(out, clone(c))
	}
	sortByCreated(out)
	return out, nil
}

func (s *Memory) UpdateDomains(_ context.Context, credentialID id.CredentialID, domains []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[credentialID]
	if !ok {
		return sentinel.ErrNotFound
	}
	c.AllowedDomains = append([]string(nil), domains...)
	s.byID[credentialID] = c
	return nil
}

func (s *Memory) Revoke(_ context.Context, credentialID id.CredentialID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[credentialID]
	if !ok {
		return sentinel.ErrNotFound
	}
	c.Status = credential.StatusRevoked
	s.byID[credentialID] = c
	return nil
}

func (s *Memory) CountActive(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, c := range s.byID {
		if c.Status == credential.StatusActive {
			count++
		}
	}
	return count, nil
}

func sortByCreated(credentials []credential.Credential) {
	sort.Slice(credentials, func(i, j int) bool {
		return credentials[i].CreatedAt.After(credentials[j].CreatedAt)
	})
}
