package store

import (
	"context"
	"strings"
	"sync"

	"licensio/internal/identity"
	id "licensio/pkg/domain"
	"licensio/pkg/platform/sentinel"
)

// Memory is the in-memory identity store used in dev mode and unit tests.
type Memory struct {
	mu      sync.RWMutex
	byID    map[id.UserID]identity.Identity
	byEmail map[string]id.UserID
}

func NewMemory() *Memory {
	return &Memory{
		byID:    make(map[id.UserID]identity.Identity),
		byEmail: make(map[string]id.UserID),
	}
}

func (s *Memory) Create(_ context.Context, ident identity.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(ident.Email)
	if _, exists := s.byEmail[key]; exists {
		return sentinel.ErrConflict
	}
	s.byID[ident.ID] = ident
	s.byEmail[key] = ident.ID
	return nil
}

func (s *Memory) FindByID(_ context.Context, userID id.UserID) (identity.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ident, ok := s.byID[userID]
	if !ok {
		return identity.Identity{}, sentinel.ErrNotFound
	}
	return ident, nil
}

func (s *Memory) FindByEmail(_ context.Context, email string) (identity.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return identity.Identity{}, sentinel.ErrNotFound
	}
	return s.byID[userID], nil
}

func (s *Memory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}
