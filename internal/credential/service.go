package credential

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"licensio/internal/credential/metrics"
	id "licensio/pkg/domain"
	dErrors "licensio/pkg/domain-errors"
	"licensio/pkg/platform/sentinel"
	pstrings "licensio/pkg/platform/strings"
	"licensio/pkg/secrets"
)

// maxKeyAttempts bounds collision retries during issuance. Collisions are
// astronomically rare with 24 random bytes, but the store treats them as
// possible and the service retries rather than assuming.
const maxKeyAttempts = 5

// IdentityDirectory resolves whether a target identity exists.
type IdentityDirectory interface {
	Exists(ctx context.Context, userID id.UserID) (bool, error)
}

// ProductDirectory resolves whether a product exists.
type ProductDirectory interface {
	Exists(ctx context.Context, productID id.ProductID) (bool, error)
}

// Service owns the credential lifecycle: issuance, whitelist updates, and
// revocation. Every mutating operation takes an explicit caller and enforces
// scope server-side before touching the store.
type Service struct {
	store      Store
	identities IdentityDirectory
	products   ProductDirectory
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func NewService(store Store, identities IdentityDirectory, products ProductDirectory, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		store:      store,
		identities: identities,
		products:   products,
		metrics:    m,
		logger:     logger.With("component", "credential.service"),
	}
}

// Issue creates a credential for the target identity and product. The
// returned Issued.APISecret is the only time the plaintext secret is ever
// exposed; only its bcrypt hash is persisted.
//
// ttlDays == nil issues a non-expiring credential. Zero and negative values
// are rejected; the engine accepts any positive day count, not just the
// RecommendedTTLDays presets.
func (s *Service) Issue(ctx context.Context, caller id.Caller, targetID id.UserID, productID id.ProductID, ttlDays *int) (Issued, error) {
	if !caller.IsAdmin() {
		return Issued{}, dErrors.New(dErrors.CodeForbidden, "only admins can issue credentials")
	}
	if ttlDays != nil && *ttlDays <= 0 {
		return Issued{}, dErrors.New(dErrors.CodeInvalidInput, "ttl_days must be a positive number of days")
	}

	ok, err := s.identities.Exists(ctx, targetID)
	if err != nil {
		return Issued{}, dErrors.Wrap(dErrors.CodeInternal, "could not resolve target identity", err)
	}
	if !ok {
		return Issued{}, dErrors.New(dErrors.CodeNotFound, "target identity not found")
	}
	ok, err = s.products.Exists(ctx, productID)
	if err != nil {
		return Issued{}, dErrors.Wrap(dErrors.CodeInternal, "could not resolve product", err)
	}
	if !ok {
		return Issued{}, dErrors.New(dErrors.CodeNotFound, "product not found")
	}

	secret, err := secrets.Generate()
	if err != nil {
		return Issued{}, dErrors.Wrap(dErrors.CodeInternal, "could not generate secret", err)
	}
	secretHash, err := secrets.Hash(secret)
	if err != nil {
		return Issued{}, dErrors.Wrap(dErrors.CodeInternal, "could not hash secret", err)
	}

	now := time.Now().UTC()
	var expiresAt *time.Time
	if ttlDays != nil {
		t := now.Add(time.Duration(*ttlDays) * 24 * time.Hour)
		expiresAt = &t
	}

	for attempt := 0; attempt < maxKeyAttempts; attempt++ {
		keyString, err := secrets.GenerateKeyString()
		if err != nil {
			return Issued{}, dErrors.Wrap(dErrors.CodeInternal, "could not generate key string", err)
		}

		c := Credential{
			ID:             id.NewCredentialID(),
			KeyString:      keyString,
			SecretHash:     secretHash,
			OwnerID:        targetID,
			ProductID:      productID,
			Status:         StatusActive,
			ExpiresAt:      expiresAt,
			AllowedDomains: nil,
			CreatedAt:      now,
		}

		err = s.store.Create(ctx, c)
		if err == nil {
			s.metrics.IncrementIssued()
			return Issued{Credential: c, APISecret: secret}, nil
		}
		if errors.Is(err, sentinel.ErrConflict) {
			s.metrics.IncrementCollision()
			s.logger.WarnContext(ctx, "key string collision, retrying",
				"attempt", attempt+1,
			)
			continue
		}
		return Issued{}, dErrors.Wrap(dErrors.CodeInternal, "could not persist credential", err)
	}

	return Issued{}, dErrors.New(dErrors.CodeConflict, "could not allocate a unique key string")
}

// UpdateAllowedDomains replaces the whitelist. Owner or admin only. An empty
// set is valid and means unrestricted.
func (s *Service) UpdateAllowedDomains(ctx context.Context, caller id.Caller, credentialID id.CredentialID, domains []string) (Credential, error) {
	c, err := s.load(ctx, credentialID)
	if err != nil {
		return Credential{}, err
	}
	if !caller.IsAdmin() && c.OwnerID != caller.UserID {
		return Credential{}, dErrors.New(dErrors.CodeForbidden, "credential belongs to another identity")
	}

	normalized := pstrings.DedupeAndTrimLower(domains)
	if err := s.store.UpdateDomains(ctx, credentialID, normalized); err != nil {
		return Credential{}, dErrors.Wrap(dErrors.CodeInternal, "could not update domains", err)
	}

	c.AllowedDomains = normalized
	s.logger.InfoContext(ctx, "allowed domains updated",
		"credential_id", credentialID,
		"domain_count", len(normalized),
	)
	return c, nil
}

// Revoke is admin-only and terminal. There is no unrevoke.
func (s *Service) Revoke(ctx context.Context, caller id.Caller, credentialID id.CredentialID) (Credential, error) {
	if !caller.IsAdmin() {
		return Credential{}, dErrors.New(dErrors.CodeForbidden, "only admins can revoke credentials")
	}
	c, err := s.load(ctx, credentialID)
	if err != nil {
		return Credential{}, err
	}

	if err := s.store.Revoke(ctx, credentialID); err != nil {
		return Credential{}, dErrors.Wrap(dErrors.CodeInternal, "could not revoke credential", err)
	}

	c.Status = StatusRevoked
	s.metrics.IncrementRevoked()
	s.logger.InfoContext(ctx, "credential revoked",
		"credential_id", credentialID,
	)
	return c, nil
}

// ListForCaller returns all credentials for admins and only owned
// credentials for customers.
func (s *Service) ListForCaller(ctx context.Context, caller id.Caller) ([]Credential, error) {
	var (
		credentials []Credential
		err         error
	)
	if caller.IsAdmin() {
		credentials, err = s.store.ListAll(ctx)
	} else {
		credentials, err = s.store.ListByOwner(ctx, caller.UserID)
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "could not list credentials", err)
	}
	return credentials, nil
}

// ActiveCount reports the number of active credentials for the dashboard.
func (s *Service) ActiveCount(ctx context.Context) (int, error) {
	return s.store.CountActive(ctx)
}

func (s *Service) load(ctx context.Context, credentialID id.CredentialID) (Credential, error) {
	c, err := s.store.FindByID(ctx, credentialID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Credential{}, dErrors.New(dErrors.CodeNotFound, "credential not found")
		}
		return Credential{}, dErrors.Wrap(dErrors.CodeInternal, "could not load credential", err)
	}
	return c, nil
}
