package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"licensio/internal/identity/metrics"
	id "licensio/pkg/domain"
	dErrors "licensio/pkg/domain-errors"
	"licensio/pkg/platform/sentinel"
	"licensio/pkg/secrets"
)

// TokenIssuer signs access tokens for authenticated identities.
type TokenIssuer interface {
	GenerateAccessToken(userID id.UserID, role id.Role, expiresIn time.Duration) (string, error)
}

// Service owns registration, login, and profile reads. Registration always
// produces a customer; admin accounts are seeded at startup, never created
// through the public surface.
type Service struct {
	store    Store
	tokens   TokenIssuer
	tokenTTL time.Duration
	metrics  *metrics.Metrics
}

func NewService(store Store, tokens TokenIssuer, tokenTTL time.Duration, m *metrics.Metrics) *Service {
	return &Service{
		store:    store,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		metrics:  m,
	}
}

// Register creates a customer identity. Email uniqueness is enforced at the
// store; a duplicate surfaces as a conflict.
func (s *Service) Register(ctx context.Context, email, password, fullName string) (Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return Identity{}, dErrors.New(dErrors.CodeInvalidInput, "a valid email is required")
	}
	if len(password) < 8 {
		return Identity{}, dErrors.New(dErrors.CodeInvalidInput, "password must be at least 8 characters")
	}

	hash, err := secrets.Hash(password)
	if err != nil {
		return Identity{}, err
	}

	ident := Identity{
		ID:           id.NewUserID(),
		Email:        email,
		FullName:     strings.TrimSpace(fullName),
		PasswordHash: hash,
		Role:         id.RoleCustomer,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.Create(ctx, ident); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return Identity{}, dErrors.New(dErrors.CodeConflict, "email is already registered")
		}
		return Identity{}, dErrors.Wrap(dErrors.CodeInternal, "could not create identity", err)
	}

	s.metrics.IncrementUsersRegistered()
	return ident, nil
}

// Login verifies the password and returns a signed access token plus the
// identity. Unknown email and wrong password produce the same error so the
// endpoint does not leak which accounts exist.
func (s *Service) Login(ctx context.Context, email, password string) (string, Identity, error) {
	ident, err := s.store.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncrementLogin("failed")
			return "", Identity{}, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
		}
		return "", Identity{}, dErrors.Wrap(dErrors.CodeInternal, "could not look up identity", err)
	}

	if err := secrets.Verify(password, ident.PasswordHash); err != nil {
		s.metrics.IncrementLogin("failed")
		return "", Identity{}, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}

	token, err := s.tokens.GenerateAccessToken(ident.ID, ident.Role, s.tokenTTL)
	if err != nil {
		return "", Identity{}, dErrors.Wrap(dErrors.CodeInternal, "could not sign token", err)
	}

	s.metrics.IncrementLogin("ok")
	return token, ident, nil
}

// Profile returns the caller's own identity record.
func (s *Service) Profile(ctx context.Context, caller id.Caller) (Identity, error) {
	ident, err := s.store.FindByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Identity{}, dErrors.New(dErrors.CodeNotFound, "identity not found")
		}
		return Identity{}, dErrors.Wrap(dErrors.CodeInternal, "could not look up identity", err)
	}
	return ident, nil
}

// Exists reports whether the target identity is present. Used by issuance to
// validate the credential owner before generating key material.
func (s *Service) Exists(ctx context.Context, userID id.UserID) (bool, error) {
	_, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// SeedAdmin creates the admin account when it does not exist yet. Called once
// at startup; a conflict means another replica seeded first and is not an error.
func (s *Service) SeedAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return err
	}

	hash, err := secrets.Hash(password)
	if err != nil {
		return err
	}
	admin := Identity{
		ID:           id.NewUserID(),
		Email:        email,
		FullName:     "Administrator",
		PasswordHash: hash,
		Role:         id.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.Create(ctx, admin); err != nil && !errors.Is(err, sentinel.ErrConflict) {
		return err
	}
	return nil
}

// TotalUsers reports the identity count for the admin dashboard.
func (s *Service) TotalUsers(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}
