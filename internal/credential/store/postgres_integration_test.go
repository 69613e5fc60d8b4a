//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"licensio/internal/credential"
	"licensio/internal/credential/store"
	id "licensio/pkg/domain"
	"licensio/pkg/platform/sentinel"
	"licensio/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres

	owner   id.UserID
	product id.ProductID
	ctx     context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) TearDownSuite() {
	_ = s.postgres.DB.Close()
	_ = s.postgres.Container.Terminate(context.Background())
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateAll(s.ctx))

	// Credentials reference an identity and a product.
	s.owner = id.NewUserID()
	s.product = id.NewProductID()
	_, err := s.postgres.DB.ExecContext(s.ctx,
		`INSERT INTO identities (id, email, full_name, password_hash, role, created_at)
		 VALUES ($1, $2, '', 'x', 'customer', now())`,
		s.owner.String(), s.owner.String()+"@example.com")
	s.Require().NoError(err)
	_, err = s.postgres.DB.ExecContext(s.ctx,
		`INSERT INTO products (id, name, slug, description)
		 VALUES ($1, 'Product', $2, '')`,
		s.product.String(), "p-"+s.product.String())
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newCredential(keyString string) credential.Credential {
	return credential.Credential{
		ID:         id.NewCredentialID(),
		KeyString:  keyString,
		SecretHash: "$2a$10$fakefakefakefakefakefake",
		OwnerID:    s.owner,
		ProductID:  s.product,
		Status:     credential.StatusActive,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	c := s.newCredential("lk_roundtrip")
	expires := time.Now().UTC().Add(7 * 24 * time.Hour).Truncate(time.Microsecond)
	c.ExpiresAt = &expires
	c.AllowedDomains = []string{"example.com", "app.example.com"}

	s.Require().NoError(s.store.Create(s.ctx, c))

	byKey, err := s.store.FindByKey(s.ctx, "lk_roundtrip")
	s.Require().NoError(err)
	s.Equal(c.ID, byKey.ID)
	s.Equal(c.OwnerID, byKey.OwnerID)
	s.Equal(c.AllowedDomains, byKey.AllowedDomains)
	s.Require().NotNil(byKey.ExpiresAt)
	s.True(byKey.ExpiresAt.Equal(expires))

	byID, err := s.store.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.KeyString, byID.KeyString)
}

func (s *PostgresStoreSuite) TestKeyUniqueness() {
	c1 := s.newCredential("lk_duplicate")
	c2 := s.newCredential("lk_duplicate")

	s.Require().NoError(s.store.Create(s.ctx, c1))
	err := s.store.Create(s.ctx, c2)
	s.Require().Error(err)
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestUpdateDomainsAndRevoke() {
	c := s.newCredential("lk_mutable")
	s.Require().NoError(s.store.Create(s.ctx, c))

	s.Require().NoError(s.store.UpdateDomains(s.ctx, c.ID, []string{"example.com"}))
	updated, err := s.store.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal([]string{"example.com"}, updated.AllowedDomains)

	s.Require().NoError(s.store.Revoke(s.ctx, c.ID))
	revoked, err := s.store.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(credential.StatusRevoked, revoked.Status)

	s.ErrorIs(s.store.UpdateDomains(s.ctx, id.NewCredentialID(), nil), sentinel.ErrNotFound)
	s.ErrorIs(s.store.Revoke(s.ctx, id.NewCredentialID()), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListingAndCounts() {
	s.Require().NoError(s.store.Create(s.ctx, s.newCredential("lk_one")))
	s.Require().NoError(s.store.Create(s.ctx, s.newCredential("lk_two")))

	revoked := s.newCredential("lk_revoked")
	s.Require().NoError(s.store.Create(s.ctx, revoked))
	s.Require().NoError(s.store.Revoke(s.ctx, revoked.ID))

	all, err := s.store.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 3)

	owned, err := s.store.ListByOwner(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Len(owned, 3)

	none, err := s.store.ListByOwner(s.ctx, id.NewUserID())
	s.Require().NoError(err)
	s.Empty(none)

	active, err := s.store.CountActive(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, active)
}

func (s *PostgresStoreSuite) TestNotFound() {
	_, err := s.store.FindByKey(s.ctx, "lk_missing")
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.FindByID(s.ctx, id.NewCredentialID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}
