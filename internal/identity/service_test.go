package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"licensio/internal/identity"
	"licensio/internal/identity/store"
	id "licensio/pkg/domain"
	dErrors "licensio/pkg/domain-errors"
)

type staticTokens struct{ token string }

func (t staticTokens) GenerateAccessToken(id.UserID, id.Role, time.Duration) (string, error) {
	return t.token, nil
}

type IdentityServiceSuite struct {
	suite.Suite
	service *identity.Service
	ctx     context.Context
}

func (s *IdentityServiceSuite) SetupTest() {
	s.service = identity.NewService(store.NewMemory(), staticTokens{token: "signed-token"}, time.Hour, nil)
	s.ctx = context.Background()
}

func (s *IdentityServiceSuite) SetupSubTest() {
	s.SetupTest()
}

func TestIdentityServiceSuite(t *testing.T) {
	suite.Run(t, new(IdentityServiceSuite))
}

func (s *IdentityServiceSuite) TestRegister() {
	s.Run("creates a customer identity", func() {
		ident, err := s.service.Register(s.ctx, "user@example.com", "long-enough", "Ada Lovelace")
		s.Require().NoError(err)

		s.Equal(id.RoleCustomer, ident.Role)
		s.Equal("user@example.com", ident.Email)
		s.Equal("Ada Lovelace", ident.FullName)
		s.NotEqual("long-enough", ident.PasswordHash)
	})

	s.Run("rejects malformed email", func() {
		_, err := s.service.Register(s.ctx, "not-an-email", "long-enough", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("rejects short password", func() {
		_, err := s.service.Register(s.ctx, "user@example.com", "short", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("duplicate email is a conflict", func() {
		_, err := s.service.Register(s.ctx, "dup@example.com", "long-enough", "")
		s.Require().NoError(err)

		_, err = s.service.Register(s.ctx, "DUP@example.com", "long-enough", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *IdentityServiceSuite) TestLogin() {
	s.Run("valid credentials return a token and the identity", func() {
		registered, err := s.service.Register(s.ctx, "user@example.com", "long-enough", "")
		s.Require().NoError(err)

		token, ident, err := s.service.Login(s.ctx, "user@example.com", "long-enough")
		s.Require().NoError(err)
		s.Equal("signed-token", token)
		s.Equal(registered.ID, ident.ID)
	})

	s.Run("unknown email and wrong password give the same error", func() {
		_, err := s.service.Register(s.ctx, "user@example.com", "long-enough", "")
		s.Require().NoError(err)

		_, _, errUnknown := s.service.Login(s.ctx, "ghost@example.com", "long-enough")
		_, _, errWrong := s.service.Login(s.ctx, "user@example.com", "wrong-password")

		s.Require().Error(errUnknown)
		s.Require().Error(errWrong)
		s.True(dErrors.HasCode(errUnknown, dErrors.CodeUnauthorized))
		s.True(dErrors.HasCode(errWrong, dErrors.CodeUnauthorized))
		s.Equal(errUnknown.Error(), errWrong.Error())
	})
}

func (s *IdentityServiceSuite) TestProfileAndExists() {
	s.Run("profile returns the caller's record", func() {
		registered, err := s.service.Register(s.ctx, "user@example.com", "long-enough", "")
		s.Require().NoError(err)

		ident, err := s.service.Profile(s.ctx, id.Caller{UserID: registered.ID, Role: id.RoleCustomer})
		s.Require().NoError(err)
		s.Equal(registered.Email, ident.Email)
	})

	s.Run("unknown caller is NotFound", func() {
		_, err := s.service.Profile(s.ctx, id.Caller{UserID: id.NewUserID(), Role: id.RoleCustomer})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("exists reflects store contents", func() {
		registered, err := s.service.Register(s.ctx, "user2@example.com", "long-enough", "")
		s.Require().NoError(err)

		ok, err := s.service.Exists(s.ctx, registered.ID)
		s.Require().NoError(err)
		s.True(ok)

		ok, err = s.service.Exists(s.ctx, id.NewUserID())
		s.Require().NoError(err)
		s.False(ok)
	})
}

func (s *IdentityServiceSuite) TestSeedAdmin() {
	s.Run("seeds an admin that can log in", func() {
		s.Require().NoError(s.service.SeedAdmin(s.ctx, "admin@example.com", "admin-password"))

		_, ident, err := s.service.Login(s.ctx, "admin@example.com", "admin-password")
		s.Require().NoError(err)
		s.Equal(id.RoleAdmin, ident.Role)
	})

	s.Run("seeding twice is a no-op", func() {
		s.Require().NoError(s.service.SeedAdmin(s.ctx, "admin@example.com", "admin-password"))
		s.Require().NoError(s.service.SeedAdmin(s.ctx, "admin@example.com", "different-password"))

		count, err := s.service.TotalUsers(s.ctx)
		s.Require().NoError(err)
		s.Equal(1, count)
	})

	s.Run("blank settings skip seeding", func() {
		fresh := identity.NewService(store.NewMemory(), staticTokens{}, time.Hour, nil)
		s.Require().NoError(fresh.SeedAdmin(s.ctx, "", ""))

		count, err := fresh.TotalUsers(s.ctx)
		s.Require().NoError(err)
		s.Equal(0, count)
	})
}
