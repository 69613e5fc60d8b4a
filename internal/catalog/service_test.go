package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"licensio/internal/catalog"
	"licensio/internal/catalog/store"
	id "licensio/pkg/domain"
	dErrors "licensio/pkg/domain-errors"
)

type CatalogServiceSuite struct {
	suite.Suite
	service *catalog.Service
	admin   id.Caller
	ctx     context.Context
}

func (s *CatalogServiceSuite) SetupTest() {
	s.service = catalog.NewService(store.NewMemory())
	s.admin = id.Caller{UserID: id.NewUserID(), Role: id.RoleAdmin}
	s.ctx = context.Background()
}

func TestCatalogServiceSuite(t *testing.T) {
	suite.Run(t, new(CatalogServiceSuite))
}

func (s *CatalogServiceSuite) TestCreate() {
	s.Run("creates a product with a normalized slug", func() {
		product, err := s.service.Create(s.ctx, s.admin, "  Pro Plan ", " PRO-PLAN ", "desc")
		s.Require().NoError(err)
		s.Equal("Pro Plan", product.Name)
		s.Equal("pro-plan", product.Slug)
	})

	s.Run("customers are forbidden", func() {
		customer := id.Caller{UserID: id.NewUserID(), Role: id.RoleCustomer}
		_, err := s.service.Create(s.ctx, customer, "Pro", "pro", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("rejects invalid slugs", func() {
		for _, slug := range []string{"", "has space", "trailing-", "-leading", "under_score"} {
			_, err := s.service.Create(s.ctx, s.admin, "Name", slug, "")
			s.Require().Error(err, "slug %q", slug)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		}
	})

	s.Run("duplicate slug is a conflict", func() {
		_, err := s.service.Create(s.ctx, s.admin, "First", "plan", "")
		s.Require().NoError(err)

		_, err = s.service.Create(s.ctx, s.admin, "Second", "plan", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *CatalogServiceSuite) TestListAndGet() {
	s.Run("list returns products sorted by slug", func() {
		_, err := s.service.Create(s.ctx, s.admin, "Zeta", "zeta", "")
		s.Require().NoError(err)
		_, err = s.service.Create(s.ctx, s.admin, "Alpha", "alpha", "")
		s.Require().NoError(err)

		products, err := s.service.List(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(products, 2)
		s.Equal("alpha", products[0].Slug)
		s.Equal("zeta", products[1].Slug)
	})

	s.Run("get by id and existence checks", func() {
		created, err := s.service.Create(s.ctx, s.admin, "Pro", "pro", "")
		s.Require().NoError(err)

		got, err := s.service.Get(s.ctx, created.ID)
		s.Require().NoError(err)
		s.Equal(created.Slug, got.Slug)

		ok, err := s.service.Exists(s.ctx, created.ID)
		s.Require().NoError(err)
		s.True(ok)

		_, err = s.service.Get(s.ctx, id.NewProductID())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
