package catalog_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"licensio/internal/catalog"
	"licensio/internal/catalog/store"
	id "licensio/pkg/domain"
	"licensio/pkg/testutil"
)

type CatalogHandlerSuite struct {
	suite.Suite

	router chi.Router
	admin  id.Caller
}

func (s *CatalogHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := catalog.NewService(store.NewMemory())
	handler := catalog.NewHandler(service, logger)

	s.router = chi.NewRouter()
	handler.RegisterAdmin(s.router)
	handler.RegisterAuthenticated(s.router)
	s.admin = id.Caller{UserID: id.NewUserID(), Role: id.RoleAdmin}
}

func TestCatalogHandlerSuite(t *testing.T) {
	suite.Run(t, new(CatalogHandlerSuite))
}

func (s *CatalogHandlerSuite) createProduct(caller id.Caller, name, slug string) *httptest.ResponseRecorder {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/create-product", map[string]any{
		"name":        name,
		"slug":        slug,
		"description": "test product",
	})
	req = testutil.AsCaller(req, caller)
	return testutil.DoRequest(s.router, req)
}

func (s *CatalogHandlerSuite) TestCreateEndpoint() {
	s.Run("admin creates a product", func() {
		rr := s.createProduct(s.admin, "Widget Pro", "Widget-Pro")

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		created := testutil.UnmarshalResponse[map[string]catalog.Public](s.T(), rr)
		s.Equal("Widget Pro", (*created)["data"].Name)
		s.Equal("widget-pro", (*created)["data"].Slug)
		s.NotEmpty((*created)["data"].ID)
	})

	s.Run("duplicate slug is a conflict", func() {
		rr := s.createProduct(s.admin, "First", "dup-slug")
		testutil.AssertStatus(s.T(), rr, http.StatusCreated)

		rr = s.createProduct(s.admin, "Second", "dup-slug")
		testutil.AssertStatus(s.T(), rr, http.StatusConflict)
		testutil.AssertErrorCode(s.T(), rr, "conflict")
	})

	s.Run("invalid slug is invalid_input", func() {
		rr := s.createProduct(s.admin, "Broken", "no spaces allowed")
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
		testutil.AssertErrorCode(s.T(), rr, "invalid_input")
	})

	s.Run("customer caller is forbidden", func() {
		customer := id.Caller{UserID: id.NewUserID(), Role: id.RoleCustomer}
		rr := s.createProduct(customer, "Nope", "nope")
		testutil.AssertStatus(s.T(), rr, http.StatusForbidden)
	})
}

func (s *CatalogHandlerSuite) TestListEndpoint() {
	testutil.AssertStatus(s.T(), s.createProduct(s.admin, "Beta", "beta"), http.StatusCreated)
	testutil.AssertStatus(s.T(), s.createProduct(s.admin, "Alpha", "alpha"), http.StatusCreated)

	req := testutil.NewRequest(s.T(), http.MethodGet, "/customer/products")
	req = testutil.AsCaller(req, id.Caller{UserID: id.NewUserID(), Role: id.RoleCustomer})
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	listed := testutil.UnmarshalResponse[map[string][]catalog.Public](s.T(), rr)
	s.Require().Len((*listed)["data"], 2)
	s.Equal("alpha", (*listed)["data"][0].Slug)
	s.Equal("beta", (*listed)["data"][1].Slug)
}
