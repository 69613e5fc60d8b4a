package catalog

import (
	"context"
	"errors"
	"regexp"
	"strings"

	id "licensio/pkg/domain"
	dErrors "licensio/pkg/domain-errors"
	"licensio/pkg/platform/sentinel"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Service owns the product catalog. Creation is admin-only, enforced by the
// caller check here and again at the router.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create adds a product. Slug must be unique and URL-safe.
func (s *Service) Create(ctx context.Context, caller id.Caller, name, slug, description string) (Product, error) {
	if !caller.IsAdmin() {
		return Product{}, dErrors.New(dErrors.CodeForbidden, "only admins can create products")
	}
	name = strings.TrimSpace(name)
	slug = strings.ToLower(strings.TrimSpace(slug))
	if name == "" {
		return Product{}, dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	if !slugPattern.MatchString(slug) {
		return Product{}, dErrors.New(dErrors.CodeInvalidInput, "slug must be lowercase letters, digits, and hyphens")
	}

	product := Product{
		ID:          id.NewProductID(),
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(description),
	}
	if err := s.store.Create(ctx, product); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return Product{}, dErrors.New(dErrors.CodeConflict, "slug is already in use")
		}
		return Product{}, dErrors.Wrap(dErrors.CodeInternal, "could not create product", err)
	}
	return product, nil
}

// List returns the catalog. Products carry no secrets, so customers and
// admins see the same set.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	products, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "could not list products", err)
	}
	return products, nil
}

// Exists reports whether a product is present. Used by issuance.
func (s *Service) Exists(ctx context.Context, productID id.ProductID) (bool, error) {
	_, err := s.store.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Get returns a product by ID.
func (s *Service) Get(ctx context.Context, productID id.ProductID) (Product, error) {
	product, err := s.store.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Product{}, dErrors.New(dErrors.CodeNotFound, "product not found")
		}
		return Product{}, dErrors.Wrap(dErrors.CodeInternal, "could not load product", err)
	}
	return product, nil
}
