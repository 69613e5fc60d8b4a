package catalog

import (
	"context"

	id "licensio/pkg/domain"
)

// Store implementations return sentinel.ErrNotFound / sentinel.ErrConflict.
// Slug uniqueness is enforced here, not in the service.
type Store interface {
	Create(ctx context.Context, product Product) error
	FindByID(ctx context.Context, productID id.ProductID) (Product, error)
	List(ctx context.Context) ([]Product, error)
}
