package identity

import (
	"context"

	id "licensio/pkg/domain"
)

// Store is interface-driven to keep the service testable and to allow
// swapping in-memory and postgres persistence without rewiring business code.
// Implementations return sentinel.ErrNotFound / sentinel.ErrConflict.
type Store interface {
	Create(ctx context.Context, identity Identity) error
	FindByID(ctx context.Context, userID id.UserID) (Identity, error)
	FindByEmail(ctx context.Context, email string) (Identity, error)
	Count(ctx context.Context) (int, error)
}
