package credential

import (
	"context"

	id "licensio/pkg/domain"
)

// Store persists credentials. Implementations return sentinel.ErrNotFound and
// sentinel.ErrConflict; Create must enforce key string uniqueness atomically
// so concurrent issuance cannot produce duplicates.
//
// Credentials are never deleted: validation events reference them
// indefinitely for audit linkage.
type Store interface {
	Create(ctx context.Context, credential Credential) error
	FindByID(ctx context.Context, credentialID id.CredentialID) (Credential, error)

	// FindByKey is the hot-path read: a point lookup whose cost must not
	// depend on how many credentials or events exist.
	FindByKey(ctx context.Context, keyString string) (Credential, error)

	ListByOwner(ctx context.Context, ownerID id.UserID) ([]Credential, error)
	ListAll(ctx context.Context) ([]Credential, error)

	// UpdateDomains replaces the whitelist set.
	UpdateDomains(ctx context.Context, credentialID id.CredentialID, domains []string) error

	// Revoke sets status=revoked. Irreversible; there is no inverse operation.
	Revoke(ctx context.Context, credentialID id.CredentialID) error

	CountActive(ctx context.Context) (int, error)
}
