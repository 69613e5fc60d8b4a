// Package domain holds the typed identifiers shared across modules. IDs are
// distinct types over uuid.UUID so the compiler rejects cross-type assignment
// (a CredentialID can never be passed where a UserID is expected).
package domain

import (
	"github.com/google/uuid"

	dErrors "licensio/pkg/domain-errors"
)

type (
	// UserID identifies an identity record (admin or customer).
	UserID uuid.UUID

	// ProductID identifies a catalog product.
	ProductID uuid.UUID

	// CredentialID identifies an issued license key.
	CredentialID uuid.UUID

	// EventID identifies a validation event.
	EventID uuid.UUID
)

// maxIDLength bounds parser input before uuid.Parse sees it. UUIDs are 36
// characters; anything longer is garbage or an attack vector.
const maxIDLength = 64

func parseUUID(value, what string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" must not be empty")
	}
	if len(value) > maxIDLength {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" is not a valid UUID")
	}
	parsed, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" must not be the nil UUID")
	}
	return parsed, nil
}

// ParseUserID validates and converts a string into a UserID.
func ParseUserID(value string) (UserID, error) {
	parsed, err := parseUUID(value, "user id")
	return UserID(parsed), err
}

// ParseProductID validates and converts a string into a ProductID.
func ParseProductID(value string) (ProductID, error) {
	parsed, err := parseUUID(value, "product id")
	return ProductID(parsed), err
}

// ParseCredentialID validates and converts a string into a CredentialID.
func ParseCredentialID(value string) (CredentialID, error) {
	parsed, err := parseUUID(value, "credential id")
	return CredentialID(parsed), err
}

// NewUserID returns a freshly generated UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewProductID returns a freshly generated ProductID.
func NewProductID() ProductID { return ProductID(uuid.New()) }

// NewCredentialID returns a freshly generated CredentialID.
func NewCredentialID() CredentialID { return CredentialID(uuid.New()) }

// NewEventID returns a freshly generated EventID.
func NewEventID() EventID { return EventID(uuid.New()) }

func (id UserID) String() string       { return uuid.UUID(id).String() }
func (id ProductID) String() string    { return uuid.UUID(id).String() }
func (id CredentialID) String() string { return uuid.UUID(id).String() }
func (id EventID) String() string      { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id ProductID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id CredentialID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id EventID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
