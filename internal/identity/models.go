package identity

import (
	"time"

	id "licensio/pkg/domain"
)

// Identity is an account that can hold credentials (customer) or administer
// the system (admin). The role is fixed at creation; there is no
// self-escalation path.
type Identity struct {
	ID           id.UserID
	Email        string
	FullName     string
	PasswordHash string
	Role         id.Role
	CreatedAt    time.Time
}

// Public is the caller-facing projection of an identity. The password hash
// never leaves the service layer.
type Public struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// ToPublic strips private fields for transport.
func (i Identity) ToPublic() Public {
	return Public{
		ID:       i.ID.String(),
		Email:    i.Email,
		FullName: i.FullName,
		Role:     string(i.Role),
	}
}
