package domain

// Role scopes what a caller may see and mutate. It is assigned at
// registration and never changed by the user themselves.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCustomer
}

// Caller is the authenticated identity every core operation receives. There is
// no ambient "current user"; scoping decisions always read from an explicit
// Caller, never from process state.
type Caller struct {
	UserID UserID
	Role   Role
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool { return c.Role == RoleAdmin }
