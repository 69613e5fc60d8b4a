package credential

import (
	"strings"
	"time"

	id "licensio/pkg/domain"
)

// Status is the stored lifecycle state of a credential. Revocation is an
// explicit terminal flag, independent of expiry: an expired credential keeps
// status active, and a revoked credential stays revoked even if its expiry is
// in the future.
type Status string

const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// RecommendedTTLDays are the issuance presets surfaced to admin UIs. The
// engine accepts any positive day count; this list is advisory only.
var RecommendedTTLDays = []int{7, 15, 30, 90, 365}

// Credential is an issued license key. KeyString is the public identifier;
// SecretHash is the bcrypt hash of the one-time-revealed secret. The
// plaintext secret is never stored and never retrievable after issuance.
type Credential struct {
	ID             id.CredentialID
	KeyString      string
	SecretHash     string
	OwnerID        id.UserID
	ProductID      id.ProductID
	Status         Status
	ExpiresAt      *time.Time // nil = non-expiring
	AllowedDomains []string   // empty = unrestricted
	CreatedAt      time.Time
}

// ExpiredAt reports whether the credential is expired relative to now.
// A nil ExpiresAt never expires.
func (c Credential) ExpiredAt(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

// DomainAllowed reports whether the given domain may validate against this
// credential. An empty whitelist means unrestricted. The whitelist is stored
// in canonical form (trimmed, lowercased), so the presented domain is folded
// the same way before comparison; domain names are case-insensitive.
func (c Credential) DomainAllowed(domain string) bool {
	if len(c.AllowedDomains) == 0 {
		return true
	}
	domain = strings.ToLower(strings.TrimSpace(domain))
	for _, d := range c.AllowedDomains {
		if d == domain {
			return true
		}
	}
	return false
}

// Public is the transport projection of a credential. The secret hash never
// leaves the service layer; the key string is not sensitive.
type Public struct {
	ID             string     `json:"id"`
	APIKey         string     `json:"api_key"`
	OwnerID        string     `json:"owner_id"`
	ProductID      string     `json:"product_id"`
	ProductName    string     `json:"product_name,omitempty"`
	Status         string     `json:"status"`
	ExpiresAt      *time.Time `json:"expires_at"`
	AllowedDomains []string   `json:"allowed_domains"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (c Credential) ToPublic() Public {
	domains := c.AllowedDomains
	if domains == nil {
		domains = []string{}
	}
	return Public{
		ID:             c.ID.String(),
		APIKey:         c.KeyString,
		OwnerID:        c.OwnerID.String(),
		ProductID:      c.ProductID.String(),
		Status:         string(c.Status),
		ExpiresAt:      c.ExpiresAt,
		AllowedDomains: domains,
		CreatedAt:      c.CreatedAt,
	}
}

// Issued is the one-time issuance result. APISecret appears here and nowhere
// else; no read path can reproduce it.
type Issued struct {
	Credential Credential
	APISecret  string
}
