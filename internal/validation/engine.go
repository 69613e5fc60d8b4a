// Package validation decides whether a presented license key is allowed to
// act, and records exactly one security event per attempt.
package validation

import (
	"time"

	"licensio/internal/audit"
	"licensio/internal/credential"
	"licensio/pkg/secrets"
)

// Evaluate runs the checks for a credential that exists, in fixed order, and
// returns the code of the first check that fails. The order is part of the
// contract: a revoked key reports REVOKED even when it is also expired, and
// the state checks run before the secret is ever compared. Evaluate is pure
// over its inputs and mutates nothing.
func Evaluate(cred credential.Credential, secret, domain string, now time.Time) audit.Code {
	if cred.Status == credential.StatusRevoked {
		return audit.CodeRevoked
	}
	if cred.ExpiredAt(now) {
		return audit.CodeExpired
	}
	if !cred.DomainAllowed(domain) {
		return audit.CodeDomainNotAllowed
	}
	if err := secrets.Verify(secret, cred.SecretHash); err != nil {
		return audit.CodeBadSignature
	}
	return audit.CodeOK
}
