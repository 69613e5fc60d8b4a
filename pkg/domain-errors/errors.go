// Package dErrors defines the domain error taxonomy. Services return these;
// the HTTP layer translates codes to status codes and JSON envelopes.
// Infrastructure facts (row missing, unique violation) live in
// pkg/platform/sentinel and are translated into these codes at the service
// boundary.
package dErrors

import (
	"errors"
	"net/http"
)

// Code classifies a domain error for transport mapping and assertions.
type Code string

const (
	CodeInvalidInput Code = "invalid_input"
	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeInternal     Code = "internal_error"
)

// DomainError carries a code plus a human-readable description. The
// description is safe to show callers except for internal errors, which the
// HTTP layer redacts.
type DomainError struct {
	Code        Code
	Description string
}

func (e *DomainError) Error() string {
	return string(e.Code) + ": " + e.Description
}

// New constructs a DomainError with the given code and description.
func New(code Code, description string) error {
	return &DomainError{Code: code, Description: description}
}

// Wrap attaches a domain code to an underlying error, preserving the chain
// for errors.Is/errors.As.
func Wrap(code Code, description string, err error) error {
	return &wrappedError{
		DomainError: DomainError{Code: code, Description: description},
		cause:       err,
	}
}

type wrappedError struct {
	DomainError
	cause error
}

func (e *wrappedError) Error() string {
	return e.DomainError.Error() + ": " + e.cause.Error()
}

func (e *wrappedError) Unwrap() error { return e.cause }

// HasCode reports whether err (or anything it wraps) is a DomainError with
// the given code.
func HasCode(err error, code Code) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	var we *wrappedError
	if errors.As(err, &we) {
		return we.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// unclassified errors.
func CodeOf(err error) Code {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	var we *wrappedError
	if errors.As(err, &we) {
		return we.Code
	}
	return CodeInternal
}

// DescriptionOf extracts the human-readable description from err. Returns an
// empty string for unclassified errors so nothing internal leaks.
func DescriptionOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Description
	}
	var we *wrappedError
	if errors.As(err, &we) {
		return we.Description
	}
	return ""
}

// ToHTTPStatus maps a domain code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
