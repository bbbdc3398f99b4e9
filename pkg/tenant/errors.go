package tenant

import (
	"errors"
	"net/http"
)

var (
	// ErrTenantNotFound is returned when no active tenant matches the identifier.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrLookupFailed is returned when the store could not be queried.
	ErrLookupFailed = errors.New("tenant lookup failed")

	// ErrContextSetFailed is returned when the store rejected the tenant context.
	ErrContextSetFailed = errors.New("failed to set tenant context")

	// ErrNoTenantInContext is returned when no tenant is found in context.
	ErrNoTenantInContext = errors.New("no tenant in context")

	// ErrResolverPanic wraps a recovered panic during resolution.
	ErrResolverPanic = errors.New("tenant resolution panicked")

	// ErrSubdomainEmpty is returned by ValidateSubdomain for an empty identifier.
	ErrSubdomainEmpty = errors.New("subdomain is empty")

	// ErrSubdomainLength is returned for identifiers outside 2..50 characters.
	ErrSubdomainLength = errors.New("subdomain must be between 2 and 50 characters")

	// ErrSubdomainFormat is returned for characters other than letters, digits
	// and hyphens, or a hyphen at either end.
	ErrSubdomainFormat = errors.New("subdomain must contain only letters, digits and inner hyphens")

	// ErrSubdomainReserved is returned for names kept for the platform itself.
	ErrSubdomainReserved = errors.New("subdomain is reserved")
)

// Code is a stable, machine-readable resolution error code.
type Code string

const (
	CodeInvalidSubdomain       Code = "INVALID_SUBDOMAIN"
	CodeInvalidSubdomainFormat Code = "INVALID_SUBDOMAIN_FORMAT"
	CodeTenantNotFound         Code = "TENANT_NOT_FOUND"
	CodeResolutionError        Code = "TENANT_RESOLUTION_ERROR"
)

// HTTPStatus maps the code to the response status used by the middleware.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidSubdomain, CodeInvalidSubdomainFormat:
		return http.StatusBadRequest
	case CodeTenantNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is the structured failure produced by Resolver.Resolve.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`

	cause error
}

func newError(code Code, message, details string, cause error) *Error {
	return &Error{Code: code, Message: message, Details: details, cause: cause}
}

func (e *Error) Error() string {
	if e.Details == "" {
		return string(e.Code) + ": " + e.Message
	}
	return string(e.Code) + ": " + e.Message + " (" + e.Details + ")"
}

func (e *Error) Unwrap() error {
	return e.cause
}

// ErrorCode returns the resolution code carried by err, if any.
func ErrorCode(err error) (Code, bool) {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Code, true
	}
	return "", false
}
