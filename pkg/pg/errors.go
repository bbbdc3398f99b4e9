package pg

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrFailedToOpenDBConnection = errors.New("failed to open db connection")
	ErrEmptyConnectionString    = errors.New("empty postgres connection string, use PG_CONN_URL env var")
	ErrHealthcheckFailed        = errors.New("healthcheck failed, connection is not available")
	ErrFailedToParseDBConfig    = errors.New("failed to parse db config")
	ErrFailedToApplyMigrations  = errors.New("failed to apply migrations")
	ErrMigrationsDirNotFound    = errors.New("migrations directory not found")
	ErrMigrationPathNotProvided = errors.New("migration path not provided")

	// ErrNoConnInContext is returned when a session-scoped call runs outside ConnMiddleware.
	ErrNoConnInContext = errors.New("no pinned database connection in context")

	ErrInvalidFunctionName = errors.New("invalid database function name")
	ErrMalformedTenantRow  = errors.New("malformed tenant row")
)

// IsUndefinedFunctionError detects calls to functions missing from the schema (SQLSTATE 42883),
// usually a sign the tenant functions were never installed.
func IsUndefinedFunctionError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42883"
}

// IsInsufficientPrivilegeError detects permission failures (SQLSTATE 42501).
func IsInsufficientPrivilegeError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42501"
}
