package pg

import "time"

type Config struct {
	ConnectionString  string        `env:"PG_CONN_URL,required"`                   // ConnectionString is the connection string to the database.
	MaxConns          int32         `env:"PG_MAX_CONNS" envDefault:"10"`           // MaxConns bounds the pool, including connections pinned to in-flight requests.
	MinConns          int32         `env:"PG_MIN_CONNS" envDefault:"2"`            // MinConns is kept open even when idle.
	HealthCheckPeriod time.Duration `env:"PG_HEALTHCHECK_PERIOD" envDefault:"1m"`  // HealthCheckPeriod is the period between pool health checks.
	MaxConnIdleTime   time.Duration `env:"PG_MAX_CONN_IDLE_TIME" envDefault:"10m"` // MaxConnIdleTime is how long an idle connection is kept.
	MaxConnLifetime   time.Duration `env:"PG_MAX_CONN_LIFETIME" envDefault:"30m"`  // MaxConnLifetime is the maximum age of a connection.
	AcquireTimeout    time.Duration `env:"PG_ACQUIRE_TIMEOUT" envDefault:"2s"`     // AcquireTimeout bounds waiting for a pooled connection per request.

	RetryAttempts int           `env:"PG_RETRY_ATTEMPTS" envDefault:"3"`  // RetryAttempts is the number of connection attempts on startup.
	RetryInterval time.Duration `env:"PG_RETRY_INTERVAL" envDefault:"5s"` // RetryInterval is multiplied by the attempt number between attempts.

	LookupFunction  string `env:"PG_TENANT_LOOKUP_FUNC" envDefault:"lookup_tenant_by_subdomain"` // LookupFunction returns tenant rows for a subdomain.
	ContextFunction string `env:"PG_TENANT_CONTEXT_FUNC" envDefault:"set_tenant_context"`        // ContextFunction activates row-level scoping for the session.

	MigrationsPath  string `env:"PG_MIGRATIONS_PATH"`                                 // MigrationsPath is an operator-provided goose migrations directory.
	MigrationsTable string `env:"PG_MIGRATIONS_TABLE" envDefault:"schema_migrations"` // MigrationsTable stores the applied migration versions.
}
