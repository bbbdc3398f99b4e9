package tenant

import "time"

const (
	// DefaultCacheTTL is how long a lookup result (including "not found") is reused.
	DefaultCacheTTL = 5 * time.Minute

	// DefaultLookupTimeout bounds each store call made while resolving.
	DefaultLookupTimeout = 3 * time.Second

	DefaultDevQueryParam = "tenant"
	DefaultDevFallback   = "demo"
)

// Values of Config.CacheBackend.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config is the environment-driven configuration of the resolution layer.
type Config struct {
	CacheTTL            time.Duration `env:"TENANT_CACHE_TTL" envDefault:"5m"`                                 // CacheTTL is the lifetime of cached lookups.
	LookupTimeout       time.Duration `env:"TENANT_LOOKUP_TIMEOUT" envDefault:"3s"`                            // LookupTimeout bounds each store call.
	CacheBackend        string        `env:"TENANT_CACHE_BACKEND" envDefault:"memory"`                         // CacheBackend is "memory" or "redis".
	RedisKeyPrefix      string        `env:"TENANT_REDIS_PREFIX" envDefault:"tenant:"`                         // RedisKeyPrefix namespaces redis cache keys.
	InvalidationChannel string        `env:"TENANT_INVALIDATION_CHANNEL" envDefault:"tenant-settings-changed"` // InvalidationChannel is the redis pub/sub channel for cache invalidation.
	Broadcast           bool          `env:"TENANT_BROADCAST" envDefault:"false"`                              // Broadcast publishes invalidations so peer instances drop their entries.
	DevMode             bool          `env:"TENANT_DEV_MODE" envDefault:"false"`                               // DevMode enables localhost overrides; tenantd also turns it on for APP_ENV=development.
	DevQueryParam       string        `env:"TENANT_DEV_QUERY_PARAM" envDefault:"tenant"`                       // DevQueryParam names the query override used on localhost.
	DevFallback         string        `env:"TENANT_DEV_FALLBACK" envDefault:"demo"`                            // DevFallback is used on localhost when no override is given.
	SkipPaths           []string      `env:"TENANT_SKIP_PATHS" envSeparator:"," envDefault:"/healthz,/readyz,/metrics,/admin"`
}
