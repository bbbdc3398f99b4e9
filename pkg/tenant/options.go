package tenant

import (
	"log/slog"
	"time"
)

type options struct {
	cache         Cache
	cacheTTL      time.Duration
	lookupTimeout time.Duration
	devMode       bool
	devQueryParam string
	devFallback   string
	logger        *slog.Logger
}

// Option configures a Resolver.
type Option func(*options)

// WithCache sets the cache implementation. Nil keeps the in-memory default.
func WithCache(cache Cache) Option {
	return func(o *options) {
		if cache != nil {
			o.cache = cache
		}
	}
}

// WithCacheTTL sets the TTL of the default in-memory cache.
// It has no effect when a cache is supplied with WithCache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.cacheTTL = ttl
		}
	}
}

// WithLookupTimeout bounds each store call. Zero disables the bound.
func WithLookupTimeout(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.lookupTimeout = d
		}
	}
}

// WithDevMode enables localhost development rules in the extractor.
func WithDevMode(enabled bool) Option {
	return func(o *options) {
		o.devMode = enabled
	}
}

// WithDevOverrides sets the query parameter and fallback identifier used on localhost.
// Empty values keep the defaults.
func WithDevOverrides(queryParam, fallback string) Option {
	return func(o *options) {
		if queryParam != "" {
			o.devQueryParam = queryParam
		}
		if fallback != "" {
			o.devFallback = fallback
		}
	}
}

// WithLogger sets the logger. Nil is ignored.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.logger = log
		}
	}
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithDevQueryParam sets the query parameter that names the tenant on localhost.
// Empty names are ignored.
func WithDevQueryParam(name string) ExtractorOption {
	return func(e *Extractor) {
		if name != "" {
			e.devQueryParam = name
		}
	}
}

// WithDevFallback sets the identifier used on localhost without an override.
// An empty fallback makes such requests resolve to no tenant.
func WithDevFallback(id string) ExtractorOption {
	return func(e *Extractor) {
		e.devFallback = id
	}
}

// WithExtractorLogger sets the extractor's logger. Nil is ignored.
func WithExtractorLogger(log *slog.Logger) ExtractorOption {
	return func(e *Extractor) {
		if log != nil {
			e.logger = log
		}
	}
}
