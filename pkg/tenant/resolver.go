package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/metrics"
)

// State is a step of the resolution state machine.
type State string

const (
	StateStart          State = "start"
	StateExtracting     State = "extracting"
	StateValidating     State = "validating"
	StateLookingUp      State = "looking_up"
	StateSettingContext State = "setting_context"
	StateResolved       State = "resolved"
)

// Result is the outcome of Resolve. Exactly one of Tenant and Error is set.
type Result struct {
	Tenant *Tenant `json:"tenant"`
	Error  *Error  `json:"error"`

	// Step is the last step entered: StateResolved on success,
	// otherwise the step that failed.
	Step State `json:"-"`
}

// OK reports whether a tenant was resolved.
func (r Result) OK() bool {
	return r.Error == nil && r.Tenant != nil
}

// Resolver turns a request into an active, context-scoped tenant:
// extract, validate, look up, then set the store's tenant context.
type Resolver struct {
	extractor *Extractor
	lookup    *Lookup
	store     Store
	timeout   time.Duration
	logger    *slog.Logger
}

// NewResolver creates a resolver over store. Without options it uses an
// in-memory cache with DefaultCacheTTL and production extraction rules.
func NewResolver(store Store, opts ...Option) *Resolver {
	cfg := &options{
		cacheTTL:      DefaultCacheTTL,
		lookupTimeout: DefaultLookupTimeout,
		devQueryParam: DefaultDevQueryParam,
		devFallback:   DefaultDevFallback,
		logger:        logger.Discard(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.cache == nil {
		cfg.cache = NewMemoryCache(cfg.cacheTTL)
	}

	return &Resolver{
		extractor: NewExtractor(cfg.devMode,
			WithDevQueryParam(cfg.devQueryParam),
			WithDevFallback(cfg.devFallback),
			WithExtractorLogger(cfg.logger),
		),
		lookup:  NewLookup(store, cfg.cache, cfg.lookupTimeout, cfg.logger),
		store:   store,
		timeout: cfg.lookupTimeout,
		logger:  cfg.logger,
	}
}

// NewResolverFromConfig builds a resolver from environment configuration.
func NewResolverFromConfig(cfg Config, store Store, cache Cache, log *slog.Logger) *Resolver {
	return NewResolver(store,
		WithCache(cache),
		WithCacheTTL(cfg.CacheTTL),
		WithLookupTimeout(cfg.LookupTimeout),
		WithDevMode(cfg.DevMode),
		WithDevOverrides(cfg.DevQueryParam, cfg.DevFallback),
		WithLogger(log),
	)
}

// Resolve runs the full resolution for req. It never panics and never
// returns both a tenant and an error.
func (r *Resolver) Resolve(ctx context.Context, req Request) Result {
	return r.run(ctx, hostOf(req), func() (string, bool) {
		return r.extractor.Extract(req)
	})
}

// ResolveSubdomain resolves an identifier that did not come from a request host,
// e.g. in background jobs acting on behalf of a tenant. Extraction rules are skipped.
func (r *Resolver) ResolveSubdomain(ctx context.Context, subdomain string) Result {
	return r.run(ctx, subdomain, func() (string, bool) {
		return subdomain, subdomain != ""
	})
}

func (r *Resolver) run(ctx context.Context, host string, extract func() (string, bool)) (res Result) {
	start := time.Now()
	step := StateStart

	defer func() {
		if p := recover(); p != nil {
			res = r.fail(ctx, step, newError(CodeResolutionError,
				"Failed to resolve tenant",
				"unexpected internal error",
				fmt.Errorf("%w: %v", ErrResolverPanic, p),
			))
		}

		code := metrics.CodeResolved
		if res.Error != nil {
			code = string(res.Error.Code)
		}
		metrics.ObserveResolution(code, time.Since(start))
	}()

	step = StateExtracting
	raw, ok := extract()
	if !ok {
		return r.fail(ctx, step, newError(CodeInvalidSubdomain,
			"No tenant subdomain found in request",
			fmt.Sprintf("host %q does not identify a tenant", host),
			nil,
		))
	}

	step = StateValidating
	if err := ValidateSubdomain(raw); err != nil {
		return r.fail(ctx, step, newError(CodeInvalidSubdomainFormat,
			"Invalid subdomain format",
			fmt.Sprintf("%q: %s", raw, err.Error()),
			err,
		))
	}
	subdomain := strings.ToLower(raw)

	step = StateLookingUp
	t, err := r.lookup.Find(ctx, subdomain)
	switch {
	case errors.Is(err, ErrTenantNotFound):
		return r.fail(ctx, step, newError(CodeTenantNotFound,
			"Tenant not found",
			fmt.Sprintf("no active tenant for subdomain %q", subdomain),
			err,
		))
	case err != nil:
		return r.fail(ctx, step, newError(CodeResolutionError,
			"Failed to resolve tenant",
			"tenant lookup failed",
			err,
		))
	}

	step = StateSettingContext
	if err := r.setContext(ctx, t); err != nil {
		return r.fail(ctx, step, newError(CodeResolutionError,
			"Failed to resolve tenant",
			"could not scope request to tenant",
			err,
		))
	}

	return Result{Tenant: t, Step: StateResolved}
}

func (r *Resolver) setContext(ctx context.Context, t *Tenant) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := r.store.SetTenantContext(ctx, t.ID); err != nil {
		metrics.ObserveStoreCall("set_context", "error", time.Since(start))
		return errors.Join(ErrContextSetFailed, err)
	}
	metrics.ObserveStoreCall("set_context", "ok", time.Since(start))
	return nil
}

func (r *Resolver) fail(ctx context.Context, step State, e *Error) Result {
	level := slog.LevelDebug
	if e.Code == CodeResolutionError {
		level = slog.LevelError
	}
	r.logger.LogAttrs(ctx, level, "tenant resolution failed",
		logger.ErrorCode(string(e.Code)),
		slog.String("step", string(step)),
		slog.String("details", e.Details),
		logger.Error(e.cause),
		logger.Component("tenant.resolver"),
	)
	return Result{Error: e, Step: step}
}

// Invalidate drops the cached lookup for subdomain, so the next request re-fetches it.
func (r *Resolver) Invalidate(ctx context.Context, subdomain string) error {
	return r.lookup.Invalidate(ctx, strings.ToLower(subdomain))
}

// ClearAll drops every cached lookup.
func (r *Resolver) ClearAll(ctx context.Context) error {
	return r.lookup.Clear(ctx)
}

// Stats reports the cache contents.
func (r *Resolver) Stats(ctx context.Context) (CacheStats, error) {
	return r.lookup.Stats(ctx)
}

func hostOf(req Request) string {
	if req.Host != "" {
		return req.Host
	}
	return req.ForwardedHost
}
