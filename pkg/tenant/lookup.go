package tenant

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/metrics"
)

// Lookup finds active tenants by subdomain, consulting the cache first.
type Lookup struct {
	store   Store
	cache   Cache
	timeout time.Duration
	logger  *slog.Logger
	group   singleflight.Group

	// gen advances on every invalidation. A fetch that started under an
	// older generation does not write its result back to the cache.
	mu  sync.RWMutex
	gen uint64
}

// NewLookup creates a lookup service. A nil cache disables caching.
func NewLookup(store Store, cache Cache, timeout time.Duration, log *slog.Logger) *Lookup {
	if cache == nil {
		cache = NoOpCache{}
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Lookup{store: store, cache: cache, timeout: timeout, logger: log}
}

// Find returns the active tenant for subdomain.
// Absent and non-active tenants both yield ErrTenantNotFound and are cached as such.
// Store failures yield ErrLookupFailed and are never cached.
func (l *Lookup) Find(ctx context.Context, subdomain string) (*Tenant, error) {
	if entry, ok := l.cache.Get(ctx, subdomain); ok {
		metrics.ObserveCacheLookup(true)
		if !entry.Found() {
			return nil, ErrTenantNotFound
		}
		return entry.Tenant, nil
	}
	metrics.ObserveCacheLookup(false)

	gen := l.generation()

	// Concurrent misses for the same subdomain share one store round trip.
	// Keying by generation makes callers arriving after an invalidation
	// start a fresh fetch instead of joining one that may return stale data.
	key := subdomain + "@" + strconv.FormatUint(gen, 10)
	v, err, _ := l.group.Do(key, func() (any, error) {
		return l.fetch(context.WithoutCancel(ctx), subdomain, gen)
	})
	if err != nil {
		return nil, err
	}
	t, _ := v.(*Tenant)
	if t == nil {
		return nil, ErrTenantNotFound
	}
	return t.Clone(), nil
}

func (l *Lookup) generation() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.gen
}

func (l *Lookup) fetch(ctx context.Context, subdomain string, gen uint64) (*Tenant, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	start := time.Now()
	records, err := l.store.LookupTenantBySubdomain(ctx, subdomain)
	if err != nil {
		metrics.ObserveStoreCall("lookup", "error", time.Since(start))
		l.logger.ErrorContext(ctx, "tenant lookup failed",
			logger.Subdomain(subdomain),
			logger.Error(err),
			logger.Component("tenant.lookup"),
		)
		return nil, errors.Join(ErrLookupFailed, err)
	}
	metrics.ObserveStoreCall("lookup", "ok", time.Since(start))

	t := firstActive(records)
	if t == nil && len(records) > 0 {
		l.logger.InfoContext(ctx, "tenant exists but is not active",
			logger.Subdomain(subdomain),
			slog.String("status", string(records[0].Status)),
		)
	}

	l.mu.RLock()
	if l.gen == gen {
		l.cache.Put(ctx, subdomain, t)
	} else {
		l.logger.DebugContext(ctx, "discarding lookup result invalidated in flight",
			logger.Subdomain(subdomain),
		)
	}
	l.mu.RUnlock()
	return t, nil
}

// Invalidate drops the cached result for subdomain.
// Fetches already in flight will not repopulate it.
func (l *Lookup) Invalidate(ctx context.Context, subdomain string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	return l.cache.Invalidate(ctx, subdomain)
}

// Clear drops every cached result.
// Fetches already in flight will not repopulate it.
func (l *Lookup) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	return l.cache.Clear(ctx)
}

// Stats reports the cache contents.
func (l *Lookup) Stats(ctx context.Context) (CacheStats, error) {
	return l.cache.Stats(ctx)
}

func firstActive(records []Tenant) *Tenant {
	for i := range records {
		if records[i].Active() {
			t := records[i]
			return &t
		}
	}
	return nil
}
