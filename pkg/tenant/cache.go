package tenant

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Cache stores lookup results keyed by subdomain.
// A nil Tenant in an entry is a confirmed "not found".
type Cache interface {
	// Get returns the entry for key if it is still fresh.
	Get(ctx context.Context, key string) (CacheEntry, bool)

	// Put stores t (possibly nil) under key, stamped with the current time.
	Put(ctx context.Context, key string, t *Tenant)

	// Invalidate removes the entry for key.
	Invalidate(ctx context.Context, key string) error

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Stats reports the current entry count and keys.
	Stats(ctx context.Context) (CacheStats, error)
}

// CacheEntry is a cached lookup result.
type CacheEntry struct {
	Tenant    *Tenant   `json:"tenant"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Found reports whether the entry holds a tenant rather than a cached absence.
func (e CacheEntry) Found() bool {
	return e.Tenant != nil
}

// CacheStats is a point-in-time view of the cache for observability.
type CacheStats struct {
	Entries int      `json:"entries"`
	Keys    []string `json:"keys"`
}

// MemoryCache is a process-local Cache. Entries expire after the TTL;
// there is no size bound, tenant cardinality is expected to be small.
// Tenants are copied on Put and Get, so callers never share cached state.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]CacheEntry
	ttl   time.Duration
	now   func() time.Time
}

// MemoryCacheOption configures a MemoryCache.
type MemoryCacheOption func(*MemoryCache)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) MemoryCacheOption {
	return func(c *MemoryCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewMemoryCache creates an in-memory cache. A non-positive ttl falls back to DefaultCacheTTL.
func NewMemoryCache(ttl time.Duration, opts ...MemoryCacheOption) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c := &MemoryCache{
		items: make(map[string]CacheEntry),
		ttl:   ttl,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *MemoryCache) Get(_ context.Context, key string) (CacheEntry, bool) {
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return CacheEntry{}, false
	}

	if c.now().Sub(entry.FetchedAt) < c.ttl {
		entry.Tenant = entry.Tenant.Clone()
		return entry, true
	}

	// Stale: drop it unless a concurrent Put already replaced it.
	c.mu.Lock()
	if cur, ok := c.items[key]; ok && cur.FetchedAt.Equal(entry.FetchedAt) {
		delete(c.items, key)
	}
	c.mu.Unlock()
	return CacheEntry{}, false
}

func (c *MemoryCache) Put(_ context.Context, key string, t *Tenant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = CacheEntry{Tenant: t.Clone(), FetchedAt: c.now()}
}

func (c *MemoryCache) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.items)
	return nil
}

// Stats sweeps expired entries before counting.
func (c *MemoryCache) Stats(_ context.Context) (CacheStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	keys := make([]string, 0, len(c.items))
	for key, entry := range c.items {
		if now.Sub(entry.FetchedAt) >= c.ttl {
			delete(c.items, key)
			continue
		}
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return CacheStats{Entries: len(keys), Keys: keys}, nil
}

// NoOpCache never stores anything. Useful for tests or when caching should be disabled.
type NoOpCache struct{}

func (NoOpCache) Get(context.Context, string) (CacheEntry, bool) { return CacheEntry{}, false }
func (NoOpCache) Put(context.Context, string, *Tenant)           {}
func (NoOpCache) Invalidate(context.Context, string) error       { return nil }
func (NoOpCache) Clear(context.Context) error                    { return nil }
func (NoOpCache) Stats(context.Context) (CacheStats, error)      { return CacheStats{Keys: []string{}}, nil }
