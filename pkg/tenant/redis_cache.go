package tenant

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"time"
)

// KeyValueStore is the byte-oriented storage RedisCache is built on.
// pkg/redis.Storage satisfies it.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, exp time.Duration) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Reset(ctx context.Context) error
}

// RedisCache shares lookup results between service instances.
// Expiry is delegated to the store; read or write failures degrade to a miss.
type RedisCache struct {
	store  KeyValueStore
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewRedisCache creates a cache over store. A non-positive ttl falls back to DefaultCacheTTL.
func NewRedisCache(store KeyValueStore, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RedisCache{store: store, ttl: ttl, now: time.Now, logger: logger}
}

func (c *RedisCache) Get(ctx context.Context, key string) (CacheEntry, bool) {
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.WarnContext(ctx, "tenant cache read failed", "subdomain", key, "error", err)
		return CacheEntry{}, false
	}
	if raw == nil {
		return CacheEntry{}, false
	}

	var entry CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.logger.WarnContext(ctx, "tenant cache entry is corrupt", "subdomain", key, "error", err)
		return CacheEntry{}, false
	}
	if c.now().Sub(entry.FetchedAt) >= c.ttl {
		return CacheEntry{}, false
	}
	return entry, true
}

func (c *RedisCache) Put(ctx context.Context, key string, t *Tenant) {
	raw, err := json.Marshal(CacheEntry{Tenant: t, FetchedAt: c.now()})
	if err != nil {
		c.logger.WarnContext(ctx, "tenant cache entry encode failed", "subdomain", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
		c.logger.WarnContext(ctx, "tenant cache write failed", "subdomain", key, "error", err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

func (c *RedisCache) Clear(ctx context.Context) error {
	return c.store.Reset(ctx)
}

func (c *RedisCache) Stats(ctx context.Context) (CacheStats, error) {
	keys, err := c.store.Keys(ctx)
	if err != nil {
		return CacheStats{}, err
	}
	slices.Sort(keys)
	return CacheStats{Entries: len(keys), Keys: keys}, nil
}
