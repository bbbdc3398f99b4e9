package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/tenantkit/pkg/pg"
	"github.com/dmitrymomot/tenantkit/pkg/redis"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

var errUnknownCacheBackend = errors.New("unknown TENANT_CACHE_BACKEND")

// deps are the long-lived collaborators shared by the commands.
type deps struct {
	cfg         appConfig
	log         *slog.Logger
	pool        *pgxpool.Pool
	redis       goredis.UniversalClient
	resolver    *tenant.Resolver
	invalidator *tenant.Invalidator
}

func openDeps(ctx context.Context, cfg appConfig, log *slog.Logger) (*deps, error) {
	d := &deps{cfg: cfg, log: log}

	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return nil, err
	}
	d.pool = pool

	if cfg.usesRedis() {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.redis = client
	}

	store, err := pg.NewTenantStore(pool, cfg.PG)
	if err != nil {
		d.Close()
		return nil, err
	}

	cache, err := d.newCache()
	if err != nil {
		d.Close()
		return nil, err
	}

	d.resolver = tenant.NewResolverFromConfig(cfg.Tenant, store, cache, log)
	if d.redis != nil && cfg.Tenant.Broadcast {
		d.invalidator = tenant.NewInvalidator(d.redis, cfg.Tenant.InvalidationChannel, d.resolver, log)
	}
	return d, nil
}

func (d *deps) newCache() (tenant.Cache, error) {
	switch d.cfg.Tenant.CacheBackend {
	case "", tenant.CacheBackendMemory:
		return tenant.NewMemoryCache(d.cfg.Tenant.CacheTTL), nil
	case tenant.CacheBackendRedis:
		storage := redis.NewStorageFromConfig(d.redis, d.cfg.Tenant.RedisKeyPrefix, d.cfg.Redis)
		return tenant.NewRedisCache(storage, d.cfg.Tenant.CacheTTL, d.log), nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownCacheBackend, d.cfg.Tenant.CacheBackend)
	}
}

// notifier returns the invalidation broadcaster, or nil when broadcasting is off.
func (d *deps) notifier() tenant.Notifier {
	if d.invalidator == nil {
		return nil
	}
	return d.invalidator
}

func (d *deps) Close() {
	if d.redis != nil {
		_ = d.redis.Close()
	}
	if d.pool != nil {
		d.pool.Close()
	}
}
