// Package redis connects to Redis and exposes the pieces the tenant layer
// builds on: a retrying Connect, a prefix-scoped key/value Storage used as the
// shared tenant cache tier, and a health-check closure for readiness probes.
//
// Configuration is described by Config, populated from environment variables
// via github.com/caarlos0/env:
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	store := redis.NewStorageFromConfig(client, "tenant:", cfg)
//	_ = store.Set(ctx, "acme", payload, 5*time.Minute)
//
// Storage never issues FLUSHDB: Reset only deletes keys under its own prefix.
//
// Errors wrap go-redis failures with package sentinels (ErrRedisNotReady,
// ErrStorageOperation, ...) using errors.Join, so callers match with errors.Is.
package redis
