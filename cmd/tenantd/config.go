package main

import (
	"log/slog"

	"github.com/dmitrymomot/tenantkit/pkg/clientip"
	"github.com/dmitrymomot/tenantkit/pkg/config"
	"github.com/dmitrymomot/tenantkit/pkg/environment"
	"github.com/dmitrymomot/tenantkit/pkg/httpserver"
	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/pg"
	"github.com/dmitrymomot/tenantkit/pkg/redis"
	"github.com/dmitrymomot/tenantkit/pkg/requestid"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

const serviceName = "tenantd"

type appConfig struct {
	Env    environment.Config
	Log    logger.Config
	HTTP   httpserver.Config
	PG     pg.Config
	Redis  redis.Config
	Tenant tenant.Config
}

// usesRedis reports whether any component needs a Redis connection.
func (c appConfig) usesRedis() bool {
	return c.Tenant.CacheBackend == tenant.CacheBackendRedis || c.Tenant.Broadcast
}

func loadConfig(envFiles []string) (appConfig, error) {
	if len(envFiles) > 0 {
		if err := config.LoadEnv(envFiles...); err != nil {
			return appConfig{}, err
		}
	}
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return appConfig{}, err
	}
	cfg.applyEnvironment()
	return cfg, nil
}

// applyEnvironment turns on the localhost tenant rules in development.
func (c *appConfig) applyEnvironment() {
	if c.Env.Environment().IsDevelopment() {
		c.Tenant.DevMode = true
	}
}

func newLogger(cfg appConfig) *slog.Logger {
	return logger.New(
		logger.WithEnvironment(cfg.Env.Environment(), serviceName),
		logger.FromConfig(cfg.Log),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			clientip.LoggerExtractor(),
			tenant.LoggerExtractor(),
		),
	)
}
