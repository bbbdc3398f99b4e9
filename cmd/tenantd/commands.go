package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/tenantkit/pkg/httpserver"
	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/pg"
	"github.com/dmitrymomot/tenantkit/pkg/redis"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

var errInvalidationDisabled = errors.New("invalidation broadcast needs TENANT_BROADCAST=true and a reachable REDIS_URL")

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP server",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "migrate",
				Usage: "apply migrations before serving",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd.StringSlice("env-file"))
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			d, err := openDeps(ctx, cfg, log)
			if err != nil {
				return err
			}

			if cmd.Bool("migrate") {
				if _, err := pg.Migrate(ctx, d.pool, cfg.PG, log); err != nil {
					d.Close()
					return err
				}
			}

			checks := map[string]httpserver.Check{"postgres": pg.Healthcheck(d.pool)}
			if d.redis != nil {
				checks["redis"] = redis.Healthcheck(d.redis)
			}

			router := newRouter(routerDeps{
				log:          log,
				resolver:     d.resolver,
				notifier:     d.notifier(),
				skipPaths:    cfg.Tenant.SkipPaths,
				checks:       checks,
				probeTimeout: cfg.HTTP.ProbeTimeout,
				scope:        pg.ConnMiddleware(d.pool, cfg.PG.AcquireTimeout, log),
			})

			srv := httpserver.NewFromConfig(cfg.HTTP,
				httpserver.WithLogger(log),
				httpserver.WithShutdownHook("deps", func(context.Context) error {
					d.Close()
					return nil
				}),
			)

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			if d.invalidator != nil {
				g.Go(func() error { return d.invalidator.Run(ctx) })
			}
			g.Go(func() error {
				defer stop()
				return srv.Run(ctx, router)
			})
			return g.Wait()
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply migrations from PG_MIGRATIONS_PATH and exit",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd.StringSlice("env-file"))
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			pool, err := pg.Connect(ctx, cfg.PG)
			if err != nil {
				return err
			}
			defer pool.Close()

			_, err = pg.Migrate(ctx, pool, cfg.PG, log)
			return err
		},
	}
}

func resolveCommand() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "resolve a host once and print the result as JSON",
		ArgsUsage: "<host>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			host := cmd.Args().First()
			if host == "" {
				return cli.Exit("resolve: host argument is required", 2)
			}

			cfg, err := loadConfig(cmd.StringSlice("env-file"))
			if err != nil {
				return err
			}
			// One-shot: nothing to share a cache with.
			cfg.Tenant.CacheBackend = tenant.CacheBackendMemory
			cfg.Tenant.Broadcast = false

			d, err := openDeps(ctx, cfg, logger.Discard())
			if err != nil {
				return err
			}
			defer d.Close()

			conn, err := d.pool.Acquire(ctx)
			if err != nil {
				return err
			}
			defer conn.Release()

			res := d.resolver.Resolve(pg.WithConn(ctx, conn), tenant.Request{Host: host})
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return err
			}
			if res.Error != nil {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

func invalidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "invalidate",
		Usage:     "tell every running instance to drop a cached tenant; no argument drops all",
		ArgsUsage: "[subdomain]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd.StringSlice("env-file"))
			if err != nil {
				return err
			}
			if !cfg.Tenant.Broadcast {
				return errInvalidationDisabled
			}

			subdomain := cmd.Args().First()
			if subdomain != "" && !tenant.ValidSubdomain(subdomain) {
				return cli.Exit("invalidate: invalid subdomain", 2)
			}

			client, err := redis.Connect(ctx, cfg.Redis)
			if err != nil {
				return errors.Join(errInvalidationDisabled, err)
			}
			defer client.Close()

			inv := tenant.NewInvalidator(client, cfg.Tenant.InvalidationChannel, nil, logger.Discard())
			return inv.Publish(ctx, subdomain)
		},
	}
}
