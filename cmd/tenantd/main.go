// Command tenantd serves tenant-scoped HTTP traffic: every request is
// resolved to an active tenant from its host, and the request's database
// session is scoped to that tenant before any handler runs.
//
// Usage:
//
//	tenantd serve [--migrate]        run the HTTP server
//	tenantd migrate                  apply migrations from PG_MIGRATIONS_PATH and exit
//	tenantd resolve <host>           resolve a host once and print the result
//	tenantd invalidate [subdomain]   broadcast a cache invalidation; no argument clears all
//
// Configuration is read from the environment and an optional .env file.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// Set with -ldflags "-X main.Version=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "tenantd:", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "tenantd",
		Usage:   "tenant resolution service",
		Version: fmt.Sprintf("%s (%s)", Version, GitCommit),
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "additional .env files to load",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			resolveCommand(),
			invalidateCommand(),
		},
		DefaultCommand: "serve",
	}
}
