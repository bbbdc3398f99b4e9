// Package pg is the PostgreSQL side of tenant resolution, built on pgx/v5.
//
// Connect opens a pool with startup retries. ConnMiddleware pins one pooled
// connection to each HTTP request so that TenantStore.SetTenantContext and
// every later query of that request share a session; the session settings are
// reset before the connection is returned. TenantStore calls two database
// functions whose names come from Config:
//
//	SELECT id::text, subdomain, name, status, settings FROM lookup_tenant_by_subdomain($1)
//	SELECT set_tenant_context($1)
//
// Their bodies, the tenants table and the row-level security policies belong
// to the application schema. Migrate applies that schema from an
// operator-provided goose migrations directory.
//
//	pool, err := pg.Connect(ctx, cfg)
//	store, err := pg.NewTenantStore(pool, cfg)
//	r.Use(pg.ConnMiddleware(pool, cfg.AcquireTimeout, log))
//	r.Use(tenant.Middleware(tenant.NewResolver(store)))
package pg
