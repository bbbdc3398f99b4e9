// Package tenant resolves the tenant a request belongs to and scopes the
// rest of the request to it.
//
// Resolution runs in four steps: the candidate identifier is taken from
// the leftmost label of the host, validated, looked up in the Store, and
// finally handed back to the Store via SetTenantContext so that row-level
// security applies to every later query on the same session. The outcome
// is a Result carrying either the tenant or a structured *Error, never both.
//
// # Usage
//
//	resolver := tenant.NewResolver(store,
//		tenant.WithLogger(log),
//		tenant.WithDevMode(cfg.DevMode),
//	)
//
//	r := chi.NewRouter()
//	r.Use(tenant.Middleware(resolver, tenant.WithSkipPaths("/healthz")))
//	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
//		t := tenant.MustFromContext(r.Context())
//		_ = t.Settings.Merge(defaults)
//	})
//
// # Host rules
//
// In production a host needs at least three labels ("acme.example.com");
// "www", "api", "admin" and "app" never name a tenant. With dev mode on,
// hosts containing "localhost" or "127.0.0.1" accept "acme-localhost",
// then the "tenant" query parameter, then the fallback identifier.
//
// # Caching
//
// Lookups, including "not found" and inactive tenants, are cached for
// DefaultCacheTTL. Store failures are never cached. MemoryCache serves a
// single process; RedisCache shares entries between instances, and an
// Invalidator broadcasts settings changes over Redis pub/sub.
//
// # Error codes
//
//   - INVALID_SUBDOMAIN: the host does not identify a tenant (400)
//   - INVALID_SUBDOMAIN_FORMAT: the identifier is malformed or reserved (400)
//   - TENANT_NOT_FOUND: no active tenant for the identifier (404)
//   - TENANT_RESOLUTION_ERROR: the store failed or resolution panicked (500)
package tenant
