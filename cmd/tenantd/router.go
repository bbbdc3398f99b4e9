package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/tenantkit/pkg/clientip"
	"github.com/dmitrymomot/tenantkit/pkg/httpserver"
	"github.com/dmitrymomot/tenantkit/pkg/metrics"
	"github.com/dmitrymomot/tenantkit/pkg/requestid"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// defaultSettings are overlaid by each tenant's own settings in /api/tenant.
var defaultSettings = map[string]any{
	"theme":  "light",
	"locale": "en",
}

type routerDeps struct {
	log          *slog.Logger
	resolver     *tenant.Resolver
	notifier     tenant.Notifier
	skipPaths    []string
	checks       map[string]httpserver.Check
	probeTimeout time.Duration
	// scope pins per-request database state before tenant resolution; nil in tests.
	scope func(http.Handler) http.Handler
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(clientip.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", httpserver.LivenessHandler())
	r.Get("/readyz", httpserver.ReadinessHandler(d.log, d.probeTimeout, d.checks))
	r.Handle("/metrics", metrics.Handler())
	r.Mount("/admin/tenants", tenant.AdminRoutes(d.resolver, d.notifier, d.log))

	r.Group(func(r chi.Router) {
		if d.scope != nil {
			r.Use(d.scope)
		}
		r.Use(tenant.Middleware(d.resolver,
			tenant.WithSkipPaths(d.skipPaths...),
			tenant.WithMiddlewareLogger(d.log),
		))
		r.Get("/api/tenant", currentTenant)
	})

	return r
}

type tenantResponse struct {
	Tenant   *tenant.Tenant `json:"tenant"`
	Settings map[string]any `json:"settings"`
}

func currentTenant(w http.ResponseWriter, r *http.Request) {
	t := tenant.MustFromContext(r.Context())

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(tenantResponse{
		Tenant:   t,
		Settings: t.Settings.Merge(defaultSettings),
	})
}
