package tenant

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/metrics"
)

// Notifier propagates invalidations to other instances. *Invalidator implements it.
type Notifier interface {
	Publish(ctx context.Context, subdomain string) error
}

type adminHandler struct {
	admin    CacheAdmin
	notifier Notifier
	logger   *slog.Logger
}

// AdminRoutes exposes cache administration for operators and for the
// tenant-settings-changed webhook. notifier may be nil on single-instance setups.
//
//	GET    /cache                       current entries
//	DELETE /cache                       drop everything
//	DELETE /cache/{subdomain}           drop one tenant
//	POST   /events/settings-changed     {"subdomain": "acme"}; empty subdomain drops everything
func AdminRoutes(admin CacheAdmin, notifier Notifier, log *slog.Logger) chi.Router {
	if log == nil {
		log = logger.Discard()
	}
	h := &adminHandler{admin: admin, notifier: notifier, logger: log}

	r := chi.NewRouter()
	r.Get("/cache", h.stats)
	r.Delete("/cache", h.clear)
	r.Delete("/cache/{subdomain}", h.invalidate)
	r.Post("/events/settings-changed", h.settingsChanged)
	return r
}

func (h *adminHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.Stats(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to read tenant cache stats", logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cache unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *adminHandler) clear(w http.ResponseWriter, r *http.Request) {
	h.drop(w, r, "", "admin")
}

func (h *adminHandler) invalidate(w http.ResponseWriter, r *http.Request) {
	h.drop(w, r, chi.URLParam(r, "subdomain"), "admin")
}

func (h *adminHandler) settingsChanged(w http.ResponseWriter, r *http.Request) {
	var ev InvalidationEvent
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&ev); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid event payload"})
		return
	}
	if ev.Subdomain != "" && !ValidSubdomain(ev.Subdomain) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid subdomain"})
		return
	}
	h.drop(w, r, ev.Subdomain, "webhook")
}

// drop invalidates locally first, then tells the other instances.
func (h *adminHandler) drop(w http.ResponseWriter, r *http.Request, subdomain, source string) {
	ctx := r.Context()

	var err error
	if subdomain == "" {
		err = h.admin.ClearAll(ctx)
		metrics.ObserveInvalidation("all", source)
	} else {
		err = h.admin.Invalidate(ctx, subdomain)
		metrics.ObserveInvalidation("key", source)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "tenant cache invalidation failed", logger.Subdomain(subdomain), logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cache unavailable"})
		return
	}

	if h.notifier != nil {
		if err := h.notifier.Publish(ctx, subdomain); err != nil {
			// Local cache is already clean; peers converge on TTL expiry.
			h.logger.WarnContext(ctx, "failed to broadcast tenant invalidation", logger.Subdomain(subdomain), logger.Error(err))
		}
	}

	h.logger.InfoContext(ctx, "tenant cache invalidated",
		logger.Subdomain(subdomain),
		slog.String("source", source),
	)
	w.WriteHeader(http.StatusNoContent)
}
