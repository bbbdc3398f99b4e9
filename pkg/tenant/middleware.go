package tenant

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
)

// ErrorHandler writes the response for a failed resolution.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err *Error)

type middlewareConfig struct {
	errorHandler ErrorHandler
	skipPaths    []string
	logger       *slog.Logger
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

// WithErrorHandler replaces the default JSON error response.
func WithErrorHandler(h ErrorHandler) MiddlewareOption {
	return func(c *middlewareConfig) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// WithSkipPaths lists paths that bypass resolution (health checks, metrics, ...).
// Each entry matches itself and everything below it: "/admin" skips "/admin"
// and "/admin/tenants" but not "/administrator".
func WithSkipPaths(paths ...string) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.skipPaths = append(c.skipPaths, paths...)
	}
}

// WithMiddlewareLogger sets the logger used for rejected requests.
func WithMiddlewareLogger(log *slog.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		if log != nil {
			c.logger = log
		}
	}
}

// Middleware resolves the tenant for every request and stores it in the
// request context. Requests that fail resolution never reach next.
func Middleware(resolver *Resolver, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		errorHandler: DefaultErrorHandler,
		logger:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipped(r.URL.Path, cfg.skipPaths) {
				next.ServeHTTP(w, r)
				return
			}

			res := resolver.Resolve(r.Context(), RequestFromHTTP(r))
			if res.Error != nil {
				cfg.logger.WarnContext(r.Context(), "request rejected: tenant not resolved",
					logger.ErrorCode(string(res.Error.Code)),
					slog.String("host", r.Host),
					slog.String("path", r.URL.Path),
				)
				cfg.errorHandler(w, r, res.Error)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), res.Tenant)))
		})
	}
}

func skipped(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix == "" {
			continue
		}
		prefix = strings.TrimSuffix(prefix, "/")
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// RequireTenant rejects requests whose context carries no tenant.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = DefaultErrorHandler
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := FromContext(r.Context()); !ok {
				errorHandler(w, r, newError(CodeTenantNotFound,
					"Tenant not found",
					ErrNoTenantInContext.Error(),
					ErrNoTenantInContext,
				))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// DefaultErrorHandler writes the resolution result as JSON with a status
// derived from the error code.
func DefaultErrorHandler(w http.ResponseWriter, _ *http.Request, err *Error) {
	writeJSON(w, err.Code.HTTPStatus(), Result{Error: err})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
