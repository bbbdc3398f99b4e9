package pg

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type connKey struct{}

// WithConn pins conn to ctx for session-scoped statements.
func WithConn(ctx context.Context, conn *pgxpool.Conn) context.Context {
	return context.WithValue(ctx, connKey{}, conn)
}

// ConnFromContext returns the connection pinned by ConnMiddleware.
func ConnFromContext(ctx context.Context) (*pgxpool.Conn, bool) {
	conn, ok := ctx.Value(connKey{}).(*pgxpool.Conn)
	return conn, ok && conn != nil
}

// ConnMiddleware pins one pooled connection to every request, so the tenant
// context set during resolution applies to all of the request's queries.
// Session settings are reset before the connection returns to the pool; a
// connection that cannot be reset is closed instead.
func ConnMiddleware(pool *pgxpool.Pool, acquireTimeout time.Duration, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			acquireCtx := ctx
			if acquireTimeout > 0 {
				var cancel context.CancelFunc
				acquireCtx, cancel = context.WithTimeout(ctx, acquireTimeout)
				defer cancel()
			}

			conn, err := pool.Acquire(acquireCtx)
			if err != nil {
				log.ErrorContext(ctx, "failed to acquire database connection", "error", err)
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
				return
			}
			defer release(conn, log)

			next.ServeHTTP(w, r.WithContext(WithConn(ctx, conn)))
		})
	}
}

func release(conn *pgxpool.Conn, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := conn.Exec(ctx, "RESET ALL"); err != nil {
		log.Warn("discarding database connection with dirty session state", "error", err)
		_ = conn.Hijack().Close(ctx)
		return
	}
	conn.Release()
}
