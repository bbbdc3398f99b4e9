// Package httpserver runs an http.Handler with graceful shutdown.
//
// Run blocks until its context is cancelled or the process receives
// SIGINT/SIGTERM, drains in-flight requests, then runs shutdown hooks in
// reverse registration order so resources opened first are closed last.
//
//	srv := httpserver.NewFromConfig(cfg,
//		httpserver.WithLogger(log),
//		httpserver.WithShutdownHook("postgres", func(context.Context) error { pool.Close(); return nil }),
//	)
//	err := srv.Run(ctx, router)
//
// LivenessHandler and ReadinessHandler back the /healthz and /readyz probes.
package httpserver
