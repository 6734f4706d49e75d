// Package httpserver runs an http.Handler with sane timeouts and graceful shutdown.
//
// Run blocks until its context is cancelled, SIGINT or SIGTERM arrives, or
// Shutdown is called. Shutdown stops accepting connections, waits for in-flight
// requests and then runs the hooks registered with WithShutdownHook, all within
// one shutdown timeout. Hooks are where background work is drained and stores
// are closed:
//
//	srv := httpserver.NewFromConfig(cfg,
//	    httpserver.WithLogger(log),
//	    httpserver.WithShutdownHook(authService.Drain),
//	)
//	if err := srv.Run(ctx, router); err != nil {
//	    log.Error("server stopped", logger.Error(err))
//	}
//
// LivenessHandler and ReadinessHandler serve /healthz and /readyz probes.
package httpserver
