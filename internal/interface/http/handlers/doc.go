// Package handlers contains HTTP handler interfaces, implementations, and middleware.
//
// This package provides:
//   - Health check interfaces and implementations
//   - Reusable middleware components
//
// # Health Checks
//
// Required checks gate readiness; optional checks only mark the service degraded:
//
//	checker := handlers.NewCompositeHealthChecker("v1.0.0")
//	checker.AddCheck("dataset", handlers.NewDatasetCheck(store))
//	checker.AddOptionalCheck("redis", handlers.NewCacheCheck(cache))
//
//	status := checker.Check(ctx)
//	if !status.Ready {
//	    log.Printf("not ready: %s", status.Message)
//	}
//
// # Middleware
//
// API routes get APIHeaders; the UI file server gets StaticAssets:
//
//	api := handlers.Wrap(mux, handlers.APIHeaders)
//	ui := handlers.StaticAssets(5*time.Minute)(http.FileServer(http.Dir(dir)))
package handlers
