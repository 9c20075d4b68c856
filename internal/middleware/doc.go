// Package middleware provides the HTTP middleware stack for the vshell
// service.
//
// Middleware stack includes:
//   - CORS: Cross-origin resource sharing with configurable origins
//   - RateLimit: Per-IP token bucket rate limiting with idle-client eviction
//   - Metrics: Prometheus request counters and latency histograms
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
//	router.Use(middleware.Metrics(metrics))
package middleware
