// Package config provides 12-factor configuration management for the vshell
// service.
//
// Configuration is loaded from environment variables with sensible defaults.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Store: file store backend selection (memory or sqlite)
//   - Seed: project manifests loaded on startup
//   - Logging: log level and output format
//   - RateLimit: per-IP rate limiting configuration
//   - Fetch: outbound HTTP client behind the curl command
//   - Runtime: JavaScript execution limits behind the node command
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST
//   - STORE_DRIVER, STORE_PATH
//   - SEED_DIR, SEED_ENABLED
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - FETCH_TIMEOUT, FETCH_ENABLED, JS_TIMEOUT
package config
