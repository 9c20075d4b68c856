// Package server wires the HTTP surface of the vshell service.
//
// This package orchestrates all components:
//   - HTTP routing with Gin framework
//   - Middleware stack (CORS, rate limiting, metrics)
//   - Store selection (memory or sqlite) and startup seeding
//   - Session manager and shell interpreter
//   - WebSocket streaming for interactive shells
//
// Server Lifecycle:
//  1. Load configuration from environment/flags
//  2. Initialize logger (production or development)
//  3. Open the file store and seed project manifests
//  4. Build the interpreter with its runtime and fetch clients
//  5. Setup HTTP routes and middleware
//  6. Start HTTP server
//  7. Graceful shutdown on signal
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg, log)
//	if err := srv.Run(cfg.Server.Host, cfg.Server.Port); err != nil {
//	    log.Fatal(err)
//	}
package server
