// Package main is the entry point for the vshell daemon.
//
// vshelld serves a POSIX-flavored shell over a database-backed virtual
// filesystem. Clients open sessions scoped to a project, then execute
// command lines over REST or a WebSocket stream.
//
// The server provides:
//   - REST API for sessions and one-shot command execution
//   - WebSocket streaming for interactive shells
//   - Prometheus metrics at /metrics
//   - Per-IP rate limiting and CORS
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./vshelld -port 8000 -store /var/lib/vshell/files.db
//
//	# Development mode (colored logs, debug level)
//	./vshelld -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
