// Package main is the entry point for the portal host server.
//
// The host fetches remote micro-frontend bundles, evaluates their entry
// containers, and orchestrates mounting them into shell containers.
//
// The server provides:
//   - REST API for remote load/mount/unmount and container bindings
//   - WebSocket streaming of mount lifecycle events
//   - Catalog-driven remote discovery
//   - Rate limiting and metrics
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//
// Usage:
//
//	./server -port 8000 -catalog remotes.yaml
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown with remote teardown
package main
