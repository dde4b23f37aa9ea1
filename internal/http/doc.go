// Package http provides HTTP handlers and routing for the portal host
// REST API.
//
// This package implements all HTTP endpoints using the Gin framework,
// including health checks, remote load/mount/unmount operations, and
// container binding management.
//
// Endpoints:
//   - Health: / and /health
//   - Remotes: /remotes, /remotes/:scope, /remotes/:scope/load,
//     /remotes/:scope/mount, /remotes/:scope/unmount
//   - Containers: /containers, /containers/:id,
//     /containers/:id/attach, /containers/:id/detach,
//     /containers/:id/retry
//
// Example Usage:
//
//	handlers := http.NewHandlers(registry, resolver, coordinator, catalog, hostMgr)
//	router.GET("/health", handlers.Health)
//	router.POST("/remotes/:scope/mount", handlers.MountRemote)
package http
