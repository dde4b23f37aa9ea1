// Package server wires the portal host together: configuration,
// logging, metrics, tracing, the remote load/mount pipeline, and the
// HTTP and WebSocket boundaries.
package server
