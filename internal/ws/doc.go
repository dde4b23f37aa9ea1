// Package ws streams mount lifecycle events over WebSocket.
//
// Each connection receives a snapshot of current container bindings on
// connect, then a "lifecycle" message for every state transition the
// host emits. Inbound messages are limited to "ping" and "snapshot"
// requests; all mutations go through the REST API.
package ws
