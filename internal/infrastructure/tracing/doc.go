// Package tracing provides lightweight request tracing for the host.
//
// Spans are collected asynchronously and emitted through the structured
// logger, with trace identity propagated via X-Trace-ID / X-Span-ID
// headers so a remote load can be followed from the HTTP boundary
// through resolution and mounting.
package tracing
