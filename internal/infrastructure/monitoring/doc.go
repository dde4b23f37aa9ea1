/*
Package monitoring provides performance monitoring and metrics collection.

# Overview

This package implements Prometheus-based metrics collection for the
portal host, tracking HTTP requests, remote loads, mount lifecycle
operations, and WebSocket activity.

# Features

- HTTP request metrics (latency, throughput)
- Remote load metrics (fetch duration, status)
- Mount/unmount counters and active mount gauge
- Registry size gauge
- WebSocket connection and message metrics
- System metrics (uptime)

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Record domain metrics
	metrics.RecordLoad("dashboard", "ok", elapsed)
	metrics.RecordMount("dashboard", "ok")

# Metrics Endpoint

Expose metrics via the standard Prometheus endpoint:

	import "github.com/prometheus/client_golang/prometheus/promhttp"
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring
