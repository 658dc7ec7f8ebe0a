/*
Package monitoring provides Prometheus metrics collection for the pipeline.

# Overview

This package tracks per-stage throughput and latency, consumer-pool scaling
activity, and sampled queue occupancy. Metrics are observational only: the
autoscaler makes its decisions from the queue's own occupancy snapshot, never
from these collectors.

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Record stage work
	metrics.ItemsProduced.Inc()
	metrics.ObserveStage("producer", start)

	// Record scaling activity
	metrics.ConsumersActive.Set(float64(n))
	metrics.ScaleEvents.WithLabelValues("up").Inc()

# Metrics Endpoint

Expose metrics via the standard Prometheus endpoint:

	http.Handle("/metrics", monitoring.Handler())
*/
package monitoring
