// Package config provides 12-factor configuration management for the pipeline.
//
// Configuration is loaded from environment variables with sensible defaults;
// the defaults reproduce the reference deployment (200-slot endpoint queues,
// 4000-slot output queue, four producers, 20/80 scaling thresholds checked
// once per second).
//
// Configuration Sections:
//   - Pipeline: queue capacities and producer pool size
//   - Controller: autoscaler check period and thresholds
//   - Logging: log level and output format
//   - Metrics: optional Prometheus scrape endpoint
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("worker queue capacity %d\n", cfg.Pipeline.WorkerQueueSize)
//
// Environment Variables:
//   - INPUT_QUEUE_SIZE, WORKER_QUEUE_SIZE, OUTPUT_QUEUE_SIZE, PRODUCERS
//   - CHECK_PERIOD, LOW_THRESHOLD, HIGH_THRESHOLD
//   - LOG_LEVEL, LOG_DEV
//   - METRICS_ENABLED, METRICS_ADDR
package config
