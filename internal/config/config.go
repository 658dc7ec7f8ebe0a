package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Pipeline   PipelineConfig
	Controller ControllerConfig
	Logging    LogConfig
	Metrics    MetricsConfig
}

// PipelineConfig sizes the pipeline's queues and fixed producer pool.
type PipelineConfig struct {
	InputQueueSize  int `envconfig:"INPUT_QUEUE_SIZE" default:"200"`
	WorkerQueueSize int `envconfig:"WORKER_QUEUE_SIZE" default:"200"`
	OutputQueueSize int `envconfig:"OUTPUT_QUEUE_SIZE" default:"4000"`
	Producers       int `envconfig:"PRODUCERS" default:"4"`
}

// ControllerConfig tunes the consumer-pool autoscaler. Thresholds are
// percentages of the worker queue's capacity.
type ControllerConfig struct {
	CheckPeriod   time.Duration `envconfig:"CHECK_PERIOD" default:"1s"`
	LowThreshold  int           `envconfig:"LOW_THRESHOLD" default:"20"`
	HighThreshold int           `envconfig:"HIGH_THRESHOLD" default:"80"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// MetricsConfig holds the optional Prometheus scrape endpoint.
type MetricsConfig struct {
	Enabled bool   `envconfig:"METRICS_ENABLED" default:"false"`
	Addr    string `envconfig:"METRICS_ADDR" default:":9090"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration, mirroring the pipeline's reference
// deployment: 200-slot endpoint queues, a 4000-slot output queue, four
// producers, 20/80 thresholds checked every second.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			InputQueueSize:  200,
			WorkerQueueSize: 200,
			OutputQueueSize: 4000,
			Producers:       4,
		},
		Controller: ControllerConfig{
			CheckPeriod:   time.Second,
			LowThreshold:  20,
			HighThreshold: 80,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
	}
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Pipeline.InputQueueSize < 1 || c.Pipeline.WorkerQueueSize < 1 || c.Pipeline.OutputQueueSize < 1 {
		return fmt.Errorf("queue sizes must be at least 1")
	}
	if c.Pipeline.Producers < 1 {
		return fmt.Errorf("producer count must be at least 1, got %d", c.Pipeline.Producers)
	}
	if c.Controller.CheckPeriod <= 0 {
		return fmt.Errorf("check period must be positive, got %s", c.Controller.CheckPeriod)
	}
	if c.Controller.LowThreshold < 0 || c.Controller.HighThreshold > 100 ||
		c.Controller.LowThreshold >= c.Controller.HighThreshold {
		return fmt.Errorf("thresholds must satisfy 0 <= low < high <= 100, got low=%d high=%d",
			c.Controller.LowThreshold, c.Controller.HighThreshold)
	}
	return nil
}
