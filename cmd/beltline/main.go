package main

import (
	"flag"
	"log"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/beltline/beltline/internal/config"
	"github.com/beltline/beltline/internal/logging"
	"github.com/beltline/beltline/internal/monitoring"
	"github.com/beltline/beltline/internal/pipeline"
	"github.com/beltline/beltline/internal/stream"
	"github.com/beltline/beltline/internal/transform"
)

func main() {
	// Parse flags
	n := flag.Int("n", 0, "Number of work items to process")
	input := flag.String("input", "", "Input JSON Lines file")
	output := flag.String("output", "", "Output JSON Lines file")
	flag.Parse()

	if *n <= 0 || *input == "" || *output == "" {
		flag.Usage()
		os.Exit(2)
	}

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stdout"},
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	metrics := monitoring.NewMetrics()
	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", monitoring.Handler())
			logger.Info("metrics endpoint listening", zap.String("addr", cfg.Metrics.Addr))
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				logger.Error("metrics endpoint failed", zap.Error(err))
			}
		}()
	}

	// Build and wire the pipeline
	tr := transform.New()
	pipe, err := pipeline.New(cfg, tr.Producer, tr.Consumer, logger, metrics)
	if err != nil {
		logger.Fatal("Failed to build pipeline", zap.Error(err))
	}

	reader := stream.NewReader(*n, *input, pipe.Input(), logger)
	writer := stream.NewWriter(*n, *output, pipe.Output(), logger)

	pipe.Start()
	reader.Start()
	writer.Start()

	// Only the endpoints are joined: their completion owns pipeline
	// lifetime. Worker and controller goroutines are reaped by process
	// exit, and anything still queued at that point is discarded.
	if err := reader.Wait(); err != nil {
		logger.Fatal("Reader failed", zap.Error(err))
	}
	if err := writer.Wait(); err != nil {
		logger.Fatal("Writer failed", zap.Error(err))
	}

	if inflight := pipe.InFlight(); inflight > 0 {
		logger.Warn("Items discarded at teardown", zap.Int("in_flight", inflight))
	}
	logger.Info("Pipeline complete",
		zap.Int("items", *n),
		zap.Int("consumers", pipe.ConsumerCount()))
}
