package pipeline

import (
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/beltline/beltline/internal/config"
	"github.com/beltline/beltline/internal/item"
	"github.com/beltline/beltline/internal/logging"
	"github.com/beltline/beltline/internal/monitoring"
	"github.com/beltline/beltline/internal/queue"
	"github.com/beltline/beltline/internal/transform"
)

// Controller runs the feedback loop that resizes the consumer pool. Every
// check period it samples the worker queue's occupancy snapshot and takes at
// most one action: above the high threshold it starts one new consumer;
// below the low threshold it cancels the most recently started one, never
// shrinking the pool below a single consumer.
//
// No upper bound on the pool is enforced: sustained high occupancy keeps
// growing it. Backpressure from the bounded queues is the only brake; a cap
// is a policy decision left to the integrator.
type Controller struct {
	workerQueue *queue.Queue[*item.Item]
	outputQueue *queue.Queue[*item.Item]
	stage       transform.Stage

	period time.Duration
	low    float64
	high   float64

	// consumers is touched exclusively by the controller goroutine
	// (single-writer invariant), so it needs no lock. count mirrors its
	// length for observers.
	consumers []*Consumer
	nextID    int
	count     atomic.Int64

	log     *logging.Logger
	metrics *monitoring.Metrics
}

// NewController constructs a controller for the consumer pool between the
// worker and output queues. Thresholds arrive as percentages of the worker
// queue's capacity.
func NewController(
	cfg config.ControllerConfig,
	workerQueue, outputQueue *queue.Queue[*item.Item],
	stage transform.Stage,
	log *logging.Logger,
	metrics *monitoring.Metrics,
) (*Controller, error) {
	if workerQueue == nil || outputQueue == nil {
		return nil, fmt.Errorf("controller requires both queues")
	}
	if stage == nil {
		return nil, fmt.Errorf("controller requires a transform stage")
	}
	if cfg.CheckPeriod <= 0 {
		return nil, fmt.Errorf("check period must be positive, got %s", cfg.CheckPeriod)
	}
	if cfg.LowThreshold < 0 || cfg.HighThreshold > 100 || cfg.LowThreshold >= cfg.HighThreshold {
		return nil, fmt.Errorf("thresholds must satisfy 0 <= low < high <= 100, got low=%d high=%d",
			cfg.LowThreshold, cfg.HighThreshold)
	}
	return &Controller{
		workerQueue: workerQueue,
		outputQueue: outputQueue,
		stage:       stage,
		period:      cfg.CheckPeriod,
		low:         float64(cfg.LowThreshold) / 100,
		high:        float64(cfg.HighThreshold) / 100,
		log:         log.Named("controller"),
		metrics:     metrics,
	}, nil
}

// Start seeds the pool with one consumer and launches the control loop.
// The loop has no terminal state; it runs until the process exits.
func (c *Controller) Start() {
	c.scaleUp()
	go c.run()
	c.log.Info("controller started",
		zap.Duration("check_period", c.period),
		zap.Float64("low_threshold", c.low),
		zap.Float64("high_threshold", c.high))
}

// ConsumerCount reports the current pool size. It reads a mirror counter;
// the handle list itself belongs to the controller goroutine alone.
func (c *Controller) ConsumerCount() int {
	return int(c.count.Load())
}

func (c *Controller) run() {
	ticker := time.NewTicker(c.period)
	defer ticker.Stop()

	for range ticker.C {
		c.tick()
	}
}

// tick performs one scaling evaluation: at most one action, up or down.
func (c *Controller) tick() {
	occupancy := c.workerQueue.Occupancy()
	c.metrics.QueueOccupancy.WithLabelValues("worker").Set(occupancy)

	switch {
	case occupancy > c.high:
		c.scaleUp()
	case occupancy < c.low && len(c.consumers) > 1:
		c.scaleDown()
	}
}

func (c *Controller) scaleUp() {
	consumer := NewConsumer(c.nextID, c.workerQueue, c.outputQueue, c.stage, c.log, c.metrics)
	c.nextID++
	consumer.Start()
	c.consumers = append(c.consumers, consumer)
	c.count.Store(int64(len(c.consumers)))

	c.metrics.ConsumersActive.Set(float64(len(c.consumers)))
	c.metrics.ScaleEvents.WithLabelValues("up").Inc()
	c.log.Info("scaling up consumers",
		zap.Int("from", len(c.consumers)-1),
		zap.Int("to", len(c.consumers)))
}

func (c *Controller) scaleDown() {
	// LIFO: the most recently started consumer is cancelled first.
	last := c.consumers[len(c.consumers)-1]
	last.Cancel()
	c.consumers = c.consumers[:len(c.consumers)-1]
	c.count.Store(int64(len(c.consumers)))

	c.metrics.ConsumersActive.Set(float64(len(c.consumers)))
	c.metrics.ScaleEvents.WithLabelValues("down").Inc()
	c.log.Info("scaling down consumers",
		zap.Int("from", len(c.consumers)+1),
		zap.Int("to", len(c.consumers)))
}
