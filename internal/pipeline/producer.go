package pipeline

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/beltline/beltline/internal/item"
	"github.com/beltline/beltline/internal/logging"
	"github.com/beltline/beltline/internal/monitoring"
	"github.com/beltline/beltline/internal/queue"
	"github.com/beltline/beltline/internal/transform"
)

// ProducerPool is the fixed set of workers draining the input queue,
// applying the producer-side transform, and forwarding to the worker queue.
// Its size is chosen at construction and never adjusted; individual
// producers are never cancelled.
type ProducerPool struct {
	size    int
	in      *queue.Queue[*item.Item]
	out     *queue.Queue[*item.Item]
	stage   transform.Stage
	log     *logging.Logger
	metrics *monitoring.Metrics
}

// NewProducerPool constructs a pool of size workers between the in and out
// queues. Construction errors are surfaced synchronously; Start cannot fail.
func NewProducerPool(
	size int,
	in, out *queue.Queue[*item.Item],
	stage transform.Stage,
	log *logging.Logger,
	metrics *monitoring.Metrics,
) (*ProducerPool, error) {
	if size < 1 {
		return nil, fmt.Errorf("producer pool size must be at least 1, got %d", size)
	}
	if in == nil || out == nil {
		return nil, fmt.Errorf("producer pool requires both queues")
	}
	if stage == nil {
		return nil, fmt.Errorf("producer pool requires a transform stage")
	}
	return &ProducerPool{
		size:    size,
		in:      in,
		out:     out,
		stage:   stage,
		log:     log.Named("producer"),
		metrics: metrics,
	}, nil
}

// Size returns the fixed number of workers in the pool.
func (p *ProducerPool) Size() int {
	return p.size
}

// Start launches the pool's workers. They run until the process exits.
func (p *ProducerPool) Start() {
	for i := 0; i < p.size; i++ {
		go p.run(i)
	}
	p.log.Info("producer pool started", zap.Int("workers", p.size))
}

func (p *ProducerPool) run(id int) {
	log := p.log.With(zap.Int("worker", id))
	log.Debug("worker started")

	for {
		// Blocking dequeue: the queue embeds the wait/signal discipline,
		// so the worker never polls for occupancy.
		it := p.in.Dequeue()

		start := time.Now()
		p.out.Enqueue(it.WithValue(p.stage(it.Op, it.Value)))
		p.metrics.ItemsProduced.Inc()
		p.metrics.ObserveStage("producer", start)
	}
}
