package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/beltline/beltline/internal/item"
	"github.com/beltline/beltline/internal/logging"
	"github.com/beltline/beltline/internal/monitoring"
	"github.com/beltline/beltline/internal/queue"
	"github.com/beltline/beltline/internal/transform"
)

// Consumer is a single cancellable worker draining the worker queue,
// applying the consumer-side transform, and forwarding to the output queue.
//
// Cancellation is cooperative: the stop request is a context cancellation
// observed while the consumer is idle or at the boundary between completed
// dequeue-transform-enqueue cycles, never inside one. An item the consumer
// has dequeued is always delivered downstream before the worker exits.
type Consumer struct {
	id      int
	in      *queue.Queue[*item.Item]
	out     *queue.Queue[*item.Item]
	stage   transform.Stage
	log     *logging.Logger
	metrics *monitoring.Metrics

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewConsumer constructs a consumer between the in and out queues. The id
// is a label for logs; uniqueness is the caller's concern.
func NewConsumer(
	id int,
	in, out *queue.Queue[*item.Item],
	stage transform.Stage,
	log *logging.Logger,
	metrics *monitoring.Metrics,
) *Consumer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Consumer{
		id:      id,
		in:      in,
		out:     out,
		stage:   stage,
		log:     log.Named("consumer").With(zap.Int("worker", id)),
		metrics: metrics,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// Start launches the consumer's goroutine.
func (c *Consumer) Start() {
	go c.run()
}

// Cancel requests a cooperative stop. It is idempotent: repeated requests
// on an already-stopping consumer have no additional effect.
func (c *Consumer) Cancel() {
	c.cancel()
}

// Done is closed once the consumer's goroutine has exited.
func (c *Consumer) Done() <-chan struct{} {
	return c.done
}

func (c *Consumer) run() {
	defer close(c.done)
	c.log.Debug("worker started")

	for {
		it, err := c.in.DequeueContext(c.ctx)
		if err != nil {
			// Cancelled while idle: nothing was in flight.
			c.log.Debug("worker stopped while idle")
			return
		}

		// From here to the end of the iteration the item is in flight and
		// the cycle always completes; the plain Enqueue cannot be
		// interrupted by cancellation.
		start := time.Now()
		c.out.Enqueue(it.WithValue(c.stage(it.Op, it.Value)))
		c.metrics.ItemsConsumed.Inc()
		c.metrics.ObserveStage("consumer", start)

		if c.ctx.Err() != nil {
			c.log.Debug("worker stopped at loop boundary")
			return
		}
	}
}
