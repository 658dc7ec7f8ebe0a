package pipeline

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/beltline/beltline/internal/config"
	"github.com/beltline/beltline/internal/item"
	"github.com/beltline/beltline/internal/logging"
	"github.com/beltline/beltline/internal/monitoring"
	"github.com/beltline/beltline/internal/queue"
	"github.com/beltline/beltline/internal/transform"
)

// Pipeline owns the three queues and the two pools and wires them together.
// The source enqueues into Input, the sink dequeues from Output; everything
// in between runs concurrently once Start is called.
type Pipeline struct {
	id string

	input  *queue.Queue[*item.Item]
	worker *queue.Queue[*item.Item]
	output *queue.Queue[*item.Item]

	producers  *ProducerPool
	controller *Controller

	log *logging.Logger
}

// New builds a pipeline from configuration and the two injected transform
// stages. All construction errors (invalid capacities, pool sizes,
// thresholds) are surfaced here, synchronously; Start cannot fail.
func New(
	cfg *config.Config,
	producerStage, consumerStage transform.Stage,
	log *logging.Logger,
	metrics *monitoring.Metrics,
) (*Pipeline, error) {
	input, err := queue.New[*item.Item](cfg.Pipeline.InputQueueSize)
	if err != nil {
		return nil, fmt.Errorf("input queue: %w", err)
	}
	worker, err := queue.New[*item.Item](cfg.Pipeline.WorkerQueueSize)
	if err != nil {
		return nil, fmt.Errorf("worker queue: %w", err)
	}
	output, err := queue.New[*item.Item](cfg.Pipeline.OutputQueueSize)
	if err != nil {
		return nil, fmt.Errorf("output queue: %w", err)
	}

	id := uuid.NewString()
	log = log.With(zap.String("pipeline_id", id))

	producers, err := NewProducerPool(cfg.Pipeline.Producers, input, worker, producerStage, log, metrics)
	if err != nil {
		return nil, fmt.Errorf("producer pool: %w", err)
	}
	controller, err := NewController(cfg.Controller, worker, output, consumerStage, log, metrics)
	if err != nil {
		return nil, fmt.Errorf("controller: %w", err)
	}

	return &Pipeline{
		id:         id,
		input:      input,
		worker:     worker,
		output:     output,
		producers:  producers,
		controller: controller,
		log:        log,
	}, nil
}

// ID returns the pipeline's run identifier.
func (p *Pipeline) ID() string {
	return p.id
}

// Start launches the producer pool and the consumer-pool controller. The
// workers it starts have no join: the orchestrator decides shutdown by
// waiting on the source and sink, then lets process exit reap the rest.
func (p *Pipeline) Start() {
	p.producers.Start()
	p.controller.Start()
	p.log.Info("pipeline started",
		zap.Int("producers", p.producers.Size()),
		zap.Int("input_capacity", p.input.Capacity()),
		zap.Int("worker_capacity", p.worker.Capacity()),
		zap.Int("output_capacity", p.output.Capacity()))
}

// Input returns the queue the source feeds.
func (p *Pipeline) Input() *queue.Queue[*item.Item] {
	return p.input
}

// Output returns the queue the sink drains.
func (p *Pipeline) Output() *queue.Queue[*item.Item] {
	return p.output
}

// ConsumerCount reports the current size of the elastic consumer pool.
func (p *Pipeline) ConsumerCount() int {
	return p.controller.ConsumerCount()
}

// InFlight reports how many items are sitting in the pipeline's queues.
// It is a racy snapshot, fit only for teardown logging.
func (p *Pipeline) InFlight() int {
	return p.input.Size() + p.worker.Size() + p.output.Size()
}
