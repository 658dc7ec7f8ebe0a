package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the pipeline.
type Metrics struct {
	// Stage metrics
	ItemsProduced prometheus.Counter
	ItemsConsumed prometheus.Counter
	StageDuration *prometheus.HistogramVec

	// Autoscaler metrics
	ConsumersActive prometheus.Gauge
	ScaleEvents     *prometheus.CounterVec

	// Queue metrics
	QueueOccupancy *prometheus.GaugeVec
}

// NewMetrics creates a metrics collector registered with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates a metrics collector registered with reg. Tests
// pass a fresh registry so collectors never collide across cases.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ItemsProduced: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "beltline_items_produced_total",
				Help: "Items transformed and forwarded by the producer pool",
			},
		),
		ItemsConsumed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "beltline_items_consumed_total",
				Help: "Items transformed and forwarded by the consumer pool",
			},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "beltline_stage_duration_seconds",
				Help:    "Per-item dequeue-transform-enqueue duration by stage",
				Buckets: []float64{.000001, .00001, .0001, .001, .01, .1, 1},
			},
			[]string{"stage"},
		),
		ConsumersActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "beltline_consumers_active",
				Help: "Current size of the elastic consumer pool",
			},
		),
		ScaleEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "beltline_scale_events_total",
				Help: "Consumer pool scaling actions by direction",
			},
			[]string{"direction"},
		),
		QueueOccupancy: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "beltline_queue_occupancy_ratio",
				Help: "Sampled queue occupancy as a ratio of capacity",
			},
			[]string{"queue"},
		),
	}
}

// ObserveStage records one item's processing duration for a stage.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// Handler returns the Prometheus scrape handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
