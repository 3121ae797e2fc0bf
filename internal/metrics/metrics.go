package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/unations/matchengine/internal/stream"
)

// Metrics holds the engine's Prometheus instruments. Handlers increment
// them; the stream dispatcher is read through RegisterStream instead so
// its own counters stay the single source.
type Metrics struct {
	Evaluations         prometheus.Counter
	EvaluationDuration  prometheus.Histogram
	Predictions         prometheus.Counter
	PredictionsDegraded prometheus.Counter
	OutcomesRecorded    prometheus.Counter
}

// New creates the engine metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates the engine metrics on a caller-supplied registry.
func NewWith(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchengine_evaluations_total",
			Help: "Match evaluations performed",
		}),
		EvaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "matchengine_evaluation_duration_seconds",
			Help:    "Match evaluation latency",
			Buckets: prometheus.DefBuckets,
		}),
		Predictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchengine_predictions_total",
			Help: "Win predictions generated",
		}),
		PredictionsDegraded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchengine_predictions_degraded_total",
			Help: "Win predictions generated without a collaborator signal",
		}),
		OutcomesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchengine_outcomes_recorded_total",
			Help: "Bid outcomes recorded",
		}),
	}

	reg.MustRegister(
		m.Evaluations,
		m.EvaluationDuration,
		m.Predictions,
		m.PredictionsDegraded,
		m.OutcomesRecorded,
	)

	return m
}

// RegisterStream exposes the dispatcher's counters and subscription gauges.
func RegisterStream(reg prometheus.Registerer, d *stream.Dispatcher) {
	reg.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "matchengine_stream_published_total",
			Help: "Opportunities published into the stream",
		}, func() float64 { return float64(d.Stats().Published) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "matchengine_stream_deliveries_total",
			Help: "Opportunity deliveries to subscriptions",
		}, func() float64 { return float64(d.Stats().Deliveries) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "matchengine_stream_callback_failures_total",
			Help: "Subscription callbacks that returned an error or panicked",
		}, func() float64 { return float64(d.Stats().CallbackFailures) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "matchengine_stream_subscriptions_active",
			Help: "Subscriptions currently active",
		}, func() float64 { return float64(d.Stats().ActiveSubscriptions) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "matchengine_stream_subscriptions_paused",
			Help: "Subscriptions currently paused",
		}, func() float64 { return float64(d.Stats().PausedSubscriptions) }),
	)
}
