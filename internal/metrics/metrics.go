// Package metrics exposes pipeline counters and latency histograms to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "scribe"

// Latency phase label values.
const (
	PhaseOverall        = "overall"
	PhaseTranscription  = "transcription"
	PhasePostprocessing = "postprocessing"
)

// Metrics holds every collector the pipeline updates.
type Metrics struct {
	Registry *prometheus.Registry

	// Capture
	ChunksCaptured prometheus.Counter
	QueueDepth     prometheus.Gauge

	// Transcription
	WindowLength prometheus.Gauge
	Cycles       prometheus.Counter
	WindowResets prometheus.Counter
	EngineErrors prometheus.Counter
	OutOfRange   prometheus.Counter
	CycleLatency *prometheus.HistogramVec

	// Publishing
	PublishTotal *prometheus.CounterVec
}

// New registers all collectors, plus Go runtime and process collectors, on a
// fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		ChunksCaptured: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_captured_total",
			Help:      "Audio chunks read from the input device",
		}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Chunks captured but not yet dequeued for transcription",
		}),

		WindowLength: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "window_length",
			Help:      "Chunks in the current context window",
		}),
		Cycles: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Completed transcription cycles",
		}),
		WindowResets: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "window_resets_total",
			Help:      "Times the full context window was cleared",
		}),
		EngineErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "engine_errors_total",
			Help:      "Transcription calls that failed and were skipped",
		}),
		OutOfRange: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "normalized_out_of_range_samples_total",
			Help:      "Normalized samples outside the engine's [-1, 1] input range",
		}),
		CycleLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_latency_seconds",
			Help:      "Per-cycle latency by phase",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"phase"}),

		PublishTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_total",
			Help:      "Transcript events handed to the publisher",
		}, []string{"kind", "status"}),
	}
}

// ObserveCycle records one completed cycle's phase latencies.
func (m *Metrics) ObserveCycle(overall, transcription, postprocessing time.Duration) {
	m.Cycles.Inc()
	m.CycleLatency.WithLabelValues(PhaseOverall).Observe(overall.Seconds())
	m.CycleLatency.WithLabelValues(PhaseTranscription).Observe(transcription.Seconds())
	m.CycleLatency.WithLabelValues(PhasePostprocessing).Observe(postprocessing.Seconds())
}

// ObservePublish counts one publish attempt.
func (m *Metrics) ObservePublish(kind string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.PublishTotal.WithLabelValues(kind, status).Inc()
}
