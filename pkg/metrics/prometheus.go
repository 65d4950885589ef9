package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements repository.Metrics using Prometheus.
type Recorder struct {
	reports      *prometheus.CounterVec
	pushes       *prometheus.CounterVec
	watchEvents  *prometheus.CounterVec
	sourceErrors *prometheus.CounterVec
	lastStrength *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

// New registers the recorder on the default registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the recorder on reg; tests pass a fresh registry.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		reports: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_reports_total",
				Help: "Report requests by kind and outcome (fresh, recent_cache, stale_cache, no_fallback)",
			},
			[]string{"kind", "outcome"},
		),
		pushes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_push_total",
				Help: "Push deliveries by channel and result",
			},
			[]string{"channel", "result"},
		),
		watchEvents: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_watch_events_total",
				Help: "Watch lifecycle events by kind",
			},
			[]string{"kind"},
		),
		sourceErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_source_errors_total",
				Help: "Upstream source failures",
			},
			[]string{"source"},
		),
		lastStrength: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sentinel_last_strength",
				Help: "Last computed strength per symbol",
			},
			[]string{"symbol"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sentinel_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordReport(kind, outcome string) {
	r.reports.WithLabelValues(kind, outcome).Inc()
}

func (r *Recorder) RecordPush(channel string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	r.pushes.WithLabelValues(channel, result).Inc()
}

func (r *Recorder) RecordWatchEvent(kind string) {
	r.watchEvents.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordSourceError(source string) {
	r.sourceErrors.WithLabelValues(source).Inc()
}

func (r *Recorder) RecordStrength(symbol string, strength float64) {
	r.lastStrength.WithLabelValues(symbol).Set(strength)
}

func (r *Recorder) RecordLatency(op string, d time.Duration) {
	r.latency.WithLabelValues(op).Observe(d.Seconds())
}

// Nop discards every observation.
type Nop struct{}

func (Nop) RecordReport(string, string)         {}
func (Nop) RecordPush(string, bool)             {}
func (Nop) RecordWatchEvent(string)             {}
func (Nop) RecordSourceError(string)            {}
func (Nop) RecordStrength(string, float64)      {}
func (Nop) RecordLatency(string, time.Duration) {}
