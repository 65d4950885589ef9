package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics holds the collectors for the inbound API.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	limited  *prometheus.CounterVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	f := promauto.With(reg)
	return &HTTPMetrics{
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sentinel",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "sentinel",
				Subsystem: "http",
				Name:      "latency_seconds",
				Help:      "Latency of API endpoints",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		limited: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sentinel",
				Subsystem: "http",
				Name:      "rate_limited_total",
				Help:      "Requests rejected by the command rate limiter",
			},
			[]string{"route"},
		),
	}
}

func (m *HTTPMetrics) ObserveRequest(route, method string, status int, d time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route).Observe(d.Seconds())
}

func (m *HTTPMetrics) RateLimited(route string) {
	m.limited.WithLabelValues(route).Inc()
}
