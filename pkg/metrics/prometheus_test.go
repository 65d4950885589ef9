package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegistry(reg)

	r.RecordReport("trend", "stale_cache")
	r.RecordReport("trend", "stale_cache")
	r.RecordPush("line", false)
	r.RecordWatchEvent("reminder")
	r.RecordStrength("BTC", 72.5)
	r.RecordLatency("report.trend", 120*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.reports.WithLabelValues("trend", "stale_cache")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.pushes.WithLabelValues("line", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.watchEvents.WithLabelValues("reminder")))
	assert.Equal(t, 72.5, testutil.ToFloat64(r.lastStrength.WithLabelValues("BTC")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.latency))
}

func TestRegistriesAreIndependent(t *testing.T) {
	a := NewWithRegistry(prometheus.NewRegistry())
	b := NewWithRegistry(prometheus.NewRegistry())
	a.RecordSourceError("rss")
	assert.Equal(t, 0.0, testutil.ToFloat64(b.sourceErrors.WithLabelValues("rss")))
}
