package cache

import (
	"context"
	"fmt"
	"time"

	"Sentinel/internal/domain/models"
	"Sentinel/internal/domain/repository"
	applogger "Sentinel/pkg/logger"
)

// ReportCache retries a report computation a bounded number of times and
// falls back to the last stored text when every attempt fails.
type ReportCache struct {
	store   repository.StateStore
	metrics repository.Metrics
	log     *applogger.Logger

	attempts    int
	backoff     time.Duration
	callTimeout time.Duration
	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration) error
}

type Option func(*ReportCache)

// WithAttempts caps compute calls per request; values outside 1..2 are ignored.
func WithAttempts(n int) Option {
	return func(c *ReportCache) {
		if n >= 1 && n <= 2 {
			c.attempts = n
		}
	}
}

func WithBackoff(d time.Duration) Option {
	return func(c *ReportCache) { c.backoff = d }
}

// WithCallTimeout bounds each compute call.
func WithCallTimeout(d time.Duration) Option {
	return func(c *ReportCache) {
		if d > 0 {
			c.callTimeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *ReportCache) { c.now = now }
}

func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *ReportCache) { c.sleep = sleep }
}

func NewReportCache(store repository.StateStore, metrics repository.Metrics, log *applogger.Logger, opts ...Option) *ReportCache {
	c := &ReportCache{
		store:       store,
		metrics:     metrics,
		log:         log,
		attempts:    2,
		backoff:     800 * time.Millisecond,
		callTimeout: 20 * time.Second,
		now:         time.Now,
		sleep:       sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrCompute always tries compute first. A success is stored and returned
// fresh. After the last failed attempt the stored entry is returned as recent
// (age <= ttl) or stale; with no entry the result is a *NoFallbackError.
func (c *ReportCache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(ctx context.Context) (string, error)) (models.Report, error) {
	kind := kindOf(key)
	start := c.now()
	defer func() { c.metrics.RecordLatency("report."+kind, c.now().Sub(start)) }()

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, c.backoff); err != nil {
				lastErr = fmt.Errorf("retry wait: %w", err)
				break
			}
		}
		text, err := c.call(ctx, compute)
		if err == nil {
			return c.storeFresh(ctx, key, ttl, text), nil
		}
		lastErr = err
		c.log.Warn("report.compute failed",
			applogger.String("key", key),
			applogger.Int("attempt", attempt),
			applogger.Error(err),
		)
	}

	var entry models.ReportCacheEntry
	var found bool
	if err := c.store.View(ctx, func(s *models.State) error {
		entry, found = s.Reports[key]
		return nil
	}); err != nil {
		c.log.Error("report.cache read failed", applogger.String("key", key), applogger.Error(err))
	}
	if !found {
		c.metrics.RecordReport(kind, "no_fallback")
		return models.Report{}, &NoFallbackError{Key: key, Err: lastErr}
	}

	now := c.now()
	age := entry.Age(now)
	src := models.SourceStaleCache
	if age <= ttl {
		src = models.SourceRecentCache
	}
	c.metrics.RecordReport(kind, src.String())
	c.log.Info("report.cache fallback",
		applogger.String("key", key),
		applogger.String("source", src.String()),
		applogger.Duration("age_ms", age),
	)
	return models.Report{Key: key, Text: entry.Text, Source: src, Age: age}, nil
}

func (c *ReportCache) call(ctx context.Context, compute func(ctx context.Context) (string, error)) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	return compute(callCtx)
}

// storeFresh persists a successful result. A failed write still returns the
// fresh text; the next failure just has an older fallback.
func (c *ReportCache) storeFresh(ctx context.Context, key string, ttl time.Duration, text string) models.Report {
	now := c.now()
	err := c.store.Update(ctx, func(s *models.State) error {
		s.Reports[key] = models.ReportCacheEntry{
			Key:        key,
			Text:       text,
			ComputedAt: now,
			TTLSeconds: int64(ttl / time.Second),
		}
		return nil
	})
	if err != nil {
		c.log.Error("report.cache write failed", applogger.String("key", key), applogger.Error(err))
	}
	c.metrics.RecordReport(kindOf(key), models.SourceFresh.String())
	return models.Report{Key: key, Text: text, Source: models.SourceFresh}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
