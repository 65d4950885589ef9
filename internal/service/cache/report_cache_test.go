package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Sentinel/internal/domain/models"
	"Sentinel/internal/repository"
	applogger "Sentinel/pkg/logger"
	"Sentinel/pkg/metrics"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache(clk *fakeClock, sleeps *[]time.Duration) (*ReportCache, *repository.MemoryStateStore) {
	store := repository.NewMemoryStateStore()
	c := NewReportCache(store, metrics.Nop{}, applogger.Nop(),
		WithClock(clk.Now),
		WithSleep(func(_ context.Context, d time.Duration) error {
			*sleeps = append(*sleeps, d)
			return nil
		}),
	)
	return c, store
}

func ok(text string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return text, nil }
}

func failing(calls *int) func(context.Context) (string, error) {
	return func(context.Context) (string, error) {
		*calls++
		return "", errors.New("429 too many requests")
	}
}

func TestFirstSuccessPopulatesCache(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)}
	var sleeps []time.Duration
	c, store := newTestCache(clk, &sleeps)

	r, err := c.GetOrCompute(context.Background(), "trend:tw:n10:top3", 15*time.Minute, ok("report A"))
	require.NoError(t, err)
	assert.Equal(t, models.SourceFresh, r.Source)
	assert.Equal(t, "report A", r.Annotated())
	assert.Empty(t, sleeps)

	require.NoError(t, store.View(context.Background(), func(s *models.State) error {
		e := s.Reports["trend:tw:n10:top3"]
		assert.Equal(t, "report A", e.Text)
		assert.Equal(t, clk.Now(), e.ComputedAt)
		assert.EqualValues(t, 900, e.TTLSeconds)
		return nil
	}))
}

func TestFailureWithinTTLReturnsRecentCache(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)}
	var sleeps []time.Duration
	c, _ := newTestCache(clk, &sleeps)
	ctx := context.Background()

	_, err := c.GetOrCompute(ctx, "k", 15*time.Minute, ok("cached"))
	require.NoError(t, err)

	clk.Advance(42 * time.Second)
	calls := 0
	r, err := c.GetOrCompute(ctx, "k", 15*time.Minute, failing(&calls))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []time.Duration{800 * time.Millisecond}, sleeps)
	assert.Equal(t, models.SourceRecentCache, r.Source)
	assert.Equal(t, "cached", r.Text)
	assert.Equal(t, "using recent cache (age 42s)", r.Annotation())
}

func TestFailureAfterTTLReturnsStale(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)}
	var sleeps []time.Duration
	c, _ := newTestCache(clk, &sleeps)
	ctx := context.Background()

	_, err := c.GetOrCompute(ctx, "k", time.Minute, ok("old"))
	require.NoError(t, err)

	clk.Advance(2 * time.Hour)
	calls := 0
	r, err := c.GetOrCompute(ctx, "k", time.Minute, failing(&calls))
	require.NoError(t, err)
	assert.Equal(t, models.SourceStaleCache, r.Source)
	assert.Equal(t, "old", r.Text)
	assert.Contains(t, r.Annotated(), "falling back to expired cache (age 7200s, stale)")
}

func TestFailureAtExactTTLIsStillRecent(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)}
	var sleeps []time.Duration
	c, _ := newTestCache(clk, &sleeps)
	ctx := context.Background()

	_, err := c.GetOrCompute(ctx, "k", time.Minute, ok("edge"))
	require.NoError(t, err)
	clk.Advance(time.Minute)

	calls := 0
	r, err := c.GetOrCompute(ctx, "k", time.Minute, failing(&calls))
	require.NoError(t, err)
	assert.Equal(t, models.SourceRecentCache, r.Source)
}

func TestFailureWithoutEntryIsNoFallback(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)}
	var sleeps []time.Duration
	c, store := newTestCache(clk, &sleeps)

	calls := 0
	_, err := c.GetOrCompute(context.Background(), "weak:us:n5:top3", time.Minute, failing(&calls))
	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.ErrorIs(t, err, ErrNoFallback)
	assert.Contains(t, err.Error(), "no fallback data exists")
	assert.Contains(t, err.Error(), "429")

	var nf *NoFallbackError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "weak:us:n5:top3", nf.Key)

	require.NoError(t, store.View(context.Background(), func(s *models.State) error {
		assert.Empty(t, s.Reports)
		return nil
	}))
}

func TestRetrySucceedsOnSecondAttempt(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)}
	var sleeps []time.Duration
	c, _ := newTestCache(clk, &sleeps)

	calls := 0
	r, err := c.GetOrCompute(context.Background(), "k", time.Minute, func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("timeout")
		}
		return "second", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "second", r.Text)
	assert.Equal(t, models.SourceFresh, r.Source)
	assert.Len(t, sleeps, 1)
}

func TestComputeCallIsTimeLimited(t *testing.T) {
	store := repository.NewMemoryStateStore()
	c := NewReportCache(store, metrics.Nop{}, applogger.Nop(),
		WithAttempts(1),
		WithCallTimeout(10*time.Millisecond),
	)

	_, err := c.GetOrCompute(context.Background(), "k", time.Minute, func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, err, ErrNoFallback)
}

func TestAttemptsAreCapped(t *testing.T) {
	store := repository.NewMemoryStateStore()
	c := NewReportCache(store, metrics.Nop{}, applogger.Nop(),
		WithAttempts(5),
		WithSleep(func(context.Context, time.Duration) error { return nil }),
	)
	calls := 0
	_, err := c.GetOrCompute(context.Background(), "k", time.Minute, failing(&calls))
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestReportKeyIsDeterministic(t *testing.T) {
	assert.Equal(t, "trend:tw:n10:top3", ReportKey("trend", models.SchemeTW, 10, 3))
	assert.Equal(t, ReportKey("strong", models.SchemeUS, 4, 5), ReportKey("strong", models.SchemeUS, 4, 5))
	assert.NotEqual(t, ReportKey("strong", models.SchemeUS, 4, 5), ReportKey("strong", models.SchemeTW, 4, 5))
	assert.Equal(t, "trend", kindOf("trend:tw:n10:top3"))
}
