package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"Sentinel/internal/domain/models"
	"Sentinel/internal/repository"
	"Sentinel/internal/service/cache"
	"Sentinel/internal/services/scoring"
	"Sentinel/internal/services/trend"
	applogger "Sentinel/pkg/logger"
	"Sentinel/pkg/metrics"
)

type fakeMarket struct {
	mu    sync.Mutex
	name  string
	batch models.Batch
	err   error
	calls int
}

func (f *fakeMarket) Name() string { return f.name }

func (f *fakeMarket) Snapshot(_ context.Context, _ []string) (models.Batch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.batch, f.err
}

func (f *fakeMarket) set(b models.Batch, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batch, f.err = b, err
}

type fakeSentiment struct {
	scores map[string]models.SentimentCacheEntry
}

func (f *fakeSentiment) Score(_ context.Context, symbol string) (models.SentimentCacheEntry, error) {
	e, ok := f.scores[symbol]
	if !ok {
		return models.SentimentCacheEntry{Symbol: symbol, NoData: true}, nil
	}
	return e, nil
}

func (f *fakeSentiment) Recent(ctx context.Context, symbol string, k int) ([]models.ScoredHeadline, error) {
	e, _ := f.Score(ctx, symbol)
	return e.Items, nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (n *recordingNotifier) Name() string { return "recording" }

func (n *recordingNotifier) Push(_ context.Context, _, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.texts = append(n.texts, text)
	return n.err
}

var errUpstream = errors.New("upstream 429")

type fixture struct {
	clock    *testClock
	store    *repository.MemoryStateStore
	crypto   *fakeMarket
	equity   *fakeMarket
	news     *fakeSentiment
	watches  *WatchManager
	prefs    *PrefsService
	reporter *Reporter
	pushed   *recordingNotifier
	commands *Commands
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := &testClock{t: time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)}
	store := repository.NewMemoryStateStore()
	log := applogger.Nop()

	cls, err := trend.NewClassifier(trend.DefaultThresholds())
	require.NoError(t, err)

	f := &fixture{
		clock:  clk,
		store:  store,
		crypto: &fakeMarket{name: "crypto", batch: cryptoBatch(clk.Now())},
		equity: &fakeMarket{name: "equity", batch: models.Batch{At: clk.Now(), Snapshots: []models.InstrumentSnapshot{
			{Symbol: "AAPL", Price: 190, PctChange24h: 1.5, Volume: 1000},
			{Symbol: "NVDA", Price: 900, PctChange24h: 2.5, Volume: 3000},
		}}},
		news: &fakeSentiment{scores: map[string]models.SentimentCacheEntry{}},
	}
	f.watches = NewWatchManager(store, metrics.Nop{}, log, time.Hour, 5*time.Minute, WithWatchClock(clk.Now))
	f.prefs = NewPrefsService(store)
	rc := cache.NewReportCache(store, metrics.Nop{}, log,
		cache.WithClock(clk.Now),
		cache.WithSleep(func(context.Context, time.Duration) error { return nil }),
	)
	f.reporter = NewReporter(ReporterDeps{
		Crypto:     f.crypto,
		Equity:     f.equity,
		Samples:    repository.NewStateSampleStore(store, 36),
		Classifier: cls,
		Sentiment:  f.news,
		Cache:      rc,
		Watches:    f.watches,
		Prefs:      f.prefs,
		Store:      store,
		Metrics:    metrics.Nop{},
		Log:        log,
	}, ReporterConfig{
		Symbols:        []string{"BTC", "ETH", "SOL", "DOGE"},
		EquitySymbols:  []string{"AAPL", "NVDA"},
		TopN:           3,
		CacheTTL:       15 * time.Minute,
		Weights:        scoring.Weights{Strong: 0.7, News: 0.3},
		THShort:        65,
		HotScore:       70,
		HistoryDepth:   36,
		SampleInterval: 10 * time.Minute,
	})
	f.reporter.now = clk.Now
	f.pushed = &recordingNotifier{}
	f.commands = NewCommands(f.watches, f.reporter, f.prefs, newJobs(f, f.pushed), time.UTC)
	return f
}

func cryptoBatch(at time.Time) models.Batch {
	return models.Batch{At: at, Snapshots: []models.InstrumentSnapshot{
		{Symbol: "BTC", Price: 65000, PctChange24h: 4, Volume: 9e9},
		{Symbol: "ETH", Price: 3200, PctChange24h: 2, Volume: 5e9},
		{Symbol: "SOL", Price: 150, PctChange24h: -1, Volume: 1e9},
		{Symbol: "DOGE", Price: 0.15, PctChange24h: -6, Volume: 5e8},
	}}
}
