package sentiment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"Sentinel/internal/domain/models"
	"Sentinel/internal/domain/repository"
	applogger "Sentinel/pkg/logger"
)

// Aggregator computes per-symbol sentiment and caches it in the state store.
type Aggregator struct {
	store      repository.StateStore
	sources    []repository.NewsSource
	translator repository.Translator
	metrics    repository.Metrics
	log        *applogger.Logger

	params  Params
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
}

type Option func(*Aggregator)

// WithTranslator enables title translation before scoring.
func WithTranslator(t repository.Translator) Option {
	return func(a *Aggregator) { a.translator = t }
}

func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

func WithParams(p Params) Option {
	return func(a *Aggregator) { a.params = p }
}

// WithSourceTimeout bounds each source fetch.
func WithSourceTimeout(d time.Duration) Option {
	return func(a *Aggregator) { a.timeout = d }
}

func NewAggregator(store repository.StateStore, sources []repository.NewsSource, ttl time.Duration, metrics repository.Metrics, log *applogger.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		store:   store,
		sources: sources,
		metrics: metrics,
		log:     log,
		params:  DefaultParams(),
		ttl:     ttl,
		timeout: 15 * time.Second,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Score returns the cached entry while younger than the TTL, otherwise
// recomputes it. Source failures are absorbed. When every source fails the
// result is a NoData entry with score 0 that is not cached.
func (a *Aggregator) Score(ctx context.Context, symbol string) (models.SentimentCacheEntry, error) {
	now := a.now()

	var cached models.SentimentCacheEntry
	var hit bool
	if err := a.store.View(ctx, func(s *models.State) error {
		e, ok := s.Sentiment[symbol]
		if ok && now.Sub(e.ComputedAt) < a.ttl && !e.ComputedAt.After(now) {
			cached, hit = e, true
		}
		return nil
	}); err != nil {
		return models.SentimentCacheEntry{}, fmt.Errorf("sentiment cache read: %w", err)
	}
	if hit {
		return cached, nil
	}

	headlines, okSources := a.fetch(ctx, symbol)
	if okSources == 0 {
		a.log.Warn("sentiment.score no data",
			applogger.String("symbol", symbol),
			applogger.Int("sources", len(a.sources)),
		)
		return models.SentimentCacheEntry{Symbol: symbol, ComputedAt: now, NoData: true}, nil
	}

	a.translate(ctx, headlines)
	score, raw, items := Aggregate(headlines, now, a.params)
	entry := models.SentimentCacheEntry{
		Symbol:     symbol,
		Score:      score,
		Items:      items,
		ComputedAt: now,
	}
	if len(headlines) == 0 {
		entry.Score = 0
		entry.NoData = true
	}

	if err := a.store.Update(ctx, func(s *models.State) error {
		s.Sentiment[symbol] = entry
		return nil
	}); err != nil {
		return entry, fmt.Errorf("sentiment cache write: %w", err)
	}

	a.log.Debug("sentiment.score computed",
		applogger.String("symbol", symbol),
		applogger.Int("score", entry.Score),
		applogger.Float64("raw", raw),
		applogger.Int("headlines", len(headlines)),
		applogger.Int("retained", len(items)),
	)
	return entry, nil
}

// Recent returns up to k retained headlines for symbol, highest impact first.
func (a *Aggregator) Recent(ctx context.Context, symbol string, k int) ([]models.ScoredHeadline, error) {
	e, err := a.Score(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if k <= 0 || k > len(e.Items) {
		k = len(e.Items)
	}
	return append([]models.ScoredHeadline(nil), e.Items[:k]...), nil
}

func (a *Aggregator) fetch(ctx context.Context, symbol string) ([]models.Headline, int) {
	type result struct {
		items []models.Headline
		err   error
		name  string
	}
	results := make([]result, len(a.sources))

	var wg sync.WaitGroup
	for i, src := range a.sources {
		wg.Add(1)
		go func(i int, src repository.NewsSource) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()
			items, err := src.Headlines(cctx, symbol, a.params.Window)
			results[i] = result{items: items, err: err, name: src.Name()}
		}(i, src)
	}
	wg.Wait()

	var out []models.Headline
	ok := 0
	for _, r := range results {
		if r.err != nil {
			a.metrics.RecordSourceError(r.name)
			a.log.Warn("sentiment.fetch source failed",
				applogger.String("symbol", symbol),
				applogger.String("source", r.name),
				applogger.Error(r.err),
			)
			continue
		}
		ok++
		out = append(out, r.items...)
	}
	return out, ok
}

func (a *Aggregator) translate(ctx context.Context, hs []models.Headline) {
	if a.translator == nil {
		return
	}
	for i := range hs {
		if hs[i].TitleTranslated != "" || hs[i].Title == "" {
			continue
		}
		cctx, cancel := context.WithTimeout(ctx, a.timeout)
		tr, err := a.translator.Translate(cctx, hs[i].Title)
		cancel()
		if err != nil {
			a.metrics.RecordSourceError("translate")
			continue
		}
		hs[i].TitleTranslated = tr
	}
}
