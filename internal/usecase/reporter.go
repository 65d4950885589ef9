package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"Sentinel/internal/domain/models"
	drepo "Sentinel/internal/domain/repository"
	domsvc "Sentinel/internal/domain/service"
	"Sentinel/internal/service/cache"
	"Sentinel/internal/services/scoring"
	applogger "Sentinel/pkg/logger"
)

var errNoMarketData = errors.New("market source returned no usable data")

// ReporterConfig holds the tunables of report generation.
type ReporterConfig struct {
	Symbols        []string
	EquitySymbols  []string
	TopN           int
	CacheTTL       time.Duration
	Weights        scoring.Weights
	THShort        float64
	HotScore       int
	HistoryDepth   int
	MaxBadges      int
	// SampleInterval is the cadence of the samples.record job.
	SampleInterval time.Duration

	// EquityNewsTopics are the queries of the equity news block; empty means EquitySymbols.
	EquityNewsTopics []string
	NewsPerTopic     int
	NewsMaxTopics    int
	MarketNewsItems  int
}

// ReporterDeps are the collaborators of Reporter. Equity may be nil.
type ReporterDeps struct {
	Crypto     drepo.MarketSource
	Equity     drepo.MarketSource
	Samples    drepo.SampleStore
	Classifier domsvc.TrendClassifier
	Sentiment  domsvc.SentimentProvider
	Cache      domsvc.ReportCache
	Watches    *WatchManager
	Prefs      *PrefsService
	Store      drepo.StateStore
	Metrics    drepo.Metrics
	Log        *applogger.Logger
}

// Reporter builds trend, side and equity reports and composes digests.
// Each report reads one snapshot batch and goes through the report cache.
type Reporter struct {
	ReporterDeps
	cfg ReporterConfig
	now func() time.Time
}

func NewReporter(deps ReporterDeps, cfg ReporterConfig) *Reporter {
	if cfg.TopN <= 0 {
		cfg.TopN = 3
	}
	if cfg.MaxBadges <= 0 {
		cfg.MaxBadges = 3
	}
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = 10 * time.Minute
	}
	if len(cfg.EquityNewsTopics) == 0 {
		cfg.EquityNewsTopics = cfg.EquitySymbols
	}
	if cfg.NewsPerTopic <= 0 {
		cfg.NewsPerTopic = 2
	}
	if cfg.NewsMaxTopics <= 0 {
		cfg.NewsMaxTopics = 6
	}
	if cfg.MarketNewsItems <= 0 {
		cfg.MarketNewsItems = 3
	}
	return &Reporter{ReporterDeps: deps, cfg: cfg, now: time.Now}
}

// Rank takes one crypto batch, classifies every symbol from its stored history
// and blends in news scores. The result is ordered strongest first.
// History is only read here; the batch point is added in memory when the last
// stored sample is at least one sample interval old.
func (r *Reporter) Rank(ctx context.Context) ([]scoring.Ranked, error) {
	start := time.Now()
	defer func() { r.Metrics.RecordLatency("rank", time.Since(start)) }()

	batch, err := r.Crypto.Snapshot(ctx, r.cfg.Symbols)
	if err != nil {
		r.Metrics.RecordSourceError(r.Crypto.Name())
		return nil, fmt.Errorf("snapshot %s: %w", r.Crypto.Name(), err)
	}
	if !hasData(batch) {
		r.Metrics.RecordSourceError(r.Crypto.Name())
		return nil, errNoMarketData
	}

	scores := scoring.Normalize(batch.Snapshots)
	live := r.samplesOf(batch, scores)

	ranked := scoring.Rank(scores, r.newsScores(ctx, r.cfg.Symbols), r.cfg.Weights)
	for i := range ranked {
		sym := ranked[i].Symbol
		hist, err := r.Samples.Latest(ctx, sym, r.cfg.HistoryDepth)
		if err != nil {
			r.Log.Warn("report.history read failed", applogger.String("symbol", sym), applogger.Error(err))
			hist = nil
		}
		if point, ok := live[sym]; ok {
			hist = withLivePoint(hist, point, r.cfg.SampleInterval, r.cfg.HistoryDepth)
		}
		cls := r.Classifier.Classify(sym, hist)
		ranked[i].Trend = &cls
	}
	return ranked, nil
}

// withLivePoint returns hist plus point when the newest stored sample is at
// least interval older than point. The stored slice is never modified.
func withLivePoint(hist []models.Sample, point models.Sample, interval time.Duration, depth int) []models.Sample {
	if n := len(hist); n > 0 && point.Ts.Sub(hist[n-1].Ts) < interval {
		return hist
	}
	out := make([]models.Sample, 0, len(hist)+1)
	out = append(out, hist...)
	out = append(out, point)
	if depth > 0 && len(out) > depth {
		out = out[len(out)-depth:]
	}
	return out
}

// RecordSamples stores one sample per symbol from a fresh batch.
func (r *Reporter) RecordSamples(ctx context.Context) error {
	batch, err := r.Crypto.Snapshot(ctx, r.cfg.Symbols)
	if err != nil {
		r.Metrics.RecordSourceError(r.Crypto.Name())
		return fmt.Errorf("snapshot %s: %w", r.Crypto.Name(), err)
	}
	if !hasData(batch) {
		return errNoMarketData
	}
	r.record(ctx, batch, scoring.Normalize(batch.Snapshots))
	return nil
}

func (r *Reporter) record(ctx context.Context, batch models.Batch, scores []models.StrengthScore) {
	for sym, sample := range r.samplesOf(batch, scores) {
		if err := r.Samples.Append(ctx, sym, sample); err != nil {
			r.Log.Warn("report.sample append failed", applogger.String("symbol", sym), applogger.Error(err))
		}
	}
}

// samplesOf converts a batch into one sample per priced symbol and updates
// the strength gauges.
func (r *Reporter) samplesOf(batch models.Batch, scores []models.StrengthScore) map[string]models.Sample {
	ts := batch.At
	if ts.IsZero() {
		ts = r.now()
	}
	out := make(map[string]models.Sample, len(scores))
	for _, s := range scores {
		r.Metrics.RecordStrength(s.Symbol, s.Strength)
		if s.Price <= 0 {
			continue
		}
		out[s.Symbol] = models.Sample{Ts: ts, Price: s.Price, Volume: volumeOf(batch, s.Symbol), Strength: s.Strength, HasStrength: true}
	}
	return out
}

// newsScores returns scores for symbols that have news; NoData symbols are left out.
func (r *Reporter) newsScores(ctx context.Context, symbols []string) map[string]int {
	if r.Sentiment == nil {
		return nil
	}
	type res struct {
		sym   string
		entry models.SentimentCacheEntry
		err   error
	}
	results := make([]res, len(symbols))
	var wg sync.WaitGroup
	for i, sym := range symbols {
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			e, err := r.Sentiment.Score(ctx, sym)
			results[i] = res{sym: sym, entry: e, err: err}
		}(i, sym)
	}
	wg.Wait()

	out := make(map[string]int, len(symbols))
	for _, x := range results {
		if x.err != nil {
			r.Log.Warn("report.sentiment failed", applogger.String("symbol", x.sym), applogger.Error(x.err))
			continue
		}
		if !x.entry.NoData {
			out[x.sym] = x.entry.Score
		}
	}
	return out
}

// TrendReport is the scheduled crypto trend list.
func (r *Reporter) TrendReport(ctx context.Context, prefs models.Prefs) (models.Report, error) {
	key := cache.ReportKey("trend", prefs.Scheme, len(r.cfg.Symbols), r.cfg.TopN)
	return r.Cache.GetOrCompute(ctx, key, r.cfg.CacheTTL, func(ctx context.Context) (string, error) {
		ranked, err := r.Rank(ctx)
		if err != nil {
			return "", err
		}
		return formatTrend(scoring.Top(ranked, r.cfg.TopN), prefs), nil
	})
}

// SideReport is the strong or weak list followed by news picks for the listed
// symbols. Price display is part of the cache key because it changes the text.
func (r *Reporter) SideReport(ctx context.Context, prefs models.Prefs, strong bool) (models.Report, error) {
	kind := "weak"
	if strong {
		kind = "strong"
	}
	if prefs.ShowPrice {
		kind += "_px"
	}
	key := cache.ReportKey(kind, prefs.Scheme, len(r.cfg.Symbols), r.cfg.TopN)
	shortLine := 100 - r.cfg.THShort
	return r.Cache.GetOrCompute(ctx, key, r.cfg.CacheTTL, func(ctx context.Context) (string, error) {
		ranked, err := r.Rank(ctx)
		if err != nil {
			return "", err
		}
		title, list := "🥶 Weak list", scoring.Bottom(ranked, r.cfg.TopN, shortLine)
		if strong {
			title, list = "💪 Strong list", scoring.Top(ranked, r.cfg.TopN)
		}
		text := formatSide(title, list, prefs)
		syms := make([]string, len(list))
		for i, x := range list {
			syms[i] = x.Symbol
		}
		if picks := r.headlines(ctx, syms, r.cfg.NewsPerTopic); len(picks) > 0 {
			text += "\n\n" + formatTopicNews("🗞️ News picks", picks, r.now())
		}
		return text, nil
	})
}

// EquityReport is the equity watchlist block with its risk-on reading.
func (r *Reporter) EquityReport(ctx context.Context, prefs models.Prefs) (models.Report, error) {
	if r.Equity == nil || len(r.cfg.EquitySymbols) == 0 {
		return models.Report{}, errors.New("equity source not configured")
	}
	kind := "equity"
	if prefs.ShowPrice {
		kind += "_px"
	}
	key := cache.ReportKey(kind, prefs.Scheme, len(r.cfg.EquitySymbols), r.cfg.TopN)
	return r.Cache.GetOrCompute(ctx, key, r.cfg.CacheTTL, func(ctx context.Context) (string, error) {
		batch, err := r.equityBatch(ctx)
		if err != nil {
			return "", err
		}
		ranked := scoring.Rank(scoring.Normalize(batch.Snapshots), nil, r.cfg.Weights)
		return formatEquity(ranked, RiskOn(batch), prefs), nil
	})
}

func (r *Reporter) equityBatch(ctx context.Context) (models.Batch, error) {
	batch, err := r.Equity.Snapshot(ctx, r.cfg.EquitySymbols)
	if err != nil {
		r.Metrics.RecordSourceError(r.Equity.Name())
		return models.Batch{}, fmt.Errorf("snapshot %s: %w", r.Equity.Name(), err)
	}
	if !hasData(batch) {
		r.Metrics.RecordSourceError(r.Equity.Name())
		return models.Batch{}, errNoMarketData
	}
	return batch, nil
}

// EquityDetail is the full equity watchlist followed by the equity news block.
func (r *Reporter) EquityDetail(ctx context.Context, prefs models.Prefs) (string, error) {
	rep, err := r.EquityReport(ctx, prefs)
	if err != nil {
		return "", err
	}
	return rep.Annotated() + "\n\n" + r.EquityNews(ctx), nil
}

// EquityNews groups the latest headlines per equity news topic. Topics
// without headlines are left out.
func (r *Reporter) EquityNews(ctx context.Context) string {
	groups := r.headlines(ctx, r.cfg.EquityNewsTopics, r.cfg.NewsPerTopic)
	if len(groups) > r.cfg.NewsMaxTopics {
		groups = groups[:r.cfg.NewsMaxTopics]
	}
	return formatTopicNews("🗞️ Equity news", groups, r.now())
}

// MarketNews is the newest headlines across all crypto symbols, one list.
func (r *Reporter) MarketNews(ctx context.Context) string {
	seen := make(map[string]bool)
	var items []models.ScoredHeadline
	for _, g := range r.headlines(ctx, r.cfg.Symbols, r.cfg.MarketNewsItems) {
		for _, h := range g.items {
			key := h.Link
			if key == "" {
				key = h.Title
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			items = append(items, h)
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].PublishedAt.After(items[j].PublishedAt) })
	if len(items) > r.cfg.MarketNewsItems {
		items = items[:r.cfg.MarketNewsItems]
	}
	return formatNewsList("🗞️ Crypto news (24h)", items, r.now())
}

type topicHeadlines struct {
	topic string
	items []models.ScoredHeadline
}

// headlines fetches up to k headlines per topic concurrently and keeps topic
// order. Failed or empty topics are dropped.
func (r *Reporter) headlines(ctx context.Context, topics []string, k int) []topicHeadlines {
	if r.Sentiment == nil || len(topics) == 0 {
		return nil
	}
	results := make([]topicHeadlines, len(topics))
	var wg sync.WaitGroup
	for i, topic := range topics {
		wg.Add(1)
		go func(i int, topic string) {
			defer wg.Done()
			items, err := r.Sentiment.Recent(ctx, topic, k)
			if err != nil {
				r.Log.Warn("report.headlines failed", applogger.String("topic", topic), applogger.Error(err))
				return
			}
			if len(items) > k {
				items = items[:k]
			}
			results[i] = topicHeadlines{topic: topic, items: items}
		}(i, topic)
	}
	wg.Wait()

	out := make([]topicHeadlines, 0, len(results))
	for _, g := range results {
		if len(g.items) > 0 {
			out = append(out, g)
		}
	}
	return out
}

// News lists the retained headlines of symbol with their age.
func (r *Reporter) News(ctx context.Context, symbol string, k int) (string, error) {
	sym, err := parseSymbol(symbol)
	if err != nil {
		return "", err
	}
	e, err := r.Sentiment.Score(ctx, sym)
	if err != nil {
		return "", err
	}
	if e.NoData || len(e.Items) == 0 {
		return fmt.Sprintf("🗞️ %s: no recent headlines", sym), nil
	}
	if k <= 0 || k > len(e.Items) {
		k = len(e.Items)
	}
	return formatNews(sym, e.Score, e.Items[:k], r.now()), nil
}

// Compose builds the digest for a phase. Every section degrades to a
// failure line instead of dropping the digest.
func (r *Reporter) Compose(ctx context.Context, phase string) string {
	prefs, err := r.Prefs.Get(ctx)
	if err != nil {
		r.Log.Warn("report.compose prefs unavailable", applogger.Error(err))
		prefs = models.DefaultPrefs()
	}

	header := fmt.Sprintf("【%s】scheme: %s", phaseTitle(phase), prefs.Scheme)
	if badges := r.Badges(ctx); len(badges) > 0 {
		header += " | [" + strings.Join(badges, "] [") + "]"
	}

	summary, err := r.Watches.Summarize(ctx)
	if err != nil {
		summary = "unavailable"
	}
	parts := []string{header, "Watches: " + summary, ""}

	// equities: overnight recap in the morning, block plus news at night
	if prefs.EnableEquity && r.Equity != nil && len(r.cfg.EquitySymbols) > 0 && (phase == "morning" || phase == "night") {
		parts = append(parts, section("equity block", func() (models.Report, error) { return r.EquityReport(ctx, prefs) }), "")
		if phase == "night" {
			parts = append(parts, r.EquityNews(ctx), "")
		}
	}
	if prefs.EnableCrypto {
		if phase == "morning" || phase == "noon" {
			parts = append(parts, r.MarketNews(ctx), "")
		}
		parts = append(parts, section("crypto trend list", func() (models.Report, error) { return r.TrendReport(ctx, prefs) }))
	} else {
		parts = append(parts, "(crypto module disabled)")
	}
	return strings.Join(parts, "\n")
}

func section(name string, fn func() (models.Report, error)) string {
	rep, err := fn()
	if err == nil {
		return rep.Annotated()
	}
	if errors.Is(err, cache.ErrNoFallback) {
		return name + " generation failed: no cached data available"
	}
	return fmt.Sprintf("%s generation failed: %v", name, err)
}

func phaseTitle(phase string) string {
	switch phase {
	case "morning":
		return "Morning"
	case "noon":
		return "Noon"
	case "evening":
		return "Evening"
	case "night":
		return "Night"
	default:
		return phase
	}
}

func hasData(b models.Batch) bool {
	for _, s := range b.Snapshots {
		if s.Price > 0 || s.Volume > 0 {
			return true
		}
	}
	return false
}

func volumeOf(b models.Batch, symbol string) float64 {
	for _, s := range b.Snapshots {
		if s.Symbol == symbol {
			return s.Volume
		}
	}
	return 0
}
