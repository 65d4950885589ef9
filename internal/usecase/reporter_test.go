package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Sentinel/internal/domain/models"
	"Sentinel/internal/service/cache"
)

func TestRankOrdersAndClassifies(t *testing.T) {
	f := newFixture(t)

	ranked, err := f.reporter.Rank(context.Background())
	require.NoError(t, err)
	require.Len(t, ranked, 4)
	assert.Equal(t, "BTC", ranked[0].Symbol)
	assert.InDelta(t, 100, ranked[0].Strength, 1e-9)
	assert.Equal(t, "DOGE", ranked[3].Symbol)
	assert.InDelta(t, 0, ranked[3].Strength, 1e-9)

	// only the live point, nothing stored yet
	require.NotNil(t, ranked[0].Trend)
	assert.True(t, ranked[0].Trend.Insufficient)
	assert.Equal(t, models.PhaseIdle, ranked[0].Trend.Phase)
}

func TestRankBlendsNews(t *testing.T) {
	f := newFixture(t)
	f.news.scores["SOL"] = models.SentimentCacheEntry{Symbol: "SOL", Score: 100}

	ranked, err := f.reporter.Rank(context.Background())
	require.NoError(t, err)
	for _, r := range ranked {
		if r.Symbol == "SOL" {
			assert.True(t, r.HasNews)
			assert.InDelta(t, 0.7*r.Strength+30, r.Composite, 1e-9)
		} else {
			assert.False(t, r.HasNews)
			assert.Equal(t, r.Strength, r.Composite)
		}
	}
}

func TestRankFailsOnEmptyBatch(t *testing.T) {
	f := newFixture(t)
	f.crypto.set(models.Batch{Snapshots: []models.InstrumentSnapshot{{Symbol: "BTC"}}}, nil)

	_, err := f.reporter.Rank(context.Background())
	assert.ErrorIs(t, err, errNoMarketData)
}

func TestSamplesBuildHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		f.crypto.set(cryptoBatch(f.clock.Now()), nil)
		require.NoError(t, f.reporter.RecordSamples(ctx))
		f.clock.Advance(10 * time.Minute)
	}
	// the same batch timestamp is not recorded twice
	require.NoError(t, f.reporter.RecordSamples(ctx))

	require.NoError(t, f.store.View(ctx, func(s *models.State) error {
		assert.Len(t, s.Samples["BTC"], 3)
		assert.Len(t, s.Samples["DOGE"], 3)
		return nil
	}))

	ranked, err := f.reporter.Rank(ctx)
	require.NoError(t, err)
	assert.False(t, ranked[0].Trend.Insufficient)
	assert.Equal(t, models.PhaseIdle, ranked[0].Trend.Phase)
}

func TestReportsDoNotWriteHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	prefs := models.DefaultPrefs()

	historyLen := func() int {
		n := 0
		require.NoError(t, f.store.View(ctx, func(s *models.State) error {
			n = len(s.Samples["BTC"])
			return nil
		}))
		return n
	}

	require.NoError(t, f.reporter.RecordSamples(ctx))
	require.Equal(t, 1, historyLen())

	for i := 0; i < 3; i++ {
		f.clock.Advance(20 * time.Minute)
		f.crypto.set(cryptoBatch(f.clock.Now()), nil)
		_, err := f.reporter.SideReport(ctx, prefs, true)
		require.NoError(t, err)
		_, err = f.reporter.SideReport(ctx, prefs, false)
		require.NoError(t, err)
	}
	// one snapshot for the recording plus one per side report
	assert.Equal(t, 7, f.crypto.calls)
	assert.Equal(t, 1, historyLen())
}

func TestRankAddsLivePointToStaleHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		f.crypto.set(cryptoBatch(f.clock.Now()), nil)
		require.NoError(t, f.reporter.RecordSamples(ctx))
		f.clock.Advance(10 * time.Minute)
	}

	f.crypto.set(cryptoBatch(f.clock.Now()), nil)
	ranked, err := f.reporter.Rank(ctx)
	require.NoError(t, err)
	assert.False(t, ranked[0].Trend.Insufficient)

	// a batch within one interval of the last stored sample adds nothing
	f.crypto.set(cryptoBatch(f.clock.Now().Add(-5*time.Minute)), nil)
	ranked, err = f.reporter.Rank(ctx)
	require.NoError(t, err)
	assert.True(t, ranked[0].Trend.Insufficient)

	require.NoError(t, f.store.View(ctx, func(s *models.State) error {
		assert.Len(t, s.Samples["BTC"], 2)
		return nil
	}))
}

func TestWithLivePointKeepsDepth(t *testing.T) {
	t0 := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	hist := []models.Sample{{Ts: t0, Price: 1}, {Ts: t0.Add(10 * time.Minute), Price: 2}}

	got := withLivePoint(hist, models.Sample{Ts: t0.Add(20 * time.Minute), Price: 3}, 10*time.Minute, 2)
	require.Len(t, got, 2)
	assert.Equal(t, 2.0, got[0].Price)
	assert.Equal(t, 3.0, got[1].Price)
	assert.Equal(t, 1.0, hist[0].Price)

	got = withLivePoint(nil, models.Sample{Ts: t0, Price: 3}, 10*time.Minute, 2)
	assert.Len(t, got, 1)
}

func TestTrendReportFallsBackToCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	prefs := models.DefaultPrefs()

	rep, err := f.reporter.TrendReport(ctx, prefs)
	require.NoError(t, err)
	assert.Equal(t, models.SourceFresh, rep.Source)
	assert.Equal(t, "trend:tw:n4:top3", rep.Key)
	assert.Contains(t, rep.Text, "🚀 Crypto trend · top 3")
	assert.Contains(t, rep.Text, "1. 💤 BTC 100 🔴+4.00% · insufficient data")
	assert.NotContains(t, rep.Text, "DOGE")

	f.crypto.set(models.Batch{}, errUpstream)
	f.clock.Advance(90 * time.Second)
	rep, err = f.reporter.TrendReport(ctx, prefs)
	require.NoError(t, err)
	assert.Equal(t, models.SourceRecentCache, rep.Source)
	assert.Contains(t, rep.Annotated(), "(using recent cache (age 90s))")
}

func TestTrendReportNoFallback(t *testing.T) {
	f := newFixture(t)
	f.crypto.set(models.Batch{}, errUpstream)

	_, err := f.reporter.TrendReport(context.Background(), models.DefaultPrefs())
	assert.ErrorIs(t, err, cache.ErrNoFallback)
	assert.ErrorIs(t, err, errUpstream)
}

func TestSideReports(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	weak, err := f.reporter.SideReport(ctx, models.DefaultPrefs(), false)
	require.NoError(t, err)
	assert.Equal(t, "weak:tw:n4:top3", weak.Key)
	assert.Contains(t, weak.Text, "🥶 Weak list\n1. DOGE 0 🟢-6.00% 💤 ⚠️ short bias\n2. SOL ")
	assert.NotContains(t, weak.Text, "BTC")

	prefs := models.DefaultPrefs()
	prefs.ShowPrice = true
	prefs.Scheme = models.SchemeUS
	strong, err := f.reporter.SideReport(ctx, prefs, true)
	require.NoError(t, err)
	assert.Equal(t, "strong_px:us:n4:top3", strong.Key)
	assert.Contains(t, strong.Text, "1. BTC 100 🟢+4.00% 💤 ($65,000)")
}

func TestSideReportAddsNewsPicks(t *testing.T) {
	f := newFixture(t)
	now := f.clock.Now()
	f.news.scores["BTC"] = models.SentimentCacheEntry{Symbol: "BTC", Score: 50, Items: []models.ScoredHeadline{
		{Headline: models.Headline{Title: "Bitcoin rallies", TitleTranslated: "比特幣上漲", PublishedAt: now.Add(-3 * time.Hour)}},
		{Headline: models.Headline{Title: "Miners sell", PublishedAt: now.Add(-20 * time.Minute)}},
		{Headline: models.Headline{Title: "Old halving recap", PublishedAt: now.Add(-20 * time.Hour)}},
	}}
	f.news.scores["ETH"] = models.SentimentCacheEntry{Symbol: "ETH", Score: 50, Items: []models.ScoredHeadline{
		{Headline: models.Headline{Title: "Ether upgrade ships", PublishedAt: now.Add(-time.Hour)}},
	}}

	strong, err := f.reporter.SideReport(context.Background(), models.DefaultPrefs(), true)
	require.NoError(t, err)
	assert.Contains(t, strong.Text, "\n\n🗞️ News picks\n• BTC\n  - 比特幣上漲 〔3h ago〕\n  - Miners sell 〔20m ago〕\n• ETH\n  - Ether upgrade ships 〔1h ago〕")
	assert.NotContains(t, strong.Text, "Old halving recap")

	// picks follow the listed symbols only
	weak, err := f.reporter.SideReport(context.Background(), models.DefaultPrefs(), false)
	require.NoError(t, err)
	assert.Contains(t, weak.Text, "\n\n🗞️ News picks\n• ETH\n  - Ether upgrade ships 〔1h ago〕")
	assert.NotContains(t, weak.Text, "• BTC")

	delete(f.news.scores, "ETH")
	weak, err = f.reporter.SideReport(context.Background(), models.DefaultPrefs(), false)
	require.NoError(t, err)
	assert.NotContains(t, weak.Text, "News picks")
}

func TestEquityReport(t *testing.T) {
	f := newFixture(t)

	rep, err := f.reporter.EquityReport(context.Background(), models.DefaultPrefs())
	require.NoError(t, err)
	assert.Equal(t, "📈 Equities · Risk-On: 70\n1. NVDA 🔴+2.50%\n2. AAPL 🔴+1.50%", rep.Text)
}

func TestComposeMorningIncludesAllSections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.watches.Watch(ctx, "BTC", models.SideLong)
	require.NoError(t, err)

	text := f.reporter.Compose(ctx, "morning")
	assert.Contains(t, text, "【Morning】scheme: tw\nWatches: BTC long · 1h00m left (until 10:30)\n")
	assert.Contains(t, text, "📈 Equities · Risk-On: 70")
	assert.Contains(t, text, "🚀 Crypto trend · top 3")
}

func TestComposeNoonSkipsEquity(t *testing.T) {
	f := newFixture(t)
	text := f.reporter.Compose(context.Background(), "noon")
	assert.Contains(t, text, "【Noon】")
	assert.Contains(t, text, "Watches: no active watches")
	assert.NotContains(t, text, "Equities")
	assert.Contains(t, text, "🗞️ Crypto news (24h): no recent headlines\n\n🚀 Crypto trend")
}

func TestComposeMarketNewsOnMorningAndNoon(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := f.clock.Now()
	f.news.scores["BTC"] = models.SentimentCacheEntry{Symbol: "BTC", Score: 60, Items: []models.ScoredHeadline{
		{Headline: models.Headline{Title: "ETF inflows jump", Link: "l1", PublishedAt: now.Add(-2 * time.Hour)}},
		{Headline: models.Headline{Title: "Miners sell", Link: "l2", PublishedAt: now.Add(-20 * time.Minute)}},
	}}
	f.news.scores["ETH"] = models.SentimentCacheEntry{Symbol: "ETH", Score: 55, Items: []models.ScoredHeadline{
		{Headline: models.Headline{Title: "ETF inflows jump", Link: "l1", PublishedAt: now.Add(-2 * time.Hour)}},
		{Headline: models.Headline{Title: "Ether upgrade ships", Link: "l3", PublishedAt: now.Add(-5 * time.Minute)}},
		{Headline: models.Headline{Title: "Gas fees fall", Link: "l4", PublishedAt: now.Add(-6 * time.Hour)}},
	}}

	want := "🗞️ Crypto news (24h)\n1. Ether upgrade ships 〔5m ago〕\n2. Miners sell 〔20m ago〕\n3. ETF inflows jump 〔2h ago〕"
	assert.Equal(t, want, f.reporter.MarketNews(ctx))
	assert.Contains(t, f.reporter.Compose(ctx, "morning"), want)
	assert.Contains(t, f.reporter.Compose(ctx, "noon"), want)
	assert.NotContains(t, f.reporter.Compose(ctx, "evening"), "Crypto news")
	assert.NotContains(t, f.reporter.Compose(ctx, "night"), "Crypto news")
}

func TestComposeNightAddsEquityNews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := f.clock.Now()
	f.news.scores["NVDA"] = models.SentimentCacheEntry{Symbol: "NVDA", Score: 70, Items: []models.ScoredHeadline{
		{Headline: models.Headline{Title: "Nvidia beats estimates", PublishedAt: now.Add(-2 * time.Hour)}},
	}}

	text := f.reporter.Compose(ctx, "night")
	assert.Contains(t, text, "📈 Equities · Risk-On: 70\n1. NVDA 🔴+2.50%\n2. AAPL 🔴+1.50%\n\n🗞️ Equity news\n• NVDA\n  - Nvidia beats estimates 〔2h ago〕\n")
	assert.NotContains(t, f.reporter.Compose(ctx, "morning"), "Equity news")
}

func TestEquityNewsCapsTopics(t *testing.T) {
	f := newFixture(t)
	now := f.clock.Now()
	for _, sym := range []string{"AAPL", "NVDA"} {
		f.news.scores[sym] = models.SentimentCacheEntry{Symbol: sym, Score: 60, Items: []models.ScoredHeadline{
			{Headline: models.Headline{Title: sym + " one", PublishedAt: now.Add(-time.Hour)}},
			{Headline: models.Headline{Title: sym + " two", PublishedAt: now.Add(-2 * time.Hour)}},
			{Headline: models.Headline{Title: sym + " three", PublishedAt: now.Add(-3 * time.Hour)}},
		}}
	}
	f.reporter.cfg.NewsMaxTopics = 1

	assert.Equal(t, "🗞️ Equity news\n• AAPL\n  - AAPL one 〔1h ago〕\n  - AAPL two 〔2h ago〕", f.reporter.EquityNews(context.Background()))

	delete(f.news.scores, "AAPL")
	delete(f.news.scores, "NVDA")
	assert.Equal(t, "🗞️ Equity news: no recent headlines", f.reporter.EquityNews(context.Background()))
}

func TestComposeDegradesPerSection(t *testing.T) {
	f := newFixture(t)
	f.crypto.set(models.Batch{}, errUpstream)
	f.equity.set(models.Batch{}, errUpstream)

	text := f.reporter.Compose(context.Background(), "night")
	assert.Contains(t, text, "equity block generation failed: no cached data available")
	assert.Contains(t, text, "crypto trend list generation failed: no cached data available")
}

func TestComposeRespectsDisabledModules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.prefs.SetModule(ctx, ModuleCrypto, false)
	require.NoError(t, err)
	_, err = f.prefs.SetModule(ctx, ModuleEquity, false)
	require.NoError(t, err)

	text := f.reporter.Compose(ctx, "morning")
	assert.Contains(t, text, "(crypto module disabled)")
	assert.NotContains(t, text, "Equities")
	assert.Zero(t, f.crypto.calls)
}

func TestRefreshBadges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.news.scores["BTC"] = models.SentimentCacheEntry{Symbol: "BTC", Score: 75, Items: []models.ScoredHeadline{
		{Headline: models.Headline{Title: "SEC approves spot ETF"}},
	}}

	badges, err := f.reporter.RefreshBadges(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"RISK-ON", "POLICY↑", "NEWS🔥"}, badges)
	assert.Equal(t, badges, f.reporter.Badges(ctx))
	assert.Zero(t, f.reporter.BadgesAge(ctx))

	text := f.reporter.Compose(ctx, "noon")
	assert.Contains(t, text, "【Noon】scheme: tw | [RISK-ON] [POLICY↑] [NEWS🔥]")
}

func TestRefreshBadgesToleratesEquityOutage(t *testing.T) {
	f := newFixture(t)
	f.equity.set(models.Batch{}, errUpstream)
	f.news.scores["ETH"] = models.SentimentCacheEntry{Symbol: "ETH", Score: 20, Items: []models.ScoredHeadline{
		{Headline: models.Headline{Title: "Regulator delays ETF decision"}},
	}}

	badges, err := f.reporter.RefreshBadges(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"POLICY↓"}, badges)
}

func TestRiskOn(t *testing.T) {
	assert.Equal(t, 50, RiskOn(models.Batch{}))
	assert.Equal(t, 30, RiskOn(models.Batch{Snapshots: []models.InstrumentSnapshot{{PctChange24h: -2}}}))
	assert.Equal(t, 100, RiskOn(models.Batch{Snapshots: []models.InstrumentSnapshot{{PctChange24h: 9}}}))
}

func TestNews(t *testing.T) {
	f := newFixture(t)
	now := f.clock.Now()
	f.news.scores["BTC"] = models.SentimentCacheEntry{Symbol: "BTC", Score: 64, Items: []models.ScoredHeadline{
		{Headline: models.Headline{Title: "Bitcoin rallies", TitleTranslated: "比特幣上漲", PublishedAt: now.Add(-3 * time.Hour)}},
		{Headline: models.Headline{Title: "Miners sell", PublishedAt: now.Add(-20 * time.Minute)}},
	}}

	text, err := f.reporter.News(context.Background(), "btc", 5)
	require.NoError(t, err)
	assert.Equal(t, "🗞️ BTC news · score 64\n- 比特幣上漲 〔3h ago〕\n- Miners sell 〔20m ago〕", text)

	text, err = f.reporter.News(context.Background(), "ETH", 5)
	require.NoError(t, err)
	assert.Equal(t, "🗞️ ETH: no recent headlines", text)
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "65,000", formatPrice(65000))
	assert.Equal(t, "1,234,568", formatPrice(1234567.8))
	assert.Equal(t, "999", formatPrice(999))
	assert.Equal(t, "0.1500", formatPrice(0.15))
}
