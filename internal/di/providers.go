package di

import (
	"context"
	"fmt"
	"time"

	"Sentinel/internal/domain/repository"
	"Sentinel/internal/handler/api"
	internalrepo "Sentinel/internal/repository"
	"Sentinel/internal/service/binance"
	"Sentinel/internal/service/cache"
	httpmetrics "Sentinel/internal/service/metrics"
	"Sentinel/internal/service/news"
	"Sentinel/internal/service/notify"
	"Sentinel/internal/service/quotes"
	"Sentinel/internal/service/ratelimit"
	"Sentinel/internal/service/translate"
	"Sentinel/internal/services/scoring"
	"Sentinel/internal/services/sentiment"
	"Sentinel/internal/services/trend"
	"Sentinel/internal/usecase"
	pkgcache "Sentinel/pkg/cache"
	pkgch "Sentinel/pkg/clickhouse"
	"Sentinel/pkg/config"
	apphttp "Sentinel/pkg/http"
	pkgkafka "Sentinel/pkg/kafka"
	applogger "Sentinel/pkg/logger"
	"Sentinel/pkg/metrics"
	"Sentinel/pkg/scheduler"
	"Sentinel/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideLocation resolves the timezone used by schedules and displayed times.
func ProvideLocation(cfg *config.Config) (*time.Location, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", cfg.Timezone, err)
	}
	return loc, nil
}

// ProvideRegistry creates the Prometheus registry served on the metrics path.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func ProvideMetrics(reg *prometheus.Registry) *metrics.Recorder {
	return metrics.NewWithRegistry(reg)
}

func ProvideHTTPMetrics(reg *prometheus.Registry) *httpmetrics.HTTPMetrics {
	return httpmetrics.NewHTTPMetrics(reg)
}

// ProvideStateStore opens the persisted document on the configured backend.
func ProvideStateStore(cfg *config.Config, l *applogger.Logger) (repository.StateStore, func(), error) {
	var (
		store repository.StateStore
		err   error
	)
	switch cfg.State.Backend {
	case "redis":
		r := cfg.State.Redis
		kv, cerr := pkgcache.NewRedisCache(pkgcache.RedisOptions{
			Host:     r.Host,
			Port:     r.Port,
			Password: r.Password,
			DB:       r.DB,
			Prefix:   r.Prefix,
		})
		if cerr != nil {
			return nil, nil, fmt.Errorf("redis state: %w", cerr)
		}
		store = internalrepo.NewRedisStateStore(kv, r.Key, r.LockTTL, l)
	default:
		store, err = internalrepo.NewFileStateStore(cfg.State.Path, l)
		if err != nil {
			return nil, nil, fmt.Errorf("file state: %w", err)
		}
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			l.Warn("state store close failed", applogger.Error(err))
		}
	}
	return store, cleanup, nil
}

// ProvideSampleStore keeps strength history in the state document or in ClickHouse.
func ProvideSampleStore(cfg *config.Config, store repository.StateStore, l *applogger.Logger) (repository.SampleStore, func(), error) {
	h := cfg.History
	if h.Backend != "clickhouse" {
		return internalrepo.NewStateSampleStore(store, h.MaxSamples), func() {}, nil
	}

	ch := h.ClickHouse
	client, err := pkgch.NewClient(pkgch.Config{
		Host:         ch.Host,
		Port:         ch.Port,
		Database:     ch.Database,
		User:         ch.User,
		Password:     ch.Password,
		UseHTTP:      ch.UseHTTP,
		DialTimeout:  ch.DialTimeout,
		ReadTimeout:  ch.ReadTimeout,
		WriteTimeout: ch.WriteTimeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	samples := internalrepo.NewCHSampleStore(client, l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, samples.Schema()); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			l.Warn("clickhouse close failed", applogger.Error(err))
		}
	}
	return samples, cleanup, nil
}

func ProvideBinanceStream(cfg *config.Config, l *applogger.Logger) *binance.Stream {
	m := cfg.Market
	return binance.NewStream(m.WebSocketURL, m.QuoteAsset, m.Symbols, m.ReconnectDelay, m.PingInterval, l)
}

// ProvideCryptoBook serves crypto batches from the stream, falling back to REST when stale.
func ProvideCryptoBook(cfg *config.Config) *binance.Book {
	client := apphttp.NewClient(apphttp.WithTimeout(cfg.Market.Timeout))
	rest := binance.NewRESTSource(client, cfg.Market.RESTURL, cfg.Market.QuoteAsset)
	return binance.NewBook(rest, cfg.Market.StaleAfter)
}

// ProvideEquitySource returns nil when the equity module is disabled.
func ProvideEquitySource(cfg *config.Config) *quotes.YahooSource {
	eq := cfg.Market.Equities
	if !eq.Enabled || len(eq.Symbols) == 0 {
		return nil
	}
	return quotes.NewYahooSource(apphttp.NewClient(apphttp.WithTimeout(eq.Timeout)), eq.QuoteURL)
}

func ProvideSentiment(cfg *config.Config, store repository.StateStore, m repository.Metrics, l *applogger.Logger) *sentiment.Aggregator {
	n := cfg.News
	client := apphttp.NewClient(apphttp.WithTimeout(n.Timeout))
	sources := []repository.NewsSource{news.NewRSSSource(client, n.RSSURL, n.Language, n.Region, n.Trust)}

	opts := []sentiment.Option{
		sentiment.WithParams(sentiment.Params{
			Window:   cfg.Sentiment.Window,
			Clamp:    cfg.Sentiment.Clamp,
			MaxItems: cfg.Sentiment.MaxItems,
		}),
		sentiment.WithSourceTimeout(n.Timeout),
	}
	if cfg.Translate.Enabled {
		tc := apphttp.NewClient(apphttp.WithTimeout(cfg.Translate.Timeout))
		opts = append(opts, sentiment.WithTranslator(translate.NewHTTPTranslator(tc, cfg.Translate.URL, cfg.Translate.Target)))
	}
	return sentiment.NewAggregator(store, sources, cfg.Sentiment.CacheTTL, m, l, opts...)
}

func ProvideClassifier(cfg *config.Config) (*trend.Classifier, error) {
	t := cfg.Trend
	return trend.NewClassifier(trend.Thresholds{
		THLong:         t.THLong,
		THShort:        t.THShort,
		MinSlopeFire:   t.MinSlopeFire,
		MinSlopeBolt:   t.MinSlopeBolt,
		VolBoostFire:   t.VolBoostFire,
		VolWeakMoon:    t.VolWeakMoon,
		BoltBand:       t.BoltBand,
		MoonBand:       t.MoonBand,
		MoonSlope:      t.MoonSlope,
		MinSamples:     t.MinSamples,
		SlopeWindow:    t.SlopeWindow,
		EMAWindow:      t.EMAWindow,
		EMAAlpha:       t.EMAAlpha,
		VolShortWindow: t.VolShortWindow,
	})
}

func ProvideReportCache(cfg *config.Config, store repository.StateStore, m repository.Metrics, l *applogger.Logger) *cache.ReportCache {
	r := cfg.Reports
	return cache.NewReportCache(store, m, l,
		cache.WithAttempts(r.Attempts),
		cache.WithBackoff(r.Backoff),
		cache.WithCallTimeout(r.CallTimeout),
	)
}

func ProvideWatchManager(cfg *config.Config, store repository.StateStore, m repository.Metrics, l *applogger.Logger, loc *time.Location) *usecase.WatchManager {
	return usecase.NewWatchManager(store, m, l, cfg.Watch.Duration, cfg.Watch.ReminderLead, usecase.WithWatchLocation(loc))
}

func ProvideReporter(
	cfg *config.Config,
	book *binance.Book,
	equity *quotes.YahooSource,
	samples repository.SampleStore,
	cls *trend.Classifier,
	agg *sentiment.Aggregator,
	rc *cache.ReportCache,
	watches *usecase.WatchManager,
	prefs *usecase.PrefsService,
	store repository.StateStore,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.Reporter {
	deps := usecase.ReporterDeps{
		Crypto:     book,
		Samples:    samples,
		Classifier: cls,
		Sentiment:  agg,
		Cache:      rc,
		Watches:    watches,
		Prefs:      prefs,
		Store:      store,
		Metrics:    m,
		Log:        l,
	}
	if equity != nil {
		deps.Equity = equity
	}
	interval, err := scheduler.Interval(cfg.History.SampleSchedule, time.Now())
	if err != nil {
		// the scheduler rejects the same spec at registration
		l.Warn("history.sample_schedule unparsable", applogger.Error(err))
	}
	return usecase.NewReporter(deps, usecase.ReporterConfig{
		Symbols:        cfg.Market.Symbols,
		EquitySymbols:  cfg.Market.Equities.Symbols,
		TopN:           cfg.Reports.TopN,
		CacheTTL:       cfg.Reports.CacheTTL,
		Weights:        scoring.Weights{Strong: cfg.Scoring.WStrong, News: cfg.Scoring.WNews},
		THShort:        cfg.Trend.THShort,
		HotScore:       cfg.Sentiment.HotScore,
		HistoryDepth:   cfg.History.MaxSamples,
		SampleInterval: interval,

		EquityNewsTopics: cfg.Market.Equities.NewsTopics,
		NewsPerTopic:     cfg.Reports.News.PerTopic,
		NewsMaxTopics:    cfg.Reports.News.MaxTopics,
		MarketNewsItems:  cfg.Reports.News.MarketItems,
	})
}

// ProvideLineNotifier returns nil when no channel token is configured.
func ProvideLineNotifier(cfg *config.Config) *notify.LineNotifier {
	line := cfg.Push.Line
	if line.Token == "" {
		return nil
	}
	client := apphttp.NewClient(apphttp.WithTimeout(line.Timeout))
	return notify.NewLineNotifier(client, line.BaseURL, line.Token, line.To)
}

// ProvideKafkaProducer returns nil when the digest topic is disabled.
func ProvideKafkaProducer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Producer, func(), error) {
	k := cfg.Push.Kafka
	if !k.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(pkgkafka.ProducerConfig{
		Brokers:      k.Brokers,
		Topic:        k.Topic,
		Compression:  k.Compression,
		RequiredAcks: k.RequiredAcks,
		WriteTimeout: k.WriteTimeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	cleanup := func() {
		if err := producer.Close(); err != nil {
			l.Warn("kafka producer close failed", applogger.Error(err))
		}
	}
	return producer, cleanup, nil
}

// ProvideNotifier fans digests out to every configured transport. Without
// any, digests go to the log.
func ProvideNotifier(cfg *config.Config, line *notify.LineNotifier, producer *pkgkafka.Producer, m repository.Metrics, l *applogger.Logger) repository.Notifier {
	var targets []repository.Notifier
	if line != nil {
		targets = append(targets, line)
	}
	if producer != nil {
		targets = append(targets, notify.NewKafkaNotifier(producer))
	}
	if len(targets) == 0 {
		targets = append(targets, notify.NewLogNotifier(l))
	}
	return notify.NewFanout(targets, cfg.Push.Line.Timeout, m, l)
}

func ProvideJobs(cfg *config.Config, watches *usecase.WatchManager, reporter *usecase.Reporter, n repository.Notifier, l *applogger.Logger) *usecase.Jobs {
	return usecase.NewJobs(watches, reporter, n, l, usecase.JobsConfig{
		Digests:    cfg.Reports.Schedule,
		SweepSpec:  cfg.Watch.SweepSchedule,
		SampleSpec: cfg.History.SampleSchedule,
		BadgesSpec: cfg.Reports.Badges,
		PushTo:     cfg.Push.Line.To,
	})
}

// ProvideScheduler registers every job; a bad cron spec fails startup.
func ProvideScheduler(cfg *config.Config, loc *time.Location, jobs *usecase.Jobs, l *applogger.Logger) (*scheduler.Scheduler, error) {
	s := scheduler.New(loc, cfg.Reports.CallTimeout*2, l)
	if err := jobs.Register(s); err != nil {
		return nil, err
	}
	return s, nil
}

func ProvideHandler(
	cfg *config.Config,
	commands *usecase.Commands,
	reporter *usecase.Reporter,
	watches *usecase.WatchManager,
	prefs *usecase.PrefsService,
	jobs *usecase.Jobs,
	sched *scheduler.Scheduler,
	agg *sentiment.Aggregator,
	line *notify.LineNotifier,
	stream *binance.Stream,
	hm *httpmetrics.HTTPMetrics,
	l *applogger.Logger,
) *api.Handler {
	d := api.Deps{
		Commands:      commands,
		Reporter:      reporter,
		Watches:       watches,
		Prefs:         prefs,
		Jobs:          jobs,
		Scheduler:     sched,
		Sentiment:     agg,
		Stream:        stream,
		Limiter:       ratelimit.New(cfg.Admin.Burst, cfg.Admin.RateLimit),
		Observer:      hm,
		AdminToken:    cfg.Admin.Token,
		LineSecret:    cfg.Push.Line.Secret,
		HasLineToken:  cfg.Push.Line.Token != "",
		HasPushTarget: cfg.Push.Line.To != "",
		Log:           l,
	}
	if line != nil {
		d.Replier = line
	}
	return api.NewHandler(d)
}

func ProvideHTTPServer(cfg *config.Config, h *api.Handler, reg *prometheus.Registry, hm *httpmetrics.HTTPMetrics, l *applogger.Logger) *apphttp.Server {
	opts := []apphttp.ServerOption{
		apphttp.WithPort(cfg.Server.Port),
		apphttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, apphttp.WithMetrics(cfg.Metrics.Path, reg, hm))
	}
	return apphttp.NewServer(h, l, opts...)
}

func ProvideApp(cfg *config.Config, l *applogger.Logger, collector *usecase.SnapshotCollector, sched *scheduler.Scheduler, srv *apphttp.Server) *server.App {
	return server.New(cfg, l, collector, sched, srv)
}
