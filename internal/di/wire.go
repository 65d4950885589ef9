//go:build wireinject
// +build wireinject

package di

import (
	"Sentinel/internal/domain/repository"
	"Sentinel/internal/service/binance"
	"Sentinel/internal/usecase"
	"Sentinel/pkg/config"
	"Sentinel/pkg/metrics"
	"Sentinel/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application and
// its cleanup. Wire generates the implementation in wire_gen.go.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideLocation,
		ProvideRegistry,
		ProvideMetrics,
		ProvideHTTPMetrics,
		wire.Bind(new(repository.Metrics), new(*metrics.Recorder)),

		// Storage
		ProvideStateStore,
		ProvideSampleStore,

		// Market and news sources
		ProvideBinanceStream,
		wire.Bind(new(repository.MarketStream), new(*binance.Stream)),
		ProvideCryptoBook,
		wire.Bind(new(usecase.SnapshotSink), new(*binance.Book)),
		ProvideEquitySource,
		ProvideSentiment,

		// Engine
		ProvideClassifier,
		ProvideReportCache,
		ProvideWatchManager,
		usecase.NewPrefsService,
		ProvideReporter,
		usecase.NewCommands,
		usecase.NewSnapshotCollector,

		// Delivery
		ProvideLineNotifier,
		ProvideKafkaProducer,
		ProvideNotifier,
		ProvideJobs,
		wire.Bind(new(usecase.DigestTrigger), new(*usecase.Jobs)),
		ProvideScheduler,

		// Application server
		ProvideHandler,
		ProvideHTTPServer,
		ProvideApp,
	)
	return nil, nil, nil
}
