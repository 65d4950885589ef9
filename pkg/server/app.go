package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"Sentinel/internal/usecase"
	"Sentinel/pkg/config"
	apphttp "Sentinel/pkg/http"
	applogger "Sentinel/pkg/logger"
	"Sentinel/pkg/scheduler"
)

// App encapsulates the application lifecycle: the market stream collector,
// the job scheduler and the HTTP server.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	collector  *usecase.SnapshotCollector
	scheduler  *scheduler.Scheduler
	httpServer *apphttp.Server
}

func New(
	cfg *config.Config,
	log *applogger.Logger,
	collector *usecase.SnapshotCollector,
	sched *scheduler.Scheduler,
	httpServer *apphttp.Server,
) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		collector:  collector,
		scheduler:  sched,
		httpServer: httpServer,
	}
}

// Run starts everything and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	a.log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	return a.Shutdown(shutdownCtx)
}

// Start brings up the collector, the scheduler and the HTTP server. A stream
// that cannot connect is logged and left to the REST fallback.
func (a *App) Start(ctx context.Context) error {
	if a.collector != nil {
		if err := a.collector.Start(ctx); err != nil {
			a.log.Warn("collector start failed, serving from REST fallback", applogger.Error(err))
		} else {
			a.log.Info("collector started", applogger.Strings("symbols", a.cfg.Market.Symbols))
		}
	}

	a.scheduler.Start()

	if err := a.httpServer.Start(); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops intake first, then waits for running jobs and the stream.
func (a *App) Shutdown(ctx context.Context) error {
	a.log.Info("shutting down")

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown failed", applogger.Error(err))
	}
	if err := a.scheduler.Stop(ctx); err != nil {
		a.log.Warn("scheduler stop timed out", applogger.Error(err))
	}
	if a.collector != nil {
		if err := a.collector.Shutdown(ctx); err != nil {
			a.log.Warn("collector stop failed", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
