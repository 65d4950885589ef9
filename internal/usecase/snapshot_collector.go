package usecase

import (
	"context"
	"sync"
	"sync/atomic"

	"Sentinel/internal/domain/models"
	drepo "Sentinel/internal/domain/repository"
	applogger "Sentinel/pkg/logger"
)

// SnapshotSink receives stream frames.
type SnapshotSink interface {
	Apply(snaps []models.InstrumentSnapshot)
}

// SnapshotCollector pumps the market stream into a sink and reconnects on
// read errors until the context ends.
type SnapshotCollector struct {
	stream  drepo.MarketStream
	sink    SnapshotSink
	metrics drepo.Metrics
	log     *applogger.Logger

	wg      sync.WaitGroup
	stopped atomic.Bool
}

func NewSnapshotCollector(stream drepo.MarketStream, sink SnapshotSink, metrics drepo.Metrics, log *applogger.Logger) *SnapshotCollector {
	return &SnapshotCollector{stream: stream, sink: sink, metrics: metrics, log: log}
}

func (c *SnapshotCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

// Start connects once synchronously so startup surfaces a bad URL, then
// consumes in the background.
func (c *SnapshotCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.run(ctx)
	}()
	return nil
}

func (c *SnapshotCollector) run(ctx context.Context) {
	for {
		if c.stopped.Load() {
			_ = c.stream.Close()
			return
		}
		snapCh, errCh := c.stream.Read(ctx)
		c.consume(ctx, snapCh, errCh)
		if ctx.Err() != nil || c.stopped.Load() {
			return
		}
		for {
			c.metrics.RecordSourceError("stream")
			err := c.stream.Reconnect(ctx)
			if err == nil {
				c.log.Info("collector.stream reconnected")
				break
			}
			if ctx.Err() != nil || c.stopped.Load() {
				return
			}
			c.log.Warn("collector.stream reconnect failed", applogger.Error(err))
		}
	}
}

// consume returns when the stream reports an error, closes, or ctx ends.
func (c *SnapshotCollector) consume(ctx context.Context, snapCh <-chan []models.InstrumentSnapshot, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				c.log.Warn("collector.stream read failed", applogger.Error(err))
				return
			}
		case snaps, ok := <-snapCh:
			if !ok {
				return
			}
			c.sink.Apply(snaps)
		}
	}
}

// Shutdown closes the stream and waits for the consumer to exit.
func (c *SnapshotCollector) Shutdown(ctx context.Context) error {
	c.stopped.Store(true)
	err := c.stream.Close()
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}
