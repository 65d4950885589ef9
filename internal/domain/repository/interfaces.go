package repository

import (
	"context"
	"errors"
	"time"

	"Sentinel/internal/domain/models"
)

// ErrStateCorrupt marks a persisted document that could not be decoded.
var ErrStateCorrupt = errors.New("state document corrupt")

// StateStore owns the single persisted document.
// Update runs load, mutate, persist under one exclusive lock; an error from
// fn aborts without writing. View sees one consistent document and must not
// retain or mutate it.
type StateStore interface {
	View(ctx context.Context, fn func(s *models.State) error) error
	Update(ctx context.Context, fn func(s *models.State) error) error
	Close() error
}

// SampleStore keeps per-symbol strength history, oldest first.
type SampleStore interface {
	Append(ctx context.Context, symbol string, s models.Sample) error
	Latest(ctx context.Context, symbol string, n int) ([]models.Sample, error)
}

// MarketSource returns one consistent batch per call.
type MarketSource interface {
	Name() string
	Snapshot(ctx context.Context, symbols []string) (models.Batch, error)
}

type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan []models.InstrumentSnapshot, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// NewsSource returns headlines for a symbol within the trailing window.
type NewsSource interface {
	Name() string
	Headlines(ctx context.Context, symbol string, window time.Duration) ([]models.Headline, error)
}

// Translator rewrites a title into the canonical scoring language.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Notifier delivers a text digest to a destination. Delivery is at most once.
type Notifier interface {
	Name() string
	Push(ctx context.Context, to, text string) error
}

type Metrics interface {
	RecordReport(kind, outcome string)
	RecordPush(channel string, ok bool)
	RecordWatchEvent(kind string)
	RecordSourceError(source string)
	RecordStrength(symbol string, strength float64)
	RecordLatency(op string, d time.Duration)
}
