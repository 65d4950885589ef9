package binance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"Sentinel/internal/domain/models"
	drepo "Sentinel/internal/domain/repository"
)

// Book keeps the latest stream reading per symbol and serves whole batches
// from one locked read. When the book is older than staleAfter it asks the
// fallback source instead.
type Book struct {
	fallback   drepo.MarketSource
	staleAfter time.Duration
	now        func() time.Time

	mu      sync.RWMutex
	latest  map[string]models.InstrumentSnapshot
	updated time.Time
}

func NewBook(fallback drepo.MarketSource, staleAfter time.Duration) *Book {
	return &Book{
		fallback:   fallback,
		staleAfter: staleAfter,
		now:        time.Now,
		latest:     make(map[string]models.InstrumentSnapshot),
	}
}

var _ drepo.MarketSource = (*Book)(nil)

func (b *Book) Name() string { return "binance" }

// Apply merges one stream frame.
func (b *Book) Apply(snaps []models.InstrumentSnapshot) {
	if len(snaps) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range snaps {
		b.latest[s.Symbol] = s
	}
	b.updated = b.now()
}

// Snapshot returns every requested symbol; symbols never seen read as zero.
func (b *Book) Snapshot(ctx context.Context, symbols []string) (models.Batch, error) {
	b.mu.RLock()
	fresh := !b.updated.IsZero() && b.now().Sub(b.updated) <= b.staleAfter
	var batch models.Batch
	if fresh {
		batch.At = b.updated
		batch.Snapshots = make([]models.InstrumentSnapshot, 0, len(symbols))
		for _, sym := range symbols {
			s, ok := b.latest[sym]
			if !ok {
				s = models.InstrumentSnapshot{Symbol: sym}
			}
			batch.Snapshots = append(batch.Snapshots, s)
		}
	}
	b.mu.RUnlock()

	if fresh {
		return batch, nil
	}
	if b.fallback == nil {
		return models.Batch{}, fmt.Errorf("binance book stale since %s and no fallback", b.updated.Format(time.RFC3339))
	}
	return b.fallback.Snapshot(ctx, symbols)
}
