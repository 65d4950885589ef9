package repository

import (
	"context"
	"sync"

	"Sentinel/internal/domain/models"
)

// MemoryStateStore keeps the document in process memory only.
type MemoryStateStore struct {
	mu    sync.RWMutex
	state *models.State
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{state: models.NewState()}
}

func (m *MemoryStateStore) View(ctx context.Context, fn func(s *models.State) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(m.state)
}

func (m *MemoryStateStore) Update(ctx context.Context, fn func(s *models.State) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	next, err := cloneState(m.state)
	if err != nil {
		return err
	}
	if err := fn(next); err != nil {
		return err
	}
	m.state = next
	return nil
}

func (m *MemoryStateStore) Close() error { return nil }
