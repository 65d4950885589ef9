package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"Sentinel/internal/domain/models"
	applogger "Sentinel/pkg/logger"
)

// FileStateStore persists the document as JSON, replacing the file
// atomically on every write (temp file in the same directory, fsync, rename).
// The in-memory copy is authoritative while the process runs.
type FileStateStore struct {
	path string
	log  *applogger.Logger

	mu    sync.RWMutex
	state *models.State
}

// NewFileStateStore loads path. A missing file starts from defaults; an
// unreadable one is moved aside and logged, and defaults are used.
func NewFileStateStore(path string, log *applogger.Logger) (*FileStateStore, error) {
	if log == nil {
		log = applogger.Nop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("state dir: %w", err)
	}
	s := &FileStateStore{path: path, log: log}

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.state = models.NewState()
		log.Info("state.load fresh", applogger.String("path", path))
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read state: %w", err)
	}

	st, err := decodeState(b)
	if err != nil {
		aside := fmt.Sprintf("%s.corrupt-%d", path, time.Now().Unix())
		if rerr := os.Rename(path, aside); rerr != nil {
			log.Warn("state.load could not move corrupt file", applogger.Error(rerr))
		}
		log.Error("state.load corrupt, starting from defaults",
			applogger.String("path", path),
			applogger.String("moved_to", aside),
			applogger.Error(err),
		)
		st = models.NewState()
	}
	s.state = st
	return s, nil
}

func (f *FileStateStore) View(ctx context.Context, fn func(s *models.State) error) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return fn(f.state)
}

func (f *FileStateStore) Update(ctx context.Context, fn func(s *models.State) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	next, err := cloneState(f.state)
	if err != nil {
		return err
	}
	if err := fn(next); err != nil {
		return err
	}
	b, err := encodeState(next)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(f.path, b); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	f.state = next
	return nil
}

func (f *FileStateStore) Close() error { return nil }

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return err
	}
	if dir, err := os.Open(filepath.Dir(path)); err == nil {
		_ = dir.Sync()
		_ = dir.Close()
	}
	return nil
}
