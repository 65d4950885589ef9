package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"Sentinel/internal/domain/models"
	pkgcache "Sentinel/pkg/cache"
	applogger "Sentinel/pkg/logger"
)

// RedisStateStore keeps the document under one key. SET replaces it whole;
// a SETNX lock serializes writers across processes.
type RedisStateStore struct {
	kv      pkgcache.Service
	key     string
	lockKey string
	lockTTL time.Duration
	log     *applogger.Logger

	mu sync.Mutex
}

func NewRedisStateStore(kv pkgcache.Service, key string, lockTTL time.Duration, log *applogger.Logger) *RedisStateStore {
	if log == nil {
		log = applogger.Nop()
	}
	if lockTTL <= 0 {
		lockTTL = 5 * time.Second
	}
	return &RedisStateStore{
		kv:      kv,
		key:     key,
		lockKey: key + ":lock",
		lockTTL: lockTTL,
		log:     log,
	}
}

func (r *RedisStateStore) View(ctx context.Context, fn func(s *models.State) error) error {
	st, err := r.load(ctx)
	if err != nil {
		return err
	}
	return fn(st)
}

func (r *RedisStateStore) Update(ctx context.Context, fn func(s *models.State) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	lctx, cancel := context.WithTimeout(ctx, r.lockTTL)
	token, err := pkgcache.Lock(lctx, r.kv, r.lockKey, r.lockTTL, 50*time.Millisecond)
	cancel()
	if err != nil {
		return fmt.Errorf("state lock: %w", err)
	}
	defer func() {
		if err := r.kv.Unlock(context.WithoutCancel(ctx), r.lockKey, token); err != nil {
			r.log.Warn("state.unlock failed", applogger.String("key", r.lockKey), applogger.Error(err))
		}
	}()

	st, err := r.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(st); err != nil {
		return err
	}
	b, err := encodeState(st)
	if err != nil {
		return err
	}
	if err := r.kv.SetBytes(ctx, r.key, b, 0); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}

func (r *RedisStateStore) Close() error {
	return r.kv.Close()
}

func (r *RedisStateStore) load(ctx context.Context) (*models.State, error) {
	b, err := r.kv.GetBytes(ctx, r.key)
	if errors.Is(err, pkgcache.ErrCacheMiss) {
		return models.NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	st, err := decodeState(b)
	if err != nil {
		r.log.Error("state.load corrupt, using defaults", applogger.String("key", r.key), applogger.Error(err))
		return models.NewState(), nil
	}
	return st, nil
}
