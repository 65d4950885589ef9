package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheMiss  = errors.New("cache: key not found")
	ErrLockHeld   = errors.New("cache: lock held by another owner")
	ErrLockExpiry = errors.New("cache: lock expired before release")
)

// Service is the key/value surface the state store needs.
type Service interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	SetBytes(ctx context.Context, key string, value []byte, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// TryLock acquires key for ttl and returns a token required to release it.
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
	Close() error
}

// Lock retries TryLock every interval until acquired or ctx is done.
func Lock(ctx context.Context, c Service, key string, ttl, interval time.Duration) (string, error) {
	for {
		token, ok, err := c.TryLock(ctx, key, ttl)
		if err != nil {
			return "", err
		}
		if ok {
			return token, nil
		}
		select {
		case <-ctx.Done():
			return "", errors.Join(ErrLockHeld, ctx.Err())
		case <-time.After(interval):
		}
	}
}
