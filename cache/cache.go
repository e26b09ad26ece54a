package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrLockNotAcquired is returned when a lock is still held after every retry.
var ErrLockNotAcquired = errors.New("could not acquire lock")

// Cache is the key/value store used for read-through caching and short lived locks.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteAll(ctx context.Context, pattern string) error
	DeleteBatch(ctx context.Context, keys ...string) error
	// Lock sets key to value only if it is absent. It reports whether the lock was taken.
	Lock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// Unlock removes key only while it still holds value.
	Unlock(ctx context.Context, key, value string) error
}

// LockOptions controls how AcquireLock retries.
type LockOptions struct {
	Retries int
	Delay   time.Duration
	TTL     time.Duration
}

// DefaultLockOptions mirrors the retry policy used by every repository write path.
var DefaultLockOptions = LockOptions{Retries: 3, Delay: 2 * time.Second, TTL: 10 * time.Second}

// AcquireLock takes the named lock, retrying while another holder owns it.
// The returned func releases the lock and is safe to defer.
func AcquireLock(ctx context.Context, c Cache, key string, opts LockOptions) (func(), error) {
	value := uuid.New().String()

	for attempt := 0; attempt < opts.Retries; attempt++ {
		acquired, err := c.Lock(ctx, key, value, opts.TTL)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if acquired {
			return func() {
				if err := c.Unlock(context.Background(), key, value); err != nil {
					log.Warn().Err(err).Str("lock", key).Msg("failed to release lock")
				}
			}, nil
		}

		if attempt < opts.Retries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(opts.Delay):
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrLockNotAcquired, key)
}
