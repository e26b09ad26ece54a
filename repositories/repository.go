package repositories

import (
	"IDMS/cache"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("record already exists")
	// ErrProtected is returned when a record is still referenced and cannot be removed.
	ErrProtected = errors.New("record is referenced by other records")
)

const readTimeout = 5 * time.Second

// translate maps gorm errors onto the repository sentinels.
func translate(err error, action string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", action, ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", action, err)
	}
}

// withLock runs fn while holding the named cache lock.
func withLock(ctx context.Context, c cache.Cache, key string, fn func() error) error {
	release, err := cache.AcquireLock(ctx, c, key, cache.DefaultLockOptions)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

// getCached decodes a cached JSON value into dst. It reports false on a miss or
// when the entry cannot be decoded.
func getCached(ctx context.Context, c cache.Cache, key string, dst interface{}) bool {
	cached, err := c.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to read from cache")
		return false
	}
	if cached == "" {
		return false
	}
	if err := json.Unmarshal([]byte(cached), dst); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		return false
	}
	return true
}

func setCached(ctx context.Context, c cache.Cache, key string, value interface{}, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to marshal cache entry")
		return
	}
	if err := c.Set(ctx, key, payload, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to write to cache")
	}
}

func invalidate(ctx context.Context, c cache.Cache, keys ...string) {
	if err := c.DeleteBatch(ctx, keys...); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("failed to invalidate cache")
	}
}

func diseaseCacheKey(id uint) string {
	return fmt.Sprintf("disease_cache:%d", id)
}

func treatmentPlanCacheKey(id uint) string {
	return fmt.Sprintf("treatment_plan_cache:%d", id)
}

func diagnosisPlanLockKey(diagnosisID uint) string {
	return fmt.Sprintf("treatment_plan_lock:diagnosis:%d", diagnosisID)
}
