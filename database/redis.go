package database

import (
	"IDMS/config"
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

// NewRedisClient creates a Redis client with the provided configuration
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.PoolSize = cfg.PoolSize
	opt.MinIdleConns = cfg.MinIdleConns
	opt.DialTimeout = cfg.DialTimeout
	opt.ReadTimeout = cfg.ReadTimeout
	opt.MaxRetries = cfg.MaxRetries

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis server: %w", err)
	}

	log.Info().
		Int("pool_size", cfg.PoolSize).
		Int("min_idle_conns", cfg.MinIdleConns).
		Dur("dial_timeout", cfg.DialTimeout).
		Dur("read_timeout", cfg.ReadTimeout).
		Int("max_retries", cfg.MaxRetries).
		Msg("redis client initialized")
	return client, nil
}

// MonitorRedisPool logs the connection pool statistics every interval until ctx is done.
func MonitorRedisPool(ctx context.Context, client *redis.Client, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := client.PoolStats()
			log.Debug().
				Uint32("total", stats.TotalConns).
				Uint32("idle", stats.IdleConns).
				Uint32("stale", stats.StaleConns).
				Uint32("timeouts", stats.Timeouts).
				Msg("redis pool stats")
		}
	}
}
