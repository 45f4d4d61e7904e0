// Package redis provides a Redis-backed cache implementation.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prn-tf/shopcore/internal/config"
	"github.com/prn-tf/shopcore/internal/repository"
)

// Cache implements repository.Cache using Redis.
type Cache struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewCache creates a Redis cache and verifies connectivity.
func NewCache(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: cfg.DialTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", repository.ErrCacheUnavailable, err)
	}

	logger.Info().Str("addr", cfg.Addr()).Int("db", cfg.DB).Msg("connected to Redis")

	return &Cache{
		client: client,
		logger: logger.With().Str("component", "redis-cache").Logger(),
	}, nil
}

// Close closes the underlying Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Get retrieves a value by key.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrCacheMiss
		}
		return nil, fmt.Errorf("%w: %v", repository.ErrCacheUnavailable, err)
	}
	return value, nil
}

// Set stores a value with an optional TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrCacheUnavailable, err)
	}
	return nil
}

// Delete removes a value by key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrCacheUnavailable, err)
	}
	return nil
}

// Exists checks if a key exists.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", repository.ErrCacheUnavailable, err)
	}
	return n > 0, nil
}

// Ensure Cache implements repository.Cache.
var _ repository.Cache = (*Cache)(nil)
