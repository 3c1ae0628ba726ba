// Package redis provides a repository.Cache backed by Redis, shared by all
// server instances.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sinuca-magalhaes/caixa/internal/config"
	"github.com/sinuca-magalhaes/caixa/internal/repository"
)

// Cache implements repository.Cache using Redis.
type Cache struct {
	client goredis.UniversalClient
	logger zerolog.Logger
}

// NewCache connects to Redis and verifies the connection with PING.
func NewCache(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (*Cache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: cfg.DialTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", repository.ErrCacheUnavailable, err)
	}

	logger.Info().Str("addr", cfg.Addr()).Int("db", cfg.DB).Msg("connected to Redis")

	return NewFromClient(client, logger), nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client goredis.UniversalClient, logger zerolog.Logger) *Cache {
	return &Cache{client: client, logger: logger}
}

// Client returns the underlying client, shared with the Redis locker.
func (c *Cache) Client() goredis.UniversalClient {
	return c.client
}

// Close closes the underlying client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Ping checks the Redis connection.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Get retrieves a value by key.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, repository.ErrCacheMiss
		}
		return nil, c.unavailable("GET", err)
	}
	return val, nil
}

// Set stores a value with an optional TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return c.unavailable("SET", err)
	}
	return nil
}

// Delete removes a value by key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return c.unavailable("DEL", err)
	}
	return nil
}

// Expire sets or updates the TTL for a key. A ttl of 0 removes the expiry.
func (c *Cache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	var err error
	if ttl > 0 {
		err = c.client.Expire(ctx, key, ttl).Err()
	} else {
		err = c.client.Persist(ctx, key).Err()
	}
	if err != nil {
		return c.unavailable("EXPIRE", err)
	}
	return nil
}

// Increment atomically increments an integer value with INCRBY, which keeps
// the key's TTL.
func (c *Cache) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	n, err := c.client.IncrBy(ctx, key, delta).Result()
	if err != nil {
		return 0, c.unavailable("INCRBY", err)
	}
	return n, nil
}

func (c *Cache) unavailable(op string, err error) error {
	c.logger.Warn().Err(err).Str("op", op).Msg("redis command failed")
	return fmt.Errorf("%w: %s: %v", repository.ErrCacheUnavailable, op, err)
}

// Ensure Cache implements repository.Cache.
var _ repository.Cache = (*Cache)(nil)
