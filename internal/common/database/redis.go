// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"

	"medadmit-workers/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient backs the prediction cache. Reads use a short timeout because a
// slow cache only ever degrades to recomputing.
type RedisClient struct {
	Client *redis.Client
}

func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	opts := &redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdle,
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = config.GetDuration(cfg.DialTimeout)
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = config.GetDuration(cfg.ReadTimeout)
		opts.WriteTimeout = opts.ReadTimeout
	}

	return &RedisClient{Client: redis.NewClient(opts)}, nil
}

func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

func (c *RedisClient) GetClient() *redis.Client {
	return c.Client
}
