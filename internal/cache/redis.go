// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/qsolv/qsudoku/internal/log"
	"github.com/qsolv/qsudoku/internal/metrics"
	"github.com/qsolv/qsudoku/internal/solver"
)

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache is a Redis-backed Cache. Results are stored as JSON.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedis connects to Redis and verifies the connection with a ping.
func NewRedis(cfg RedisConfig) (*RedisCache, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger := log.WithComponent("cache")
	logger.Info().Str("addr", cfg.Addr).Int("db", cfg.DB).Dur("ttl", cfg.TTL).Msg("connected to redis cache")

	return &RedisCache{client: client, ttl: cfg.TTL, logger: logger}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (*solver.Result, bool) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("key", key).Msg("redis get failed")
		}
		metrics.RecordCacheRequest("miss")
		return nil, false
	}

	var res solver.Result
	if err := json.Unmarshal(val, &res); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cached result unreadable")
		metrics.RecordCacheRequest("miss")
		return nil, false
	}
	metrics.RecordCacheRequest("hit")
	return &res, true
}

func (c *RedisCache) Set(ctx context.Context, key string, res *solver.Result) {
	data, err := json.Marshal(res)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("marshal result failed")
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("redis set failed")
	}
}

func (c *RedisCache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("redis delete failed")
	}
}

// Ping reports whether Redis is reachable.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the connection pool.
func (c *RedisCache) Close() error { return c.client.Close() }

var _ Cache = (*RedisCache)(nil)
