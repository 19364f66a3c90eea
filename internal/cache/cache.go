/*
Copyright (C) 2026 SICQR

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package cache provides a short-lived Redis cache for now/next responses.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/SICQR/hotmess/internal/telemetry"
)

// DefaultNowNextTTL bounds how long a computed now/next response is served.
const DefaultNowNextTTL = time.Minute

// KeyNowNext is the key prefix for now/next entries: + source + ":" + YYYYMMDDHHMM.
const KeyNowNext = "hotmess:cache:nownext:"

// Config contains cache configuration.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	NowNextTTL time.Duration

	// DisableOnError turns the cache off after the first Redis failure.
	DisableOnError bool
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{
		RedisAddr:      "localhost:6379",
		NowNextTTL:     DefaultNowNextTTL,
		DisableOnError: true,
	}
}

// Cache provides Redis-backed caching with graceful fallback.
type Cache struct {
	client *redis.Client
	logger zerolog.Logger
	config Config

	mu       sync.RWMutex
	disabled bool
}

// New creates a new cache instance. An unreachable Redis yields a disabled
// cache rather than an error.
func New(cfg Config, logger zerolog.Logger) (*Cache, error) {
	if cfg.NowNextTTL <= 0 {
		cfg.NowNextTTL = DefaultNowNextTTL
	}
	logger = logger.With().Str("component", "cache").Logger()

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("Redis cache unavailable, running without caching")
		_ = client.Close()
		return &Cache{logger: logger, config: cfg, disabled: true}, nil
	}

	logger.Info().Str("addr", cfg.RedisAddr).Msg("Redis cache initialized")
	return &Cache{client: client, logger: logger, config: cfg}, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// IsAvailable returns true if the cache is operational.
func (c *Cache) IsAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.disabled && c.client != nil
}

func (c *Cache) handleError(err error, operation string) {
	if err == nil || errors.Is(err, redis.Nil) {
		return
	}

	c.logger.Debug().Err(err).Str("operation", operation).Msg("cache operation failed")

	if c.config.DisableOnError {
		c.mu.Lock()
		c.disabled = true
		c.mu.Unlock()
		c.logger.Warn().Msg("disabling cache due to Redis error")
	}
}

func (c *Cache) get(ctx context.Context, key string, dest any) (bool, error) {
	if !c.IsAvailable() {
		return false, nil
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		c.handleError(err, "get")
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("failed to unmarshal cached value")
		return false, nil
	}
	return true, nil
}

func (c *Cache) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !c.IsAvailable() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}

	// SetNX keeps the first response written for a minute; later writers
	// never replace it.
	if err := c.client.SetNX(ctx, key, data, ttl).Err(); err != nil {
		c.handleError(err, "set")
		return err
	}
	return nil
}

func (c *Cache) deletePattern(ctx context.Context, pattern string) error {
	if !c.IsAvailable() {
		return nil
	}

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			c.handleError(err, "scan")
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.handleError(err, "delete_batch")
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// NowNextKey returns the cache key for source at the minute containing at.
func NowNextKey(source string, at time.Time) string {
	return KeyNowNext + source + ":" + at.Format("200601021504")
}

// GetNowNext loads the cached response for source at at's minute into dest.
func (c *Cache) GetNowNext(ctx context.Context, source string, at time.Time, dest any) bool {
	found, err := c.get(ctx, NowNextKey(source, at), dest)
	if err != nil || !found {
		telemetry.CacheRequestsTotal.WithLabelValues("miss").Inc()
		return false
	}
	telemetry.CacheRequestsTotal.WithLabelValues("hit").Inc()
	return true
}

// SetNowNext stores the response for source at at's minute.
func (c *Cache) SetNowNext(ctx context.Context, source string, at time.Time, value any) error {
	return c.set(ctx, NowNextKey(source, at), value, c.config.NowNextTTL)
}

// InvalidateNowNext drops every cached now/next response, e.g. after the
// lineup was edited.
func (c *Cache) InvalidateNowNext(ctx context.Context) error {
	c.logger.Debug().Msg("invalidating now/next cache")
	return c.deletePattern(ctx, KeyNowNext+"*")
}
