/*
Copyright (C) 2026 SICQR

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package eventbus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/SICQR/hotmess/internal/events"
)

// RedisConfig contains Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	ChannelPrefix string

	// Circuit breaker
	MaxFailures int
}

// DefaultRedisConfig returns default Redis configuration.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:          "localhost:6379",
		ChannelPrefix: "hotmess:radio:",
		MaxFailures:   5,
	}
}

// RedisPublisher publishes events to Redis pub/sub channels
// <prefix><event type>. After MaxFailures consecutive errors it stops trying.
type RedisPublisher struct {
	client *redis.Client
	prefix string
	logger zerolog.Logger

	mu        sync.Mutex
	failCount int
	maxFails  int
	tripped   bool
}

// NewRedisPublisher connects to Redis.
func NewRedisPublisher(cfg RedisConfig, logger zerolog.Logger) (*RedisPublisher, error) {
	logger = logger.With().Str("component", "redis_events").Logger()
	if cfg.ChannelPrefix == "" {
		cfg.ChannelPrefix = DefaultRedisConfig().ChannelPrefix
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = DefaultRedisConfig().MaxFailures
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
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	logger.Info().Str("addr", cfg.Addr).Msg("Redis event publisher initialized")
	return &RedisPublisher{client: client, prefix: cfg.ChannelPrefix, logger: logger, maxFails: cfg.MaxFailures}, nil
}

// Name identifies the publisher in logs.
func (p *RedisPublisher) Name() string { return "redis" }

// Channel returns the channel an event type is published on.
func (p *RedisPublisher) Channel(eventType events.EventType) string {
	return p.prefix + string(eventType)
}

// Publish sends data on the event's channel.
func (p *RedisPublisher) Publish(ctx context.Context, eventType events.EventType, data []byte) error {
	p.mu.Lock()
	tripped := p.tripped
	p.mu.Unlock()
	if tripped {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := p.client.Publish(ctx, p.Channel(eventType), data).Err(); err != nil {
		p.handleFailure()
		return err
	}

	p.mu.Lock()
	p.failCount = 0
	p.mu.Unlock()
	return nil
}

func (p *RedisPublisher) handleFailure() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.failCount++
	if p.failCount >= p.maxFails && !p.tripped {
		p.tripped = true
		p.logger.Warn().Int("fail_count", p.failCount).Msg("Redis failure threshold reached, no longer publishing events")
	}
}

// Close closes the Redis client.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
