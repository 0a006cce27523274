// Package redis owns the shared Redis connection. Only the session store
// rides on it; everything else in the privilege core is either in Postgres
// or in memory.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"chamber/internal/platform/config"
)

// Client wraps go-redis so the health endpoint and shutdown path see one
// narrow surface.
type Client struct {
	*redis.Client
}

// New dials Redis using the configured URL. An empty URL means sessions stay
// in process memory, so a nil client with a nil error is a valid outcome.
// The ping runs under ctx; a Redis that cannot answer at startup is treated
// as fatal rather than discovered on the first session write.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	// Pool and timeout settings come from config, not the URL.
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health reports whether Redis is reachable. The health endpoint calls this.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.Client.Close()
}
