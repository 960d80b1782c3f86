package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Client wraps the shared Redis connection used by the prescription stream.
type Client struct {
	*redis.Client
	logger zerolog.Logger
}

// NewClient creates a client from a URL such as redis://:password@localhost:6379/0.
func NewClient(redisURL string, logger zerolog.Logger) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	return &Client{
		Client: redis.NewClient(opts),
		logger: logger.With().Str("component", "redis").Logger(),
	}, nil
}

// Ping verifies the connection. Call it on startup to fail fast.
func (c *Client) Ping(ctx context.Context) error {
	start := time.Now()
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	c.logger.Info().
		Str("addr", c.Options().Addr).
		Int("db", c.Options().DB).
		Dur("latency", time.Since(start)).
		Msg("connected")
	return nil
}

func (c *Client) Close() error {
	if err := c.Client.Close(); err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	c.logger.Info().Msg("connection closed")
	return nil
}
