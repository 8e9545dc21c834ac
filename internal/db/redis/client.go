// Package redis provides the rueidis-backed key-value client used by the
// rate limiter.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"
)

// Config holds connection parameters.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
}

// Client wraps a rueidis client with the few commands the limiter needs.
type Client struct {
	client rueidis.Client
}

// NewClient connects to Redis.
func NewClient(cfg Config) (*Client, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Client{client: client}, nil
}

// Ping checks connectivity.
func (c *Client) Ping(ctx context.Context) error {
	cmd := c.client.B().Ping().Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (c *Client) Close() {
	c.client.Close()
}

// IncrBy atomically increments a key and returns the new value.
func (c *Client) IncrBy(ctx context.Context, key string, val int64) (int64, error) {
	cmd := c.client.B().Incrby().Key(key).Increment(val).Build()
	n, err := c.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, fmt.Errorf("incrby %s: %w", key, err)
	}
	return n, nil
}

// ExpireNX sets a TTL only if the key has no expiry yet.
func (c *Client) ExpireNX(ctx context.Context, key string, ttl time.Duration) error {
	cmd := c.client.B().Expire().Key(key).Seconds(int64(ttl.Seconds())).Nx().Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("expire %s: %w", key, err)
	}
	return nil
}
