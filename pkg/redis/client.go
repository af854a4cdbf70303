package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/perfdash/pkg/config"
)

const (
	// connectTimeout bounds dialing and the startup ping
	connectTimeout = 5 * time.Second
	// opTimeout bounds a single cache read or write
	opTimeout = 500 * time.Millisecond
)

// Cache status values reported on /health
const (
	StatusDisabled    = "disabled"
	StatusOK          = "ok"
	StatusUnreachable = "unreachable"
)

// ErrDisabled is returned by Ping on a disabled client
var ErrDisabled = errors.New("redis disabled")

// Client is the connection behind the provider cache.
// A nil or disabled client turns every cache call into a miss.
// ⭐ SSOT: the Redis connection is managed here only
type Client struct {
	rdb *redis.Client
}

// options maps the config onto go-redis options
func options(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  connectTimeout,
		ReadTimeout:  opTimeout,
		WriteTimeout: opTimeout,
		PoolSize:     4,
		MaxRetries:   1,
	}
}

// New connects when REDIS_ENABLED is set and returns a disabled client otherwise.
// An unreachable server is an error; callers decide whether to run without a cache.
func New(cfg *config.Config) (*Client, error) {
	if !cfg.Redis.Enabled {
		return &Client{}, nil
	}

	c := &Client{rdb: redis.NewClient(options(cfg.Redis))}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		_ = c.rdb.Close()
		return nil, fmt.Errorf("redis %s: %w", c.Addr(), err)
	}

	return c, nil
}

// NewFromClient wraps an existing connection. nil yields a disabled client.
func NewFromClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Enabled reports whether a connection is configured
func (c *Client) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Addr is the server address, empty when disabled
func (c *Client) Addr() string {
	if !c.Enabled() {
		return ""
	}
	return c.rdb.Options().Addr
}

// Ping checks the connection
func (c *Client) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return ErrDisabled
	}
	return c.rdb.Ping(ctx).Err()
}

// Status reports the cache state for the health endpoint
func (c *Client) Status(ctx context.Context) string {
	if !c.Enabled() {
		return StatusDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		return StatusUnreachable
	}
	return StatusOK
}

// Close closes the connection
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}

// Redis returns the underlying client
func (c *Client) Redis() *redis.Client {
	return c.rdb
}
