package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/dataflow/logger"
)

// Client wraps a go-redis client with dataflow logging.
type Client struct {
	rdb *goredis.Client
	log *logger.Logger
	cfg Config

	closeOnce sync.Once
	closeErr  error
}

// New creates a Redis client. It does not connect until first use.
func New(cfg Config, log *logger.Logger) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("redis config: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	opts, err := cfg.options()
	if err != nil {
		return nil, err
	}

	log.Info("Redis client created", map[string]interface{}{
		"addr":      cfg.Addr,
		"db":        cfg.DB,
		"pool_size": cfg.PoolSize,
		"tls":       opts.TLSConfig != nil,
	})
	return &Client{rdb: goredis.NewClient(opts), log: log, cfg: cfg}, nil
}

func (c *Config) options() (*goredis.Options, error) {
	tlsCfg, err := c.TLS.ForAddr(c.Addr)
	if err != nil {
		return nil, fmt.Errorf("redis tls: %w", err)
	}
	return &goredis.Options{
		Addr:            c.Addr,
		Password:        c.Password,
		DB:              c.DB,
		PoolSize:        c.PoolSize,
		MaxRetries:      c.MaxRetries,
		MinRetryBackoff: duration(c.MinRetryBackoff),
		MaxRetryBackoff: duration(c.MaxRetryBackoff),
		DialTimeout:     duration(c.DialTimeout),
		ReadTimeout:     duration(c.ReadTimeout),
		WriteTimeout:    duration(c.WriteTimeout),
		TLSConfig:       tlsCfg,
	}, nil
}

// Config returns the client's effective configuration.
func (c *Client) Config() Config { return c.cfg }

// Ping verifies the Redis connection is alive.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", c.cfg.Addr, err)
	}
	return nil
}

// RPush appends values to the list at key.
func (c *Client) RPush(ctx context.Context, key string, values ...interface{}) error {
	return c.rdb.RPush(ctx, key, values...).Err()
}

// LRange returns the elements of the list at key between start and stop.
func (c *Client) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return c.rdb.LRange(ctx, key, start, stop).Result()
}

// Expire sets a timeout on each key in one round trip.
func (c *Client) Expire(ctx context.Context, ttl time.Duration, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := c.rdb.Pipelined(ctx, func(p goredis.Pipeliner) error {
		for _, k := range keys {
			p.Expire(ctx, k, ttl)
		}
		return nil
	})
	return err
}

// Del deletes one or more keys.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

// Close closes the Redis connection. Safe to call multiple times.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.closeOnce.Do(func() {
		c.log.Debug("Closing Redis connection")
		c.closeErr = c.rdb.Close()
	})
	return c.closeErr
}
