// Package redis implements the unordered (broadcast) exchange channel on
// Redis lists.
//
// Every value is appended to the list "<prefix>:<channel>:<index>", so each
// downstream consumer can read the complete output of every input slot. The
// broadcast key is a placeholder and is not stored.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/kbukum/dataflow/channel"
	"github.com/kbukum/dataflow/codec"
	"github.com/kbukum/dataflow/logger"
	"github.com/kbukum/dataflow/record"
)

// Lists is the part of the Redis client the channel uses.
type Lists interface {
	RPush(ctx context.Context, key string, values ...interface{}) error
	Expire(ctx context.Context, ttl time.Duration, keys ...string) error
}

// Option configures a Channel.
type Option func(*Channel)

// WithTTL expires the channel's lists when it is closed.
func WithTTL(ttl time.Duration) Option {
	return func(c *Channel) { c.ttl = ttl }
}

// WithLogger sets the channel logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Channel) {
		if l != nil {
			c.log = l
		}
	}
}

// Channel is a broadcast exchange channel backed by Redis lists.
type Channel struct {
	name   string
	prefix string
	lists  Lists
	codec  codec.Codec
	ttl    time.Duration
	log    *logger.Logger

	mu      sync.Mutex
	touched map[byte]struct{}
}

var _ channel.UnorderedChannel = (*Channel)(nil)

// New creates a broadcast channel named name writing lists under prefix.
func New(name, prefix string, lists Lists, c codec.Codec, opts ...Option) *Channel {
	if c == nil {
		c = codec.JSON()
	}
	ch := &Channel{
		name:    name,
		prefix:  prefix,
		lists:   lists,
		codec:   c,
		log:     logger.Nop(),
		touched: make(map[byte]struct{}),
	}
	for _, opt := range opts {
		opt(ch)
	}
	ch.log = ch.log.WithComponent("channel.redis").WithFields(map[string]interface{}{
		logger.FieldChannel: name,
	})
	return ch
}

// Name returns the channel name.
func (c *Channel) Name() string { return c.name }

// Unordered marks the channel as an unordered exchange.
func (c *Channel) Unordered() {}

// ListKey returns the list holding values stamped with index.
func (c *Channel) ListKey(index byte) string {
	key := c.name + ":" + strconv.Itoa(int(index))
	if c.prefix == "" {
		return key
	}
	return c.prefix + ":" + key
}

// Writer returns the channel's write sink.
func (c *Channel) Writer() (channel.Writer, error) {
	if c.lists == nil {
		return nil, fmt.Errorf("redis channel %s: no client", c.name)
	}
	return channel.WriterFunc(c.write), nil
}

func (c *Channel) write(ctx context.Context, key, value any) error {
	if _, ok := key.(*record.Key); !ok {
		return fmt.Errorf("redis channel %s: key must be *record.Key, got %T", c.name, key)
	}
	v, ok := value.(*record.IndexedTuple)
	if !ok || v == nil {
		return fmt.Errorf("redis channel %s: value must be *record.IndexedTuple, got %T", c.name, value)
	}
	data, err := c.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("redis channel %s: encode value: %w", c.name, err)
	}
	if err := c.lists.RPush(ctx, c.ListKey(v.Index), data); err != nil {
		return err
	}
	c.mu.Lock()
	c.touched[v.Index] = struct{}{}
	c.mu.Unlock()
	return nil
}

// Keys returns the lists written so far.
func (c *Channel) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.touched))
	for i := 0; i <= 255; i++ {
		if _, ok := c.touched[byte(i)]; ok {
			keys = append(keys, c.ListKey(byte(i)))
		}
	}
	return keys
}

// Close applies the configured TTL to every list the channel wrote.
func (c *Channel) Close() error {
	if c.ttl <= 0 || c.lists == nil {
		return nil
	}
	keys := c.Keys()
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.lists.Expire(ctx, c.ttl, keys...); err != nil {
		return fmt.Errorf("redis channel %s: expire lists: %w", c.name, err)
	}
	c.log.Debug("lists expire scheduled", map[string]interface{}{
		"lists": len(keys),
		"ttl":   c.ttl.String(),
	})
	return nil
}

// DecodeValue decodes one list element written by the channel.
func DecodeValue(c codec.Codec, data []byte) (*record.IndexedTuple, error) {
	return codec.DecodeCarrier(c, data)
}
