// Package file implements a direct channel that stages encoded records in a
// local temp file and publishes them to object storage on commit. Readers of
// the store see either the complete part or nothing.
package file

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/dataflow/channel"
	"github.com/kbukum/dataflow/codec"
	"github.com/kbukum/dataflow/logger"
	"github.com/kbukum/dataflow/record"
	"github.com/kbukum/dataflow/storage"
)

// Option configures a Channel.
type Option func(*Channel)

// WithTempDir stages records under dir instead of the system temp dir.
func WithTempDir(dir string) Option {
	return func(c *Channel) { c.tempDir = dir }
}

// WithPartName names the published object. The default is a random UUID.
func WithPartName(name string) Option {
	return func(c *Channel) {
		if name != "" {
			c.part = name
		}
	}
}

// WithLogger sets the channel logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Channel) {
		if l != nil {
			c.log = l
		}
	}
}

// Channel is a direct channel publishing one object per task attempt.
type Channel struct {
	name    string
	prefix  string
	store   storage.Storage
	codec   codec.Codec
	tempDir string
	part    string
	log     *logger.Logger

	mu        sync.Mutex
	tmp       *os.File
	buf       *bufio.Writer
	enc       codec.Encoder
	records   int64
	published string
	closed    bool
}

var _ channel.DirectChannel = (*Channel)(nil)

// New creates a file channel named name publishing under prefix in store.
func New(name string, store storage.Storage, prefix string, c codec.Codec, opts ...Option) *Channel {
	if c == nil {
		c = codec.JSON()
	}
	ch := &Channel{
		name:   name,
		prefix: prefix,
		store:  store,
		codec:  c,
		part:   uuid.NewString(),
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(ch)
	}
	ch.log = ch.log.WithComponent("channel.file").WithFields(map[string]interface{}{
		logger.FieldChannel: name,
	})
	return ch
}

// Name returns the channel name.
func (c *Channel) Name() string { return c.name }

// ObjectPath returns the path the channel publishes to.
func (c *Channel) ObjectPath() string {
	return path.Join(c.prefix, c.name, "part-"+c.part+extension(c.codec))
}

func extension(c codec.Codec) string {
	switch c.Name() {
	case codec.NameCBOR:
		return ".cbor"
	default:
		return ".ndjson"
	}
}

// Writer opens the staging file and returns the channel's write sink.
func (c *Channel) Writer() (channel.Writer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		return nil, fmt.Errorf("file channel %s: no storage", c.name)
	}
	if c.closed || c.published != "" {
		return nil, fmt.Errorf("file channel %s: already finished", c.name)
	}
	if c.tmp == nil {
		f, err := os.CreateTemp(c.tempDir, "dataflow-"+c.name+"-*")
		if err != nil {
			return nil, fmt.Errorf("file channel %s: create staging file: %w", c.name, err)
		}
		c.tmp = f
		c.buf = bufio.NewWriter(f)
		c.enc = c.codec.NewEncoder(c.buf)
	}
	return channel.WriterFunc(c.write), nil
}

func (c *Channel) write(_ context.Context, key, value any) error {
	if key != nil {
		return fmt.Errorf("file channel %s: unexpected key %T", c.name, key)
	}
	t, ok := value.(record.Tuple)
	if !ok {
		return fmt.Errorf("file channel %s: value must be record.Tuple, got %T", c.name, value)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.enc == nil || c.closed || c.published != "" {
		return fmt.Errorf("file channel %s: not writable", c.name)
	}
	if err := c.enc.Encode(t); err != nil {
		return fmt.Errorf("file channel %s: encode: %w", c.name, err)
	}
	c.records++
	return nil
}

// Commit uploads the staged records. A channel that never handed out a
// writer publishes an empty part.
func (c *Channel) Commit(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.published != "" {
		return fmt.Errorf("file channel %s: already finished", c.name)
	}

	var body io.Reader = bytes.NewReader(nil)
	if c.tmp != nil {
		if err := c.buf.Flush(); err != nil {
			return fmt.Errorf("file channel %s: flush: %w", c.name, err)
		}
		if _, err := c.tmp.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("file channel %s: rewind: %w", c.name, err)
		}
		body = c.tmp
	}

	dest := c.ObjectPath()
	if err := c.store.Upload(ctx, dest, body); err != nil {
		return err
	}
	c.published = dest
	c.log.Info("part published", map[string]interface{}{
		"path":              dest,
		logger.FieldRecords: c.records,
	})
	return nil
}

// Published returns the object path after a successful commit.
func (c *Channel) Published() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.published, c.published != ""
}

// Close removes the staging file. Uncommitted records are discarded.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.tmp == nil {
		return nil
	}
	name := c.tmp.Name()
	closeErr := c.tmp.Close()
	c.tmp, c.buf, c.enc = nil, nil, nil
	if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("file channel %s: remove staging file: %w", c.name, err)
	}
	return closeErr
}
