// Package table implements a direct channel that inserts records into the
// records table inside one database transaction. Commit commits the
// transaction, so a task's rows become visible all at once or not at all.
package table

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/kbukum/dataflow/channel"
	"github.com/kbukum/dataflow/codec"
	"github.com/kbukum/dataflow/database"
	"github.com/kbukum/dataflow/logger"
	"github.com/kbukum/dataflow/record"
)

// Option configures a Channel.
type Option func(*Channel)

// WithAttempt labels rows with the task and attempt that wrote them.
func WithAttempt(taskID, attemptID string) Option {
	return func(c *Channel) {
		c.taskID = taskID
		c.attemptID = attemptID
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

// Channel is a transactional direct channel.
type Channel struct {
	name      string
	db        *gorm.DB
	codec     codec.Codec
	taskID    string
	attemptID string
	log       *logger.Logger

	mu   sync.Mutex
	tx   *gorm.DB
	seq  int64
	done bool
}

var _ channel.DirectChannel = (*Channel)(nil)

// New creates a table channel named name on db.
func New(name string, db *gorm.DB, c codec.Codec, opts ...Option) *Channel {
	if c == nil {
		c = codec.JSON()
	}
	ch := &Channel{name: name, db: db, codec: c, log: logger.Nop()}
	for _, opt := range opts {
		opt(ch)
	}
	ch.log = ch.log.WithComponent("channel.table").WithFields(map[string]interface{}{
		logger.FieldChannel: name,
	})
	return ch
}

// Name returns the channel name.
func (c *Channel) Name() string { return c.name }

// Writer begins the channel's transaction and returns its write sink.
func (c *Channel) Writer() (channel.Writer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil, fmt.Errorf("table channel %s: no database", c.name)
	}
	if c.done {
		return nil, fmt.Errorf("table channel %s: already finished", c.name)
	}
	if c.tx == nil {
		tx := c.db.Begin()
		if tx.Error != nil {
			return nil, fmt.Errorf("table channel %s: begin: %w", c.name, tx.Error)
		}
		c.tx = tx
	}
	return channel.WriterFunc(c.write), nil
}

func (c *Channel) write(ctx context.Context, key, value any) error {
	if key != nil {
		return fmt.Errorf("table channel %s: unexpected key %T", c.name, key)
	}
	t, ok := value.(record.Tuple)
	if !ok {
		return fmt.Errorf("table channel %s: value must be record.Tuple, got %T", c.name, value)
	}
	payload, err := c.codec.Marshal(t)
	if err != nil {
		return fmt.Errorf("table channel %s: encode: %w", c.name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tx == nil || c.done {
		return fmt.Errorf("table channel %s: no open transaction", c.name)
	}
	c.seq++
	row := database.Record{
		Channel:   c.name,
		TaskID:    c.taskID,
		AttemptID: c.attemptID,
		Seq:       c.seq,
		Codec:     c.codec.Name(),
		Payload:   payload,
	}
	if err := c.tx.WithContext(ctx).Create(&row).Error; err != nil {
		c.seq--
		return err
	}
	return nil
}

// Commit commits the transaction. A channel that never handed out a writer
// has nothing to commit.
func (c *Channel) Commit(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		return fmt.Errorf("table channel %s: already finished", c.name)
	}
	if c.tx == nil {
		c.done = true
		return nil
	}
	if err := c.tx.Commit().Error; err != nil {
		return err
	}
	c.done = true
	c.log.Debug("transaction committed", map[string]interface{}{logger.FieldRecords: c.seq})
	return nil
}

// Close rolls back the transaction unless it was committed.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done || c.tx == nil {
		c.done = true
		return nil
	}
	c.done = true
	if err := c.tx.Rollback().Error; err != nil {
		return fmt.Errorf("table channel %s: rollback: %w", c.name, err)
	}
	c.log.Debug("transaction rolled back", map[string]interface{}{logger.FieldRecords: c.seq})
	return nil
}

// Rows returns the committed rows of attemptID in write order.
func Rows(ctx context.Context, db *gorm.DB, channelName, attemptID string) ([]database.Record, error) {
	var rows []database.Record
	err := db.WithContext(ctx).
		Where("channel = ? AND attempt_id = ?", channelName, attemptID).
		Order("seq").
		Find(&rows).Error
	return rows, err
}
