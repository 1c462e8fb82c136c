package kafka

import (
	"context"
	"fmt"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/dataflow/logger"
	"github.com/kbukum/dataflow/resilience"
)

// MessageWriter is the part of kafka-go's Writer the producer drives.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Stats() kafkago.WriterStats
	Close() error
}

// Producer writes messages to one topic, retrying transient failures.
// Messages with equal keys land on the same partition.
type Producer struct {
	writer MessageWriter
	topic  string
	retry  resilience.RetryConfig
	log    *logger.Logger
	mu     sync.RWMutex
	closed bool

	statsMu sync.Mutex
	stats   ProducerStats
}

// NewProducer validates cfg and creates a producer backed by a kafka-go
// Writer using hash partitioning.
func NewProducer(cfg Config, log *logger.Logger) (*Producer, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("kafka producer config: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithComponent("kafka.producer")

	transport, err := CreateTransport(&cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka producer transport: %w", err)
	}

	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Transport:    transport,
		Balancer:     &kafkago.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: ParseDuration(cfg.BatchTimeout),
		RequiredAcks: kafkago.RequiredAcks(cfg.RequiredAcks),
		Compression:  ResolveCompression(cfg.Compression),
		WriteTimeout: ParseDuration(cfg.WriteTimeout),
		// Retries are driven by the producer so they can be logged and
		// classified.
		MaxAttempts: 1,
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...interface{}) {
			log.Error("writer: "+fmt.Sprintf(msg, args...), map[string]interface{}{
				"topic": cfg.Topic,
			})
		}),
	}

	log.Info("Kafka producer initialized", map[string]interface{}{
		"brokers":     cfg.Brokers,
		"topic":       cfg.Topic,
		"compression": cfg.Compression,
		"batch_size":  cfg.BatchSize,
	})
	return newProducer(w, cfg.Topic, cfg.Retries, log), nil
}

// NewWithWriter creates a producer over an existing writer.
func NewWithWriter(w MessageWriter, topic string, retries int, log *logger.Logger) *Producer {
	if log == nil {
		log = logger.Nop()
	}
	if retries <= 0 {
		retries = 1
	}
	return newProducer(w, topic, retries, log.WithComponent("kafka.producer"))
}

func newProducer(w MessageWriter, topic string, retries int, log *logger.Logger) *Producer {
	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = retries
	retry.MaxBackoff = 5 * time.Second
	retry.RetryIf = IsRetryableError
	retry.OnRetry = func(attempt int, err error, backoff time.Duration) {
		log.Warn("Kafka write failed, retrying", map[string]interface{}{
			"topic":   topic,
			"attempt": attempt,
			"backoff": backoff.String(),
			"error":   err.Error(),
		})
	}
	return &Producer{writer: w, topic: topic, retry: retry, log: log, stats: ProducerStats{Topic: topic}}
}

// Topic returns the topic messages are written to.
func (p *Producer) Topic() string { return p.topic }

// WriteMessages sends msgs, retrying retryable failures with exponential
// backoff.
func (p *Producer) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return fmt.Errorf("producer is closed")
	}

	err := resilience.RetryFunc(ctx, p.retry, func(ctx context.Context, _ int) error {
		return p.writer.WriteMessages(ctx, msgs...)
	})
	if err != nil {
		return fmt.Errorf("kafka write to %s: %w", p.topic, err)
	}
	return nil
}

// Stats returns the writer statistics accumulated since the producer was
// created.
func (p *Producer) Stats() ProducerStats {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.stats.add(p.writer.Stats())
	return p.stats
}

// Close flushes pending messages and shuts down the writer.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.log.Info("Kafka producer closing", map[string]interface{}{"topic": p.topic})
	return p.writer.Close()
}
