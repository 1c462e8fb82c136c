package kafka

import (
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// ProducerStats totals writer statistics over a producer's life. kafka-go
// resets its counters on every Stats call, so each snapshot is added in.
type ProducerStats struct {
	Topic    string
	Writes   int64
	Messages int64
	Bytes    int64
	Errors   int64
	Retries  int64
	// MaxWrite is the slowest single write seen.
	MaxWrite time.Duration
}

func (s *ProducerStats) add(ws kafkago.WriterStats) {
	if ws.Topic != "" {
		s.Topic = ws.Topic
	}
	s.Writes += ws.Writes
	s.Messages += ws.Messages
	s.Bytes += ws.Bytes
	s.Errors += ws.Errors
	s.Retries += ws.Retries
	s.MaxWrite = max(s.MaxWrite, ws.WriteTime.Max)
}

// Fields renders the totals as log fields.
func (s ProducerStats) Fields() map[string]interface{} {
	return map[string]interface{}{
		"topic":        s.Topic,
		"writes":       s.Writes,
		"messages":     s.Messages,
		"bytes":        s.Bytes,
		"errors":       s.Errors,
		"retries":      s.Retries,
		"max_write_ms": s.MaxWrite.Milliseconds(),
	}
}
