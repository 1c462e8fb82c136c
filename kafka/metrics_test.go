package kafka

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	kafkago "github.com/segmentio/kafka-go"
)

func TestProducerStats_Accumulates(t *testing.T) {
	var s ProducerStats
	s.add(kafkago.WriterStats{
		Writes: 2, Messages: 10, Bytes: 512, Retries: 1, Topic: "shuffle",
		WriteTime: kafkago.DurationStats{Max: 40 * time.Millisecond},
	})
	s.add(kafkago.WriterStats{
		Writes: 1, Messages: 5, Bytes: 256, Errors: 1,
		WriteTime: kafkago.DurationStats{Max: 15 * time.Millisecond},
	})

	want := ProducerStats{
		Topic: "shuffle", Writes: 3, Messages: 15, Bytes: 768,
		Errors: 1, Retries: 1, MaxWrite: 40 * time.Millisecond,
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}

	f := s.Fields()
	if f["messages"] != int64(15) || f["max_write_ms"] != int64(40) {
		t.Errorf("Fields() = %v", f)
	}
}
