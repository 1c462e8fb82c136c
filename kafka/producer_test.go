package kafka

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	mu      sync.Mutex
	calls   int
	fail    []error
	written []kafkago.Message
	closed  int

	// counts already reported; Stats returns deltas like kafka-go
	seenCalls, seenMsgs int
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.fail) > 0 {
		err := f.fail[0]
		f.fail = f.fail[1:]
		if err != nil {
			return err
		}
	}
	f.written = append(f.written, msgs...)
	return nil
}

func (f *fakeWriter) Stats() kafkago.WriterStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := kafkago.WriterStats{
		Writes:   int64(f.calls - f.seenCalls),
		Messages: int64(len(f.written) - f.seenMsgs),
		Topic:    "shuffle",
	}
	f.seenCalls, f.seenMsgs = f.calls, len(f.written)
	return s
}

func (f *fakeWriter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func newTestProducer(w *fakeWriter, retries int) *Producer {
	p := NewWithWriter(w, "shuffle", retries, nil)
	p.retry.InitialBackoff = time.Millisecond
	p.retry.Jitter = 0
	return p
}

func TestProducer_WriteMessages(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w, 3)

	msg := kafkago.Message{Key: []byte("k"), Value: []byte("v")}
	if err := p.WriteMessages(context.Background(), msg); err != nil {
		t.Fatalf("WriteMessages() error: %v", err)
	}
	if w.calls != 1 || len(w.written) != 1 {
		t.Errorf("calls = %d, written = %d", w.calls, len(w.written))
	}
	if p.Topic() != "shuffle" {
		t.Errorf("Topic() = %q", p.Topic())
	}
}

func TestProducer_RetriesTransientFailures(t *testing.T) {
	w := &fakeWriter{fail: []error{kafkago.LeaderNotAvailable, errors.New("connection reset by peer")}}
	p := newTestProducer(w, 3)

	if err := p.WriteMessages(context.Background(), kafkago.Message{Value: []byte("v")}); err != nil {
		t.Fatalf("WriteMessages() error: %v", err)
	}
	if w.calls != 3 {
		t.Errorf("calls = %d, want 3", w.calls)
	}
}

func TestProducer_GivesUpAfterRetries(t *testing.T) {
	w := &fakeWriter{fail: []error{kafkago.LeaderNotAvailable, kafkago.LeaderNotAvailable}}
	p := newTestProducer(w, 2)

	err := p.WriteMessages(context.Background(), kafkago.Message{Value: []byte("v")})
	if !errors.Is(err, kafkago.LeaderNotAvailable) {
		t.Fatalf("WriteMessages() = %v, want LeaderNotAvailable", err)
	}
	if !strings.Contains(err.Error(), "shuffle") {
		t.Errorf("error %q should name the topic", err)
	}
	if w.calls != 2 {
		t.Errorf("calls = %d, want 2", w.calls)
	}
}

func TestProducer_NoRetryOnPermanentFailure(t *testing.T) {
	w := &fakeWriter{fail: []error{kafkago.MessageSizeTooLarge}}
	p := newTestProducer(w, 5)

	if err := p.WriteMessages(context.Background(), kafkago.Message{Value: []byte("v")}); err == nil {
		t.Fatal("expected error")
	}
	if w.calls != 1 {
		t.Errorf("calls = %d, want 1", w.calls)
	}
}

func TestProducer_CanceledDuringBackoff(t *testing.T) {
	w := &fakeWriter{fail: []error{kafkago.LeaderNotAvailable}}
	p := NewWithWriter(w, "shuffle", 3, nil)
	p.retry.InitialBackoff = time.Hour
	p.retry.MaxBackoff = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	if err := p.WriteMessages(ctx, kafkago.Message{Value: []byte("v")}); !errors.Is(err, context.Canceled) {
		t.Fatalf("WriteMessages() = %v, want context.Canceled", err)
	}
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w, 1)

	if err := p.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}
	if w.closed != 1 {
		t.Errorf("writer closed %d times, want 1", w.closed)
	}
	if err := p.WriteMessages(context.Background(), kafkago.Message{}); err == nil {
		t.Error("expected error writing to closed producer")
	}
}

func TestProducer_Stats(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w, 1)
	_ = p.WriteMessages(context.Background(), kafkago.Message{}, kafkago.Message{})

	if s := p.Stats(); s.Writes != 1 || s.Messages != 2 || s.Topic != "shuffle" {
		t.Errorf("Stats() = %+v", s)
	}

	_ = p.WriteMessages(context.Background(), kafkago.Message{})
	if s := p.Stats(); s.Writes != 2 || s.Messages != 3 {
		t.Errorf("Stats() after second write = %+v, want cumulative totals", s)
	}
}

func TestNewProducer_InvalidConfig(t *testing.T) {
	if _, err := NewProducer(Config{}, nil); err == nil {
		t.Fatal("expected error without topic")
	}
}

func TestNewProducer(t *testing.T) {
	p, err := NewProducer(Config{Topic: "shuffle"}, nil)
	if err != nil {
		t.Fatalf("NewProducer() error: %v", err)
	}
	defer p.Close()

	w, ok := p.writer.(*kafkago.Writer)
	if !ok {
		t.Fatalf("writer = %T, want *kafka.Writer", p.writer)
	}
	if _, ok := w.Balancer.(*kafkago.Hash); !ok {
		t.Errorf("Balancer = %T, want *kafka.Hash", w.Balancer)
	}
	if w.Topic != "shuffle" || w.RequiredAcks != kafkago.RequireAll {
		t.Errorf("writer topic/acks = %q/%v", w.Topic, w.RequiredAcks)
	}
}
