// Package memory provides in-process channels that record every write.
// Tests and dry runs use them in place of real backends.
package memory

import (
	"context"
	"sync"

	"github.com/kbukum/dataflow/channel"
)

// Write is one recorded write call.
type Write struct {
	Key   any
	Value any
}

type recorder struct {
	name     string
	mu       sync.Mutex
	writes   []Write
	writeErr error
	closed   int
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) Writer() (channel.Writer, error) {
	return channel.WriterFunc(func(_ context.Context, key, value any) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.writeErr != nil {
			return r.writeErr
		}
		r.writes = append(r.writes, Write{Key: key, Value: value})
		return nil
	}), nil
}

// Writes returns a copy of the recorded writes in order.
func (r *recorder) Writes() []Write {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Write(nil), r.writes...)
}

// FailWrites makes every subsequent write return err.
func (r *recorder) FailWrites(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writeErr = err
}

// Close records that the channel was closed.
func (r *recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
	return nil
}

// Closed returns how many times Close was called.
func (r *recorder) Closed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Direct is a recording direct channel.
type Direct struct {
	recorder
	commits   int
	commitErr error
}

// NewDirect creates a recording direct channel.
func NewDirect(name string) *Direct {
	return &Direct{recorder: recorder{name: name}}
}

// Commit records a commit, or returns the configured commit error.
func (d *Direct) Commit(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.commits++
	return d.commitErr
}

// FailCommit makes Commit return err.
func (d *Direct) FailCommit(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.commitErr = err
}

// Commits returns how many times Commit was called.
func (d *Direct) Commits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.commits
}

// Sorted is a recording sorted exchange.
type Sorted struct{ recorder }

// NewSorted creates a recording sorted exchange.
func NewSorted(name string) *Sorted { return &Sorted{recorder{name: name}} }

// Sorted marks the channel kind.
func (*Sorted) Sorted() {}

// Unordered is a recording unordered exchange.
type Unordered struct{ recorder }

// NewUnordered creates a recording unordered exchange.
func NewUnordered(name string) *Unordered { return &Unordered{recorder{name: name}} }

// Unordered marks the channel kind.
func (*Unordered) Unordered() {}

var (
	_ channel.DirectChannel    = (*Direct)(nil)
	_ channel.SortedChannel    = (*Sorted)(nil)
	_ channel.UnorderedChannel = (*Unordered)(nil)
)
