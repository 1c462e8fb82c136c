package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/kbukum/dataflow/record"
)

// Handle is the terminal operator of a compiled plan. Next must be safe to
// call repeatedly until it returns EndOfStream or Failure.
type Handle interface {
	Next(ctx context.Context) Result
}

// KeyTyper is implemented by terminal operators that declare the type of the
// comparison key in the records they emit.
type KeyTyper interface {
	KeyType() record.DataType
}

// Iterator provides pull-based sequential access to records.
type Iterator interface {
	// Next returns the next record. Returns (nil, false, nil) when exhausted.
	Next(ctx context.Context) (record.Tuple, bool, error)
	// Close releases any resources held by the iterator.
	Close() error
}

// Plan is a compiled operator chain. Only plans with exactly one leaf can be
// executed; multiple outputs per task are not supported.
type Plan struct {
	Leaves []Handle
}

// Leaf returns the single terminal operator of the plan.
func (p Plan) Leaf() (Handle, error) {
	switch len(p.Leaves) {
	case 0:
		return nil, fmt.Errorf("plan has no leaves")
	case 1:
		return p.Leaves[0], nil
	default:
		return nil, fmt.Errorf("plan has %d leaves; a task drives exactly one output", len(p.Leaves))
	}
}

// Close closes h if it holds resources.
func Close(h Handle) error {
	if c, ok := h.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// --- Sources ---

// FromSlice creates a handle emitting records in order, then EndOfStream.
func FromSlice(records []record.Tuple) Handle {
	return &sliceHandle{records: records}
}

// FromIterator adapts an Iterator. Iterator errors become Failure results.
func FromIterator(it Iterator) Handle {
	return &iterHandle{it: it}
}

// FromResults creates a handle replaying results verbatim. After the last
// result it reports EndOfStream.
func FromResults(results ...Result) Handle {
	return &scriptHandle{results: results}
}

type sliceHandle struct {
	records []record.Tuple
	index   int
}

func (h *sliceHandle) Next(_ context.Context) Result {
	if h.index >= len(h.records) {
		return EndOfStream{}
	}
	r := h.records[h.index]
	h.index++
	return Emit{Record: r}
}

type iterHandle struct {
	it   Iterator
	done bool
}

func (h *iterHandle) Next(ctx context.Context) Result {
	if h.done {
		return EndOfStream{}
	}
	rec, ok, err := h.it.Next(ctx)
	if err != nil {
		return Failure{Payload: err}
	}
	if !ok {
		h.done = true
		return EndOfStream{}
	}
	return Emit{Record: rec}
}

func (h *iterHandle) Close() error { return h.it.Close() }

type scriptHandle struct {
	results []Result
	index   int
}

func (h *scriptHandle) Next(_ context.Context) Result {
	if h.index >= len(h.results) {
		return EndOfStream{}
	}
	r := h.results[h.index]
	h.index++
	return r
}
