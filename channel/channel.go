// Package channel defines the destination channels a task writes to.
//
// A task's channels are attached by the surrounding runtime before execution
// starts and fall into three kinds: direct sinks that must be committed once
// all records are written, sorted exchanges keyed for downstream grouping,
// and unordered exchanges replicated to every downstream consumer.
package channel

import (
	"context"
)

// Kind is the topology a channel belongs to.
type Kind int

const (
	KindDirect Kind = iota + 1
	KindSorted
	KindUnordered
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindDirect:
		return "direct"
	case KindSorted:
		return "sorted"
	case KindUnordered:
		return "unordered"
	default:
		return "unknown"
	}
}

// Writer is a channel's write sink. key is nil for direct channels; for
// exchanges it is a *record.Key and value a *record.IndexedTuple.
type Writer interface {
	Write(ctx context.Context, key, value any) error
}

// Channel is a named write target.
type Channel interface {
	Name() string
	// Writer returns the channel's write sink. It is called once per task.
	Writer() (Writer, error)
}

// DirectChannel is a plain sink whose output becomes visible on Commit.
type DirectChannel interface {
	Channel
	Commit(ctx context.Context) error
}

// SortedChannel is an exchange whose records are sorted by key downstream.
type SortedChannel interface {
	Channel
	Sorted()
}

// UnorderedChannel is an exchange replicated unordered to all consumers.
type UnorderedChannel interface {
	Channel
	Unordered()
}

// KindOf returns the kind of c, or 0 when c implements none of the channel
// kinds or more than one of them.
func KindOf(c Channel) Kind {
	var kind Kind
	for k, ok := range map[Kind]bool{
		KindDirect:    is[DirectChannel](c),
		KindSorted:    is[SortedChannel](c),
		KindUnordered: is[UnorderedChannel](c),
	} {
		if !ok {
			continue
		}
		if kind != 0 {
			return 0
		}
		kind = k
	}
	return kind
}

func is[T Channel](c Channel) bool {
	_, ok := c.(T)
	return ok
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(ctx context.Context, key, value any) error

// Write calls f.
func (f WriterFunc) Write(ctx context.Context, key, value any) error { return f(ctx, key, value) }
