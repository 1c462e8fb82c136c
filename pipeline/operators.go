package pipeline

import (
	"context"
	"fmt"

	"github.com/kbukum/dataflow/record"
)

// Map transforms each emitted record using fn. An fn error fails the pipeline.
func Map(h Handle, fn func(context.Context, record.Tuple) (record.Tuple, error)) Handle {
	return &mapOp{stage: stage{source: h}, fn: fn}
}

// Filter keeps records satisfying fn. Dropped records are reported as Empty
// so the puller observes that input was consumed without output.
func Filter(h Handle, fn func(record.Tuple) bool) Handle {
	return &filterOp{stage: stage{source: h}, fn: fn}
}

// Tap calls fn as a side-effect for each record and passes it through
// unchanged. An fn error fails the pipeline.
func Tap(h Handle, fn func(context.Context, record.Tuple) error) Handle {
	return &tapOp{stage: stage{source: h}, fn: fn}
}

// Rearrange reshapes each record into (index, key, value) for a sorted
// exchange: field keyField becomes the key and the remaining fields the value
// tuple. The returned handle declares keyType as its key type.
func Rearrange(h Handle, index byte, keyField int, keyType record.DataType) Handle {
	return &rearrangeOp{stage: stage{source: h}, index: index, keyField: keyField, keyType: keyType}
}

// Tag reshapes each record into (index, value) for an unordered exchange.
func Tag(h Handle, index byte) Handle {
	return &tagOp{stage: stage{source: h}, index: index}
}

// WithKeyType declares the key type of the records h emits.
func WithKeyType(h Handle, keyType record.DataType) Handle {
	return &keyTypedOp{stage: stage{source: h}, keyType: keyType}
}

// stage holds the upstream handle and forwards Close.
type stage struct {
	source Handle
}

func (s *stage) Close() error { return Close(s.source) }

type mapOp struct {
	stage
	fn func(context.Context, record.Tuple) (record.Tuple, error)
}

func (op *mapOp) Next(ctx context.Context) Result {
	res := op.source.Next(ctx)
	emit, ok := res.(Emit)
	if !ok {
		return res
	}
	out, err := op.fn(ctx, emit.Record)
	if err != nil {
		return Failure{Payload: err}
	}
	return Emit{Record: out}
}

type filterOp struct {
	stage
	fn func(record.Tuple) bool
}

func (op *filterOp) Next(ctx context.Context) Result {
	res := op.source.Next(ctx)
	if emit, ok := res.(Emit); ok && !op.fn(emit.Record) {
		return Empty{}
	}
	return res
}

type tapOp struct {
	stage
	fn func(context.Context, record.Tuple) error
}

func (op *tapOp) Next(ctx context.Context) Result {
	res := op.source.Next(ctx)
	if emit, ok := res.(Emit); ok {
		if err := op.fn(ctx, emit.Record); err != nil {
			return Failure{Payload: err}
		}
	}
	return res
}

type rearrangeOp struct {
	stage
	index    byte
	keyField int
	keyType  record.DataType
}

func (op *rearrangeOp) KeyType() record.DataType { return op.keyType }

func (op *rearrangeOp) Next(ctx context.Context) Result {
	res := op.source.Next(ctx)
	emit, ok := res.(Emit)
	if !ok {
		return res
	}
	rec := emit.Record
	if op.keyField < 0 || op.keyField >= rec.Len() {
		return Failure{Payload: fmt.Errorf("rearrange: key field %d missing from record of arity %d", op.keyField, rec.Len())}
	}
	value := make(record.Tuple, 0, rec.Len()-1)
	value = append(value, rec[:op.keyField]...)
	value = append(value, rec[op.keyField+1:]...)
	return Emit{Record: record.Tuple{op.index, rec[op.keyField], value}}
}

type tagOp struct {
	stage
	index byte
}

func (op *tagOp) Next(ctx context.Context) Result {
	res := op.source.Next(ctx)
	if emit, ok := res.(Emit); ok {
		return Emit{Record: record.Tuple{op.index, emit.Record}}
	}
	return res
}

type keyTypedOp struct {
	stage
	keyType record.DataType
}

func (op *keyTypedOp) KeyType() record.DataType { return op.keyType }

func (op *keyTypedOp) Next(ctx context.Context) Result { return op.source.Next(ctx) }
