package executor

import (
	"context"
	"fmt"

	"github.com/kbukum/dataflow/channel"
	"github.com/kbukum/dataflow/errors"
	"github.com/kbukum/dataflow/record"
)

// Router reshapes records for the task topology and writes each one to the
// output channel. It performs exactly one write per routed record and keeps
// no reference to the record afterwards.
type Router struct {
	topology Topology
	output   string
	writer   channel.Writer
}

// NewRouter obtains the output channel's writer for t.
func NewRouter(t Topology) (*Router, error) {
	if t == nil || t.Output() == nil {
		return nil, errors.TopologyMismatch("router requires a classified topology with an output channel")
	}
	out := t.Output()
	w, err := out.Writer()
	if err != nil {
		return nil, errors.WriteFailed(out.Name(), fmt.Errorf("open writer: %w", err))
	}
	return &Router{topology: t, output: out.Name(), writer: w}, nil
}

// Route writes rec in the form expected by the topology.
func (r *Router) Route(ctx context.Context, rec record.Tuple) error {
	var key, value any
	switch t := r.topology.(type) {
	case Direct:
		value = rec
	case Partitioned:
		k, v, err := partitionedPair(rec, t.KeyType)
		if err != nil {
			return err
		}
		key, value = k, v
	case Broadcast:
		k, v, err := broadcastPair(rec)
		if err != nil {
			return err
		}
		key, value = k, v
	default:
		return errors.TopologyMismatch(fmt.Sprintf("unknown topology %T", r.topology))
	}

	if err := r.writer.Write(ctx, key, value); err != nil {
		return errors.WriteFailed(r.output, err)
	}
	return nil
}

// partitionedPair splits (index, key, value) into an index-stamped key and
// value carrier. The key carries the index so the exchange sorts on it in
// addition to the key value; the value carries it so the downstream merge can
// assign the tuple to its input slot.
func partitionedPair(rec record.Tuple, keyType record.DataType) (*record.Key, *record.IndexedTuple, error) {
	if rec.Len() < 3 {
		return nil, nil, shapeError("partitioned", "(index, key, value)", rec)
	}
	index, err := record.ToIndex(rec[0])
	if err != nil {
		return nil, nil, shapeError("partitioned", err.Error(), rec)
	}
	value, err := valueAt(rec, 2)
	if err != nil {
		return nil, nil, shapeError("partitioned", err.Error(), rec)
	}
	key, err := record.NewKey(rec[1], keyType)
	if err != nil {
		return nil, nil, shapeError("partitioned", err.Error(), rec)
	}
	carrier := record.NewIndexedTuple(value)
	key.SetIndex(index)
	carrier.SetIndex(index)
	return key, carrier, nil
}

// broadcastPair splits (index, value). Broadcast consumers never inspect the
// key, so it is an empty tuple stamped with the index.
func broadcastPair(rec record.Tuple) (*record.Key, *record.IndexedTuple, error) {
	if rec.Len() < 2 {
		return nil, nil, shapeError("broadcast", "(index, value)", rec)
	}
	index, err := record.ToIndex(rec[0])
	if err != nil {
		return nil, nil, shapeError("broadcast", err.Error(), rec)
	}
	value, err := valueAt(rec, 1)
	if err != nil {
		return nil, nil, shapeError("broadcast", err.Error(), rec)
	}
	key := record.EmptyKey()
	carrier := record.NewIndexedTuple(value)
	key.SetIndex(index)
	carrier.SetIndex(index)
	return key, carrier, nil
}

// valueAt returns the value tuple at field i. A nil field yields a null
// carrier downstream.
func valueAt(rec record.Tuple, i int) (record.Tuple, error) {
	if rec[i] == nil {
		return nil, nil
	}
	return rec.TupleAt(i)
}

func shapeError(topology, reason string, rec record.Tuple) *errors.AppError {
	return errors.TopologyMismatch(fmt.Sprintf("%s record does not match expected shape: %s", topology, reason)).
		WithDetail("arity", rec.Len())
}
