// Package pipeline defines the pull contract between a task executor and the
// compiled operator chain it drives.
//
// A Handle is the terminal operator of a plan. Each call to Next returns one
// Result: Emit carries a record, Empty means the operator consumed input
// without producing output, EndOfStream is the only successful terminal
// outcome and Failure aborts the task.
//
// Operators are lazy; no work happens until the executor pulls. Each stage
// pulls from the previous stage on demand, so backpressure is natural.
//
//   - FromSlice, FromIterator, FromResults: sources
//   - Map, Filter, Tap: per-record transforms (Filter reports dropped records as Empty)
//   - Rearrange, Tag: reshape plain records into the indexed forms expected
//     by sorted and unordered exchanges
//
// # Usage
//
//	src := pipeline.FromSlice(records)
//	kept := pipeline.Filter(src, func(r record.Tuple) bool { return r.Len() > 1 })
//	leaf := pipeline.Rearrange(kept, 0, 1, record.TypeCharArray)
//	plan := pipeline.Plan{Leaves: []pipeline.Handle{leaf}}
package pipeline
