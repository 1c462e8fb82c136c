package pipeline

import "github.com/kbukum/dataflow/record"

// Result is the outcome of a single pull. It is one of Emit, Empty,
// EndOfStream or Failure.
type Result interface {
	isResult()
}

// Emit carries exactly one record.
type Emit struct {
	Record record.Tuple
}

// Empty reports that no record is available from this pull. The stream is
// not exhausted.
type Empty struct{}

// EndOfStream reports that the pipeline is exhausted.
type EndOfStream struct{}

// Failure reports an unrecoverable pipeline error. Payload is an optional
// diagnostic (an error, a string, or nil).
type Failure struct {
	Payload any
}

func (Emit) isResult()        {}
func (Empty) isResult()       {}
func (EndOfStream) isResult() {}
func (Failure) isResult()     {}
