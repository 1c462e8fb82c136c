package record

import (
	"fmt"
	"strings"
)

// Tuple is an ordered sequence of fields. A field is nil, a scalar (bool,
// int32, int64, float32, float64, string, time.Time), a []byte payload, a
// map[string]any, or a nested Tuple.
type Tuple []any

// NewTuple returns a tuple holding fields.
func NewTuple(fields ...any) Tuple {
	return Tuple(fields)
}

// Len returns the number of fields.
func (t Tuple) Len() int { return len(t) }

// Get returns field i or an error when i is out of range.
func (t Tuple) Get(i int) (any, error) {
	if i < 0 || i >= len(t) {
		return nil, fmt.Errorf("field %d out of range for tuple of arity %d", i, len(t))
	}
	return t[i], nil
}

// TupleAt returns field i as a Tuple. A plain []any is accepted and converted.
func (t Tuple) TupleAt(i int) (Tuple, error) {
	v, err := t.Get(i)
	if err != nil {
		return nil, err
	}
	switch tv := v.(type) {
	case Tuple:
		return tv, nil
	case []any:
		return Tuple(tv), nil
	default:
		return nil, fmt.Errorf("field %d is %T, not a tuple", i, v)
	}
}

// String renders the tuple as (f0,f1,...).
func (t Tuple) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, f := range t {
		if i > 0 {
			sb.WriteByte(',')
		}
		if f == nil {
			continue
		}
		fmt.Fprintf(&sb, "%v", f)
	}
	sb.WriteByte(')')
	return sb.String()
}
