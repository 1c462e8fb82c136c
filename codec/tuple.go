package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/kbukum/dataflow/record"
)

// DecodeTuple reads the next record from dec. Records are encoded as arrays;
// nested arrays become nested tuples and numbers are narrowed to int64 when
// integral, float64 otherwise.
func DecodeTuple(dec Decoder) (record.Tuple, error) {
	var raw []any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	v, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	return v.(record.Tuple), nil
}

// Normalize converts decoder output into record field types.
func Normalize(v any) (any, error) {
	switch tv := v.(type) {
	case json.Number:
		if n, err := tv.Int64(); err == nil {
			return n, nil
		}
		f, err := tv.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", tv, err)
		}
		return f, nil
	case uint64:
		if tv > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d overflows int64", tv)
		}
		return int64(tv), nil
	case []any:
		out := make(record.Tuple, len(tv))
		for i, f := range tv {
			nf, err := Normalize(f)
			if err != nil {
				return nil, err
			}
			out[i] = nf
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, f := range tv {
			nf, err := Normalize(f)
			if err != nil {
				return nil, err
			}
			out[k] = nf
		}
		return out, nil
	default:
		return v, nil
	}
}

// DecodeCarrier decodes an encoded IndexedTuple and normalizes its fields.
func DecodeCarrier(c Codec, data []byte) (*record.IndexedTuple, error) {
	var v record.IndexedTuple
	if err := c.NewDecoder(bytes.NewReader(data)).Decode(&v); err != nil {
		return nil, err
	}
	if v.Tuple != nil {
		t, err := Normalize([]any(v.Tuple))
		if err != nil {
			return nil, err
		}
		v.Tuple = t.(record.Tuple)
	}
	return &v, nil
}
