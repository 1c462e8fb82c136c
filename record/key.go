package record

import (
	"cmp"
	"fmt"
	"math"
	"time"
)

// Key is the comparison key written to sorted and unordered exchanges. Its
// Type is fixed when the task is classified; Index is the partition index of
// the record it was built from.
type Key struct {
	Type  DataType `json:"type" cbor:"1,keyasint"`
	Value any      `json:"value,omitempty" cbor:"2,keyasint,omitempty"`
	Null  bool     `json:"null,omitempty" cbor:"3,keyasint,omitempty"`
	Index byte     `json:"index" cbor:"4,keyasint"`
}

// NewKey builds a key of type t from v. A nil v produces a null key. v is
// normalized to the canonical Go type for t (integer to int32, long to
// int64, and so on); a value that cannot represent t is an error.
func NewKey(v any, t DataType) (*Key, error) {
	if v == nil {
		return &Key{Type: t, Null: true}, nil
	}
	nv, err := normalize(v, t)
	if err != nil {
		return nil, err
	}
	return &Key{Type: t, Value: nv}, nil
}

// EmptyKey returns the placeholder key used where ordering never inspects
// key content: an empty tuple.
func EmptyKey() *Key {
	return &Key{Type: TypeTuple, Value: Tuple{}}
}

// SetIndex stamps the key with a partition index.
func (k *Key) SetIndex(index byte) { k.Index = index }

// Compare orders keys for a sorted exchange: null keys first, then by value,
// ties broken by index so equal keys from different inputs stay adjacent.
func (k *Key) Compare(o *Key) int {
	switch {
	case k.Null && o.Null:
		return cmp.Compare(k.Index, o.Index)
	case k.Null:
		return -1
	case o.Null:
		return 1
	}
	if c := CompareValues(k.Value, o.Value); c != 0 {
		return c
	}
	return cmp.Compare(k.Index, o.Index)
}

// String renders the key as index:value.
func (k *Key) String() string {
	if k.Null {
		return fmt.Sprintf("%d:null", k.Index)
	}
	return fmt.Sprintf("%d:%v", k.Index, k.Value)
}

// IndexedTuple carries a record's value tuple to an exchange, stamped with
// the same index as its key.
type IndexedTuple struct {
	Index byte  `json:"index" cbor:"1,keyasint"`
	Tuple Tuple `json:"tuple" cbor:"2,keyasint"`
	Null  bool  `json:"null,omitempty" cbor:"3,keyasint,omitempty"`
}

// NewIndexedTuple wraps t. A nil t produces a null carrier.
func NewIndexedTuple(t Tuple) *IndexedTuple {
	return &IndexedTuple{Tuple: t, Null: t == nil}
}

// SetIndex stamps the carrier with a partition index.
func (it *IndexedTuple) SetIndex(index byte) { it.Index = index }

// ToIndex converts a record's leading field to a partition index.
func ToIndex(v any) (byte, error) {
	var n int64
	switch iv := v.(type) {
	case byte:
		return iv, nil
	case int8:
		n = int64(iv)
	case int16:
		n = int64(iv)
	case int32:
		n = int64(iv)
	case int64:
		n = iv
	case int:
		n = int64(iv)
	case uint16:
		n = int64(iv)
	case uint32:
		n = int64(iv)
	case uint64:
		if iv > math.MaxUint8 {
			return 0, fmt.Errorf("partition index %d out of range", iv)
		}
		n = int64(iv)
	default:
		return 0, fmt.Errorf("partition index must be an integer, got %T", v)
	}
	if n < 0 || n > math.MaxUint8 {
		return 0, fmt.Errorf("partition index %d out of range", n)
	}
	return byte(n), nil
}

func normalize(v any, t DataType) (any, error) {
	switch t {
	case TypeBoolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case TypeInteger:
		if n, ok := asInt64(v); ok {
			if n < math.MinInt32 || n > math.MaxInt32 {
				return nil, fmt.Errorf("value %d overflows integer key", n)
			}
			return int32(n), nil
		}
	case TypeLong:
		if n, ok := asInt64(v); ok {
			return n, nil
		}
	case TypeFloat:
		if f, ok := asFloat64(v); ok {
			return float32(f), nil
		}
	case TypeDouble:
		if f, ok := asFloat64(v); ok {
			return f, nil
		}
	case TypeDateTime:
		switch tv := v.(type) {
		case time.Time:
			return tv.UTC(), nil
		case string:
			// text codecs carry datetimes as RFC 3339
			ts, err := time.Parse(time.RFC3339Nano, tv)
			if err != nil {
				return nil, fmt.Errorf("datetime key: %w", err)
			}
			return ts.UTC(), nil
		}
	case TypeByteArray:
		switch bv := v.(type) {
		case []byte:
			return bv, nil
		case string:
			return []byte(bv), nil
		}
	case TypeCharArray:
		switch sv := v.(type) {
		case string:
			return sv, nil
		case []byte:
			return string(sv), nil
		}
	case TypeMap:
		if m, ok := v.(map[string]any); ok {
			return m, nil
		}
	case TypeTuple:
		switch tv := v.(type) {
		case Tuple:
			return tv, nil
		case []any:
			return Tuple(tv), nil
		}
	default:
		return nil, fmt.Errorf("unsupported key type %s", t)
	}
	return nil, fmt.Errorf("cannot use %T as %s key", v, t)
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	switch f := v.(type) {
	case float32:
		return float64(f), true
	case float64:
		return f, true
	}
	if n, ok := asInt64(v); ok {
		return float64(n), true
	}
	return 0, false
}
