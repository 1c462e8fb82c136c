package record

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
	"time"
)

// CompareValues orders two normalized field values. Values of different
// kinds are ordered by their kind rank so mixed tuples still sort totally.
func CompareValues(a, b any) int {
	if ra, rb := rank(a), rank(b); ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch av := a.(type) {
	case nil:
		return 0
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	case int32:
		return cmp.Compare(av, b.(int32))
	case int64:
		return cmp.Compare(av, b.(int64))
	case float32:
		return cmp.Compare(av, b.(float32))
	case float64:
		return cmp.Compare(av, b.(float64))
	case time.Time:
		return av.Compare(b.(time.Time))
	case []byte:
		return bytes.Compare(av, b.([]byte))
	case string:
		return cmp.Compare(av, b.(string))
	case Tuple:
		return compareTuples(av, b.(Tuple))
	case map[string]any:
		return compareMaps(av, b.(map[string]any))
	default:
		return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}

func compareTuples(a, b Tuple) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := CompareValues(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

func compareMaps(a, b map[string]any) int {
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	ak := sortedKeys(a)
	bk := sortedKeys(b)
	for i := range ak {
		if c := cmp.Compare(ak[i], bk[i]); c != 0 {
			return c
		}
		if c := CompareValues(a[ak[i]], b[bk[i]]); c != 0 {
			return c
		}
	}
	return 0
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case int32:
		return 2
	case int64:
		return 3
	case float32:
		return 4
	case float64:
		return 5
	case time.Time:
		return 6
	case []byte:
		return 7
	case string:
		return 8
	case map[string]any:
		return 9
	case Tuple:
		return 10
	default:
		return 11
	}
}
