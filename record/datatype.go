package record

import (
	"fmt"
	"strings"
)

// DataType identifies the type of a comparison key. The numeric values are
// part of the exchange wire contract and must not change.
type DataType byte

const (
	TypeUnknown   DataType = 0
	TypeNull      DataType = 1
	TypeBoolean   DataType = 5
	TypeInteger   DataType = 10
	TypeLong      DataType = 15
	TypeFloat     DataType = 20
	TypeDouble    DataType = 25
	TypeDateTime  DataType = 30
	TypeByteArray DataType = 50
	TypeCharArray DataType = 55
	TypeMap       DataType = 100
	TypeTuple     DataType = 110
)

var typeNames = map[DataType]string{
	TypeUnknown:   "unknown",
	TypeNull:      "null",
	TypeBoolean:   "boolean",
	TypeInteger:   "integer",
	TypeLong:      "long",
	TypeFloat:     "float",
	TypeDouble:    "double",
	TypeDateTime:  "datetime",
	TypeByteArray: "bytearray",
	TypeCharArray: "chararray",
	TypeMap:       "map",
	TypeTuple:     "tuple",
}

// String returns the lower-case type name.
func (t DataType) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("datatype(%d)", byte(t))
}

// ParseDataType resolves a type name such as "integer" or "chararray".
// "int" and "string" are accepted as aliases.
func ParseDataType(name string) (DataType, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "int":
		return TypeInteger, nil
	case "string":
		return TypeCharArray, nil
	case "bytes":
		return TypeByteArray, nil
	}
	for t, tn := range typeNames {
		if tn == n && t != TypeUnknown {
			return t, nil
		}
	}
	return TypeUnknown, fmt.Errorf("unknown data type %q", name)
}
