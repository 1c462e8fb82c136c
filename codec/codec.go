// Package codec encodes keys, value carriers and records for channel
// backends and decodes record streams for local pipeline sources.
package codec

import (
	"fmt"
	"io"
	"strings"
)

// Codec marshals values to bytes and streams.
type Codec interface {
	Name() string
	ContentType() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	NewEncoder(w io.Writer) Encoder
	NewDecoder(r io.Reader) Decoder
}

// Encoder writes a stream of values.
type Encoder interface {
	Encode(v any) error
}

// Decoder reads a stream of values. Decode returns io.EOF at end of stream.
type Decoder interface {
	Decode(v any) error
}

const (
	NameJSON = "json"
	NameCBOR = "cbor"
)

// ByName returns the codec registered under name. An empty name selects JSON.
func ByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "", NameJSON:
		return JSON(), nil
	case NameCBOR:
		return CBOR()
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}
