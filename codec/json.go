package codec

import (
	"encoding/json"
	"io"
)

type jsonCodec struct{}

// JSON returns a codec producing one JSON document per encoded value.
// Decoders keep numbers as json.Number so integers survive decoding.
func JSON() Codec { return jsonCodec{} }

func (jsonCodec) Name() string                       { return NameJSON }
func (jsonCodec) ContentType() string                { return "application/x-ndjson" }
func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) NewEncoder(w io.Writer) Encoder     { return json.NewEncoder(w) }

func (jsonCodec) NewDecoder(r io.Reader) Decoder {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec
}
