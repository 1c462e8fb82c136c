package codec

import (
	"io"
	"reflect"

	cbor "github.com/fxamacker/cbor/v2"
)

type cborCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// CBOR returns a deterministic CBOR codec (RFC 8949 core deterministic
// encoding). Equal keys always encode to equal bytes, which exchange
// partitioners rely on. Times are written as tagged RFC 3339 strings so they
// decode back to time.Time.
func CBOR() (Codec, error) {
	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	opts.TimeTag = cbor.EncTagRequired
	em, err := opts.EncMode()
	if err != nil {
		return nil, err
	}
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		IntDec:         cbor.IntDecConvertSigned,
		TimeTagToAny:   cbor.TimeTagToTime,
	}.DecMode()
	if err != nil {
		return nil, err
	}
	return cborCodec{enc: em, dec: dm}, nil
}

func (c cborCodec) Name() string                       { return NameCBOR }
func (c cborCodec) ContentType() string                { return "application/cbor-seq" }
func (c cborCodec) Marshal(v any) ([]byte, error)      { return c.enc.Marshal(v) }
func (c cborCodec) Unmarshal(data []byte, v any) error { return c.dec.Unmarshal(data, v) }
func (c cborCodec) NewEncoder(w io.Writer) Encoder     { return c.enc.NewEncoder(w) }
func (c cborCodec) NewDecoder(r io.Reader) Decoder     { return c.dec.NewDecoder(r) }
