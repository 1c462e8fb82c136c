package pipeline

import (
	"context"
	"errors"
	"io"

	"github.com/kbukum/dataflow/codec"
	"github.com/kbukum/dataflow/record"
)

// DecoderIterator reads records from a codec stream. closer, if non-nil, is
// closed with the iterator.
func DecoderIterator(dec codec.Decoder, closer io.Closer) Iterator {
	return &decoderIter{dec: dec, closer: closer}
}

type decoderIter struct {
	dec    codec.Decoder
	closer io.Closer
}

func (it *decoderIter) Next(ctx context.Context) (record.Tuple, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	rec, err := codec.DecodeTuple(it.dec)
	if errors.Is(err, io.EOF) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

func (it *decoderIter) Close() error {
	if it.closer != nil {
		return it.closer.Close()
	}
	return nil
}
