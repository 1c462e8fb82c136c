// Package kafka implements the sorted exchange channel on a Kafka topic.
//
// Each (key, value) pair becomes one message. The message key holds the
// encoded key value only, so the producer's hash balancer sends equal keys
// from every input slot to the same partition; the input index and key type
// travel as headers. The value is the encoded IndexedTuple.
package kafka

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/dataflow/channel"
	"github.com/kbukum/dataflow/codec"
	"github.com/kbukum/dataflow/record"
)

// Header names set on every message.
const (
	HeaderIndex       = "dataflow-index"
	HeaderKeyType     = "dataflow-key-type"
	HeaderKeyNull     = "dataflow-key-null"
	HeaderContentType = "content-type"
)

// Publisher sends messages to the exchange topic.
type Publisher interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// Channel is a sorted exchange channel backed by a Kafka topic.
type Channel struct {
	name  string
	pub   Publisher
	codec codec.Codec
}

var _ channel.SortedChannel = (*Channel)(nil)

// New creates a sorted channel named name publishing through pub.
func New(name string, pub Publisher, c codec.Codec) *Channel {
	if c == nil {
		c = codec.JSON()
	}
	return &Channel{name: name, pub: pub, codec: c}
}

// Name returns the channel name.
func (c *Channel) Name() string { return c.name }

// Sorted marks the channel as a sorted exchange.
func (c *Channel) Sorted() {}

// Writer returns the channel's write sink.
func (c *Channel) Writer() (channel.Writer, error) {
	if c.pub == nil {
		return nil, fmt.Errorf("kafka channel %s: no publisher", c.name)
	}
	return channel.WriterFunc(c.write), nil
}

func (c *Channel) write(ctx context.Context, key, value any) error {
	k, ok := key.(*record.Key)
	if !ok || k == nil {
		return fmt.Errorf("kafka channel %s: key must be *record.Key, got %T", c.name, key)
	}
	v, ok := value.(*record.IndexedTuple)
	if !ok || v == nil {
		return fmt.Errorf("kafka channel %s: value must be *record.IndexedTuple, got %T", c.name, value)
	}
	msg, err := EncodeMessage(c.codec, k, v)
	if err != nil {
		return fmt.Errorf("kafka channel %s: %w", c.name, err)
	}
	return c.pub.WriteMessages(ctx, msg)
}

// EncodeMessage builds the message for one (key, value) pair.
func EncodeMessage(c codec.Codec, k *record.Key, v *record.IndexedTuple) (kafkago.Message, error) {
	var kv any
	if !k.Null {
		kv = k.Value
	}
	keyBytes, err := c.Marshal(kv)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("encode key: %w", err)
	}
	valBytes, err := c.Marshal(v)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("encode value: %w", err)
	}
	headers := []kafkago.Header{
		{Key: HeaderIndex, Value: []byte(strconv.Itoa(int(k.Index)))},
		{Key: HeaderKeyType, Value: []byte(k.Type.String())},
		{Key: HeaderContentType, Value: []byte(c.ContentType())},
	}
	if k.Null {
		headers = append(headers, kafkago.Header{Key: HeaderKeyNull, Value: []byte("true")})
	}
	return kafkago.Message{Key: keyBytes, Value: valBytes, Headers: headers}, nil
}

// DecodeMessage reverses EncodeMessage.
func DecodeMessage(c codec.Codec, msg kafkago.Message) (*record.Key, *record.IndexedTuple, error) {
	var (
		index   byte
		keyType record.DataType
		null    bool
		err     error
	)
	for _, h := range msg.Headers {
		switch h.Key {
		case HeaderIndex:
			n, perr := strconv.ParseUint(string(h.Value), 10, 8)
			if perr != nil {
				return nil, nil, fmt.Errorf("index header %q: %w", h.Value, perr)
			}
			index = byte(n)
		case HeaderKeyType:
			if keyType, err = record.ParseDataType(string(h.Value)); err != nil {
				return nil, nil, err
			}
		case HeaderKeyNull:
			null = string(h.Value) == "true"
		}
	}
	if keyType == record.TypeUnknown {
		return nil, nil, fmt.Errorf("missing %s header", HeaderKeyType)
	}

	var raw any
	if err := c.NewDecoder(bytes.NewReader(msg.Key)).Decode(&raw); err != nil {
		return nil, nil, fmt.Errorf("decode key: %w", err)
	}
	if null {
		raw = nil
	}
	if raw, err = codec.Normalize(raw); err != nil {
		return nil, nil, err
	}
	key, err := record.NewKey(raw, keyType)
	if err != nil {
		return nil, nil, fmt.Errorf("decode key: %w", err)
	}
	key.SetIndex(index)

	val, err := codec.DecodeCarrier(c, msg.Value)
	if err != nil {
		return nil, nil, fmt.Errorf("decode value: %w", err)
	}
	return key, val, nil
}
