package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/kbukum/dataflow/channel"
	filechannel "github.com/kbukum/dataflow/channel/file"
	kafkachannel "github.com/kbukum/dataflow/channel/kafka"
	redischannel "github.com/kbukum/dataflow/channel/redis"
	tablechannel "github.com/kbukum/dataflow/channel/table"
	"github.com/kbukum/dataflow/codec"
	"github.com/kbukum/dataflow/component"
	"github.com/kbukum/dataflow/database"
	"github.com/kbukum/dataflow/kafka"
	"github.com/kbukum/dataflow/logger"
	"github.com/kbukum/dataflow/pipeline"
	"github.com/kbukum/dataflow/record"
	"github.com/kbukum/dataflow/redis"
	"github.com/kbukum/dataflow/storage"

	// Storage providers register their factories in init.
	_ "github.com/kbukum/dataflow/storage/local"
	_ "github.com/kbukum/dataflow/storage/s3"
)

// binding pairs a channel declaration with the backend component it writes
// through.
type binding struct {
	cfg  ChannelConfig
	comp component.Component
}

func newBindings(channels []ChannelConfig, log *logger.Logger) ([]*binding, error) {
	out := make([]*binding, 0, len(channels))
	for _, cc := range channels {
		name := "channel." + cc.Name
		var comp component.Component
		switch cc.Backend {
		case BackendFile:
			comp = storage.NewComponent(name, cc.Storage, cc.providerConfig(), log)
		case BackendTable:
			comp = database.NewComponent(name, cc.Database, log)
		case BackendKafka:
			comp = kafka.NewComponent(name, cc.Kafka, log)
		case BackendRedis:
			comp = redis.NewComponent(name, cc.Redis, log)
		default:
			return nil, fmt.Errorf("channel %s: unknown backend %q", cc.Name, cc.Backend)
		}
		out = append(out, &binding{cfg: cc, comp: comp})
	}
	return out, nil
}

// attempt identifies the execution the channels write for.
type attempt struct {
	taskID    string
	attemptID string
}

// channel builds the destination channel on the started component. The
// returned target describes where records land.
func (b *binding) channel(c codec.Codec, a attempt, log *logger.Logger) (channel.Channel, string, error) {
	cc := b.cfg
	switch comp := b.comp.(type) {
	case *storage.Component:
		store := comp.Storage()
		if store == nil {
			return nil, "", fmt.Errorf("channel %s: storage not started", cc.Name)
		}
		ch := filechannel.New(cc.Name, store, cc.Prefix, c,
			filechannel.WithPartName(a.attemptID),
			filechannel.WithLogger(log),
		)
		return ch, cc.Storage.Provider + ":" + ch.ObjectPath(), nil

	case *database.Component:
		db := comp.DB()
		if db == nil {
			return nil, "", fmt.Errorf("channel %s: database not started", cc.Name)
		}
		ch := tablechannel.New(cc.Name, db.GormDB, c,
			tablechannel.WithAttempt(a.taskID, a.attemptID),
			tablechannel.WithLogger(log),
		)
		return ch, database.RecordsTable, nil

	case *kafka.Component:
		p := comp.Producer()
		if p == nil {
			return nil, "", fmt.Errorf("channel %s: kafka producer not started", cc.Name)
		}
		return kafkachannel.New(cc.Name, p, c), "topic " + p.Topic(), nil

	case *redis.Component:
		client := comp.Client()
		if client == nil {
			return nil, "", fmt.Errorf("channel %s: redis client not started", cc.Name)
		}
		rcfg := client.Config()
		ch := redischannel.New(cc.Name, rcfg.KeyPrefix, client, c,
			redischannel.WithTTL(rcfg.TTLDuration()),
			redischannel.WithLogger(log),
		)
		return ch, rcfg.KeyPrefix + ":" + cc.Name + ":*", nil
	}
	return nil, "", fmt.Errorf("channel %s: unsupported component %T", cc.Name, b.comp)
}

// openSource opens the record file and applies the configured shaping.
func openSource(src SourceConfig) (pipeline.Handle, error) {
	c, err := codec.ByName(src.Codec)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(src.Path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	h := pipeline.FromIterator(pipeline.DecoderIterator(c.NewDecoder(bufio.NewReader(f)), f))

	keyType := record.TypeUnknown
	if src.KeyType != "" {
		if keyType, err = record.ParseDataType(src.KeyType); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	switch src.Shape {
	case "rearrange":
		h = pipeline.Rearrange(h, byte(src.Index), src.KeyField, keyType)
	case "tag":
		h = pipeline.Tag(h, byte(src.Index))
	}
	if keyType != record.TypeUnknown && src.Shape != "rearrange" {
		h = pipeline.WithKeyType(h, keyType)
	}
	return h, nil
}
