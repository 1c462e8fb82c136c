package main

import (
	"fmt"

	"github.com/kbukum/dataflow/config"
	"github.com/kbukum/dataflow/database"
	"github.com/kbukum/dataflow/executor"
	"github.com/kbukum/dataflow/kafka"
	"github.com/kbukum/dataflow/observability"
	"github.com/kbukum/dataflow/redis"
	"github.com/kbukum/dataflow/storage"
	"github.com/kbukum/dataflow/storage/local"
	"github.com/kbukum/dataflow/storage/s3"
	"github.com/kbukum/dataflow/validation"
	"github.com/kbukum/dataflow/version"
)

// Channel backends.
const (
	BackendFile  = "file"
	BackendTable = "table"
	BackendKafka = "kafka"
	BackendRedis = "redis"
)

// TaskFile is the YAML document describing one task: the records to feed
// the pipeline and the channels the output is routed to.
type TaskFile struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Task      executor.Config      `yaml:"task" mapstructure:"task"`
	Source    SourceConfig         `yaml:"source" mapstructure:"source"`
	Channels  []ChannelConfig      `yaml:"channels" mapstructure:"channels"`
	Telemetry observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// SourceConfig describes the record stream the pipeline reads.
type SourceConfig struct {
	// Path is a file of codec-encoded records, one array per record.
	Path string `yaml:"path" mapstructure:"path" validate:"required"`
	// Codec defaults to the task codec.
	Codec string `yaml:"codec" mapstructure:"codec" validate:"omitempty,oneof=json cbor"`
	// Shape packages plain records for a keyed exchange. "rearrange" emits
	// (index, key, value) with the key taken from KeyField; "tag" emits
	// (index, record). Empty passes records through unchanged.
	Shape    string `yaml:"shape" mapstructure:"shape" validate:"omitempty,oneof=rearrange tag"`
	Index    int    `yaml:"index" mapstructure:"index" validate:"min=0,max=127"`
	KeyField int    `yaml:"key_field" mapstructure:"key_field" validate:"min=0"`
	// KeyType is declared by the source's last operator and overrides
	// task.key_type.
	KeyType string `yaml:"key_type" mapstructure:"key_type" validate:"omitempty,datatype"`
}

// ChannelConfig attaches one destination channel. Only the section matching
// Backend is read.
type ChannelConfig struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Backend string `yaml:"backend" mapstructure:"backend"`

	// Prefix is the object prefix of a file channel.
	Prefix  string         `yaml:"prefix" mapstructure:"prefix"`
	Storage storage.Config `yaml:"storage" mapstructure:"storage"`
	Local   local.Config   `yaml:"local" mapstructure:"local"`
	S3      s3.Config      `yaml:"s3" mapstructure:"s3"`

	Database database.Config `yaml:"database" mapstructure:"database"`
	Kafka    kafka.Config    `yaml:"kafka" mapstructure:"kafka"`
	Redis    redis.Config    `yaml:"redis" mapstructure:"redis"`
}

// loadTaskFile reads the task file at path. Environment variables prefixed
// DATAFLOW_ override file values.
func loadTaskFile(path string) (*TaskFile, error) {
	var tf TaskFile
	if err := config.LoadConfig("dataflow", &tf, config.WithConfigFile(path)); err != nil {
		return nil, err
	}
	return &tf, nil
}

// ApplyDefaults fills zero-valued fields of every section.
func (f *TaskFile) ApplyDefaults() {
	if f.Version == "" {
		f.Version = version.Get().Short()
	}
	f.ServiceConfig.ApplyDefaults()
	f.Task.ApplyDefaults()
	if f.Task.TaskID == "" {
		f.Task.TaskID = f.Name
	}
	if f.Source.Codec == "" {
		f.Source.Codec = f.Task.Codec
	}
	f.Telemetry.ApplyDefaults()
	for i := range f.Channels {
		c := &f.Channels[i]
		switch c.Backend {
		case BackendFile:
			c.Storage.ApplyDefaults()
			c.Local.ApplyDefaults()
			c.S3.ApplyDefaults()
		case BackendTable:
			c.Database.ApplyDefaults()
		case BackendKafka:
			c.Kafka.ApplyDefaults()
		case BackendRedis:
			c.Redis.ApplyDefaults()
		}
	}
}

// Validate checks the task file. Channel kinds are not cross-checked here;
// the executor rejects mixed channel sets when the task runs.
func (f *TaskFile) Validate() error {
	if err := f.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := f.Task.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(&f.Source); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := f.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	v := validation.New().Custom(len(f.Channels) > 0, "channels", "at least one channel is required")
	names := make([]string, 0, len(f.Channels))
	for i, c := range f.Channels {
		field := fmt.Sprintf("channels[%d]", i)
		v.Required(field+".name", c.Name)
		v.Required(field+".backend", c.Backend)
		v.OneOf(field+".backend", c.Backend, []string{BackendFile, BackendTable, BackendKafka, BackendRedis})
		names = append(names, c.Name)
	}
	v.Unique("channels.name", names)
	if err := v.Err(); err != nil {
		return err
	}

	for _, c := range f.Channels {
		if err := c.validateBackend(); err != nil {
			return fmt.Errorf("channel %s: %w", c.Name, err)
		}
	}
	return nil
}

func (c *ChannelConfig) validateBackend() error {
	switch c.Backend {
	case BackendFile:
		if err := c.Storage.Validate(); err != nil {
			return err
		}
		if c.Storage.Provider == storage.ProviderS3 {
			return c.S3.Validate()
		}
		return c.Local.Validate()
	case BackendTable:
		return c.Database.Validate()
	case BackendKafka:
		return c.Kafka.Validate()
	case BackendRedis:
		return c.Redis.Validate()
	}
	return nil
}

// providerConfig returns the storage provider section selected by Storage.
func (c *ChannelConfig) providerConfig() any {
	if c.Storage.Provider == storage.ProviderS3 {
		return &c.S3
	}
	return &c.Local
}
