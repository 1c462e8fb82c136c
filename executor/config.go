package executor

import (
	"github.com/kbukum/dataflow/errors"
	"github.com/kbukum/dataflow/record"
	"github.com/kbukum/dataflow/validation"
)

// Config is the task configuration handed to New.
type Config struct {
	// TaskID identifies the task across attempts.
	TaskID string `mapstructure:"id" json:"task_id" validate:"required"`
	// KeyType is the declared comparison key type for a sorted exchange,
	// e.g. "integer" or "chararray". A terminal operator that declares its
	// own key type overrides it.
	KeyType string `mapstructure:"key_type" json:"key_type" validate:"omitempty,datatype"`
	// Output names the channel that receives records when several channels
	// of the same kind are attached.
	Output string `mapstructure:"output" json:"output"`
	// Codec is the record encoding used by channels that serialize records.
	Codec string `mapstructure:"codec" json:"codec" validate:"omitempty,oneof=json cbor"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Codec == "" {
		c.Codec = "json"
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error { return validation.Validate(c) }

// keyType resolves the configured key type; an empty name is TypeUnknown.
func (c *Config) keyType() (record.DataType, error) {
	if c.KeyType == "" {
		return record.TypeUnknown, nil
	}
	t, err := record.ParseDataType(c.KeyType)
	if err != nil {
		return record.TypeUnknown, errors.InvalidConfig("key_type", err.Error())
	}
	return t, nil
}
