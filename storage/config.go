package storage

import "github.com/kbukum/dataflow/validation"

// Provider names.
const (
	ProviderLocal = "local"
	ProviderS3    = "s3"
)

// Config picks the object store a file channel publishes to. The provider's
// own settings are passed to New alongside it.
type Config struct {
	Provider string `mapstructure:"provider" json:"provider" validate:"oneof=local s3"`
}

// ApplyDefaults selects local storage when no provider is set.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderLocal
	}
}

// Validate rejects unknown providers.
func (c *Config) Validate() error { return validation.Validate(c) }
