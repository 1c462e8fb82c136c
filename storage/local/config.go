package local

import "github.com/kbukum/dataflow/validation"

// DefaultBasePath is where objects go when no base path is configured.
const DefaultBasePath = "/tmp/dataflow"

// Config roots a local store at a directory.
type Config struct {
	BasePath string `mapstructure:"base_path" json:"base_path" validate:"required"`
}

func (c *Config) ApplyDefaults() {
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
}

func (c *Config) Validate() error { return validation.Validate(c) }

// Location is the root directory.
func (c *Config) Location() string { return c.BasePath }
