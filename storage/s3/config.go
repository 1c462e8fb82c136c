package s3

import (
	"strings"

	"github.com/kbukum/dataflow/validation"
)

// DefaultRegion is used when no region is configured.
const DefaultRegion = "us-east-1"

// Config locates the bucket a file channel publishes to.
type Config struct {
	Bucket string `mapstructure:"bucket" json:"bucket" validate:"required"`
	// Prefix is prepended to every object key.
	Prefix string `mapstructure:"prefix" json:"prefix"`
	Region string `mapstructure:"region" json:"region" validate:"required"`

	// Endpoint points at an S3-compatible store such as MinIO and implies
	// ForcePathStyle.
	Endpoint       string `mapstructure:"endpoint" json:"endpoint" validate:"omitempty,url"`
	ForcePathStyle bool   `mapstructure:"force_path_style" json:"force_path_style"`

	// Static credentials. Without them the default AWS credential chain is
	// used.
	AccessKey string `mapstructure:"access_key" json:"access_key"`
	SecretKey string `mapstructure:"secret_key" json:"secret_key"`
}

func (c *Config) ApplyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
}

func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	return validation.New().
		Custom((c.AccessKey == "") == (c.SecretKey == ""), "access_key", "must be set together with secret_key").
		Err()
}

// Location renders the bucket and prefix as an s3:// URL.
func (c *Config) Location() string {
	if c.Prefix == "" {
		return "s3://" + c.Bucket
	}
	return "s3://" + c.Bucket + "/" + strings.Trim(c.Prefix, "/")
}
