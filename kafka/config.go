package kafka

import (
	"time"

	"github.com/kbukum/dataflow/security"
	"github.com/kbukum/dataflow/validation"
)

// SASL mechanisms.
const (
	MechanismPlain       = "PLAIN"
	MechanismSCRAMSHA256 = "SCRAM-SHA-256"
	MechanismSCRAMSHA512 = "SCRAM-SHA-512"
)

// Config holds the producer settings of a sorted exchange channel.
type Config struct {
	Brokers []string `mapstructure:"brokers" validate:"required,dive,hostname_port"`
	// Topic receives every (key, value) pair the channel writes.
	Topic    string `mapstructure:"topic" validate:"required"`
	ClientID string `mapstructure:"client_id"`

	TLS  security.TLSConfig `mapstructure:"tls"`
	SASL SASLConfig         `mapstructure:"sasl"`

	Compression string `mapstructure:"compression" validate:"oneof=none gzip snappy lz4 zstd"`
	// Retries bounds attempts per write on retryable broker errors.
	Retries      int    `mapstructure:"retries" validate:"min=1"`
	BatchSize    int    `mapstructure:"batch_size" validate:"min=1"`
	BatchTimeout string `mapstructure:"batch_timeout" validate:"duration"`
	WriteTimeout string `mapstructure:"write_timeout" validate:"duration"`
	// RequiredAcks is -1 (all in-sync replicas) or 1 (leader only).
	RequiredAcks int `mapstructure:"required_acks" validate:"oneof=-1 1"`

	DialTimeout string `mapstructure:"dial_timeout" validate:"duration"`
	IdleTimeout string `mapstructure:"idle_timeout" validate:"duration"`
	MetadataTTL string `mapstructure:"metadata_ttl" validate:"duration"`
}

// SASLConfig authenticates the producer. An empty Mechanism disables SASL.
type SASLConfig struct {
	Mechanism string `mapstructure:"mechanism" validate:"omitempty,oneof=PLAIN SCRAM-SHA-256 SCRAM-SHA-512"`
	Username  string `mapstructure:"username" validate:"required_with=Mechanism"`
	Password  string `mapstructure:"password"`
}

// Enabled reports whether a mechanism is configured.
func (s SASLConfig) Enabled() bool { return s.Mechanism != "" }

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if len(c.Brokers) == 0 {
		c.Brokers = []string{"localhost:9092"}
	}
	if c.ClientID == "" {
		c.ClientID = "dataflow"
	}
	if c.Compression == "" {
		c.Compression = "snappy"
	}
	if c.Retries <= 0 {
		c.Retries = 3
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	// The router writes one record per call; a long batch timeout would
	// stall every write.
	if c.BatchTimeout == "" {
		c.BatchTimeout = "10ms"
	}
	if c.WriteTimeout == "" {
		c.WriteTimeout = "10s"
	}
	if c.RequiredAcks == 0 {
		c.RequiredAcks = -1
	}
	if c.DialTimeout == "" {
		c.DialTimeout = "10s"
	}
	if c.IdleTimeout == "" {
		c.IdleTimeout = "30s"
	}
	if c.MetadataTTL == "" {
		c.MetadataTTL = "6s"
	}
}

// Validate checks the struct tags and the TLS key pair.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	return c.TLS.Validate()
}

// ParseDuration parses a validated duration string; empty input is zero.
func ParseDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
