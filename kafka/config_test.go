package kafka

import (
	"strings"
	"testing"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{Topic: "shuffle"}
	cfg.ApplyDefaults()

	if len(cfg.Brokers) != 1 || cfg.Brokers[0] != "localhost:9092" {
		t.Errorf("Brokers = %v, want [localhost:9092]", cfg.Brokers)
	}
	if cfg.ClientID != "dataflow" {
		t.Errorf("ClientID = %q, want dataflow", cfg.ClientID)
	}
	if cfg.Compression != "snappy" {
		t.Errorf("Compression = %q, want snappy", cfg.Compression)
	}
	if cfg.Retries != 3 {
		t.Errorf("Retries = %d, want 3", cfg.Retries)
	}
	if cfg.BatchSize != 100 {
		t.Errorf("BatchSize = %d, want 100", cfg.BatchSize)
	}
	if cfg.BatchTimeout != "10ms" {
		t.Errorf("BatchTimeout = %q, want 10ms", cfg.BatchTimeout)
	}
	if cfg.RequiredAcks != -1 {
		t.Errorf("RequiredAcks = %d, want -1", cfg.RequiredAcks)
	}
	if cfg.SASL.Enabled() || cfg.TLS.IsEnabled() {
		t.Errorf("SASL/TLS enabled by defaults: %+v / %+v", cfg.SASL, cfg.TLS)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() after defaults: %v", err)
	}
}

func TestConfig_ApplyDefaults_KeepsValues(t *testing.T) {
	cfg := Config{
		Brokers:      []string{"b1:9092", "b2:9092"},
		Compression:  "zstd",
		Retries:      7,
		RequiredAcks: 1,
	}
	cfg.ApplyDefaults()
	if len(cfg.Brokers) != 2 || cfg.Compression != "zstd" || cfg.Retries != 7 || cfg.RequiredAcks != 1 {
		t.Errorf("defaults overwrote explicit values: %+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		c := Config{Topic: "shuffle"}
		c.ApplyDefaults()
		return c
	}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"no brokers", func(c *Config) { c.Brokers = nil }, "brokers: is required"},
		{"broker without port", func(c *Config) { c.Brokers = []string{"kafka"} }, "host:port"},
		{"no topic", func(c *Config) { c.Topic = "" }, "topic: is required"},
		{"bad duration", func(c *Config) { c.WriteTimeout = "soon" }, "write_timeout: is not a valid duration"},
		{"bad compression", func(c *Config) { c.Compression = "brotli" }, "compression: must be one of"},
		{"bad sasl", func(c *Config) { c.SASL = SASLConfig{Mechanism: "GSSAPI", Username: "u"} }, "mechanism: must be one of"},
		{"sasl without user", func(c *Config) { c.SASL.Mechanism = MechanismPlain }, "username: is required"},
		{"bad acks", func(c *Config) { c.RequiredAcks = 2 }, "required_acks"},
		{"no retries", func(c *Config) { c.Retries = 0 }, "retries: must be at least 1"},
		{"no batch", func(c *Config) { c.BatchSize = 0 }, "batch_size"},
		{"tls half key pair", func(c *Config) { c.TLS.CertFile = "client.pem" }, "key_file: is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	if got := ParseDuration("250ms"); got.Milliseconds() != 250 {
		t.Errorf("ParseDuration(250ms) = %v", got)
	}
	if got := ParseDuration(""); got != 0 {
		t.Errorf("ParseDuration(\"\") = %v, want 0", got)
	}
}
