package kafka

import (
	"crypto/tls"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"
)

// CreateTransport builds the producer transport with optional TLS and SASL.
func CreateTransport(cfg *Config) (*kafkago.Transport, error) {
	transport := &kafkago.Transport{
		ClientID:    cfg.ClientID,
		DialTimeout: ParseDuration(cfg.DialTimeout),
		IdleTimeout: ParseDuration(cfg.IdleTimeout),
		MetadataTTL: ParseDuration(cfg.MetadataTTL),
	}

	tc, err := buildTLSConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("TLS config: %w", err)
	}
	transport.TLS = tc

	if cfg.SASL.Enabled() {
		m, err := buildSASLMechanism(cfg.SASL)
		if err != nil {
			return nil, fmt.Errorf("SASL config: %w", err)
		}
		transport.SASL = m
	}

	return transport, nil
}

// CreateDialer builds a dialer sharing the transport's TLS and SASL settings.
// Health probes use it to reach a broker directly.
func CreateDialer(cfg *Config) (*kafkago.Dialer, error) {
	dialer := &kafkago.Dialer{
		ClientID:  cfg.ClientID,
		Timeout:   ParseDuration(cfg.DialTimeout),
		DualStack: true,
	}
	tc, err := buildTLSConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("TLS config: %w", err)
	}
	dialer.TLS = tc
	if cfg.SASL.Enabled() {
		m, err := buildSASLMechanism(cfg.SASL)
		if err != nil {
			return nil, fmt.Errorf("SASL config: %w", err)
		}
		dialer.SASLMechanism = m
	}
	return dialer, nil
}

// buildTLSConfig returns nil when TLS is off. The first broker's host is
// the default server name.
func buildTLSConfig(cfg *Config) (*tls.Config, error) {
	var first string
	if len(cfg.Brokers) > 0 {
		first = cfg.Brokers[0]
	}
	return cfg.TLS.ForAddr(first)
}

func buildSASLMechanism(s SASLConfig) (sasl.Mechanism, error) {
	switch s.Mechanism {
	case MechanismPlain:
		return plain.Mechanism{Username: s.Username, Password: s.Password}, nil
	case MechanismSCRAMSHA256:
		return scram.Mechanism(scram.SHA256, s.Username, s.Password)
	case MechanismSCRAMSHA512:
		return scram.Mechanism(scram.SHA512, s.Username, s.Password)
	}
	return nil, fmt.Errorf("unsupported SASL mechanism: %s", s.Mechanism)
}

// ResolveCompression maps a compression name to a kafka-go codec. Unknown
// names fall back to snappy.
func ResolveCompression(name string) kafkago.Compression {
	switch name {
	case "gzip":
		return kafkago.Gzip
	case "lz4":
		return kafkago.Lz4
	case "zstd":
		return kafkago.Zstd
	case "none":
		return 0
	default:
		return kafkago.Snappy
	}
}
