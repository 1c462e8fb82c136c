package security

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"os"

	"github.com/kbukum/dataflow/validation"
)

// TLS protocol versions accepted in MinVersion.
const (
	TLS12 = "1.2"
	TLS13 = "1.3"
)

// TLSConfig holds client TLS settings for a backend connection.
type TLSConfig struct {
	// Enabled turns TLS on with default settings. Setting any certificate
	// or name field also enables it.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// SkipVerify disables server certificate verification. Test clusters only.
	SkipVerify bool `yaml:"skip_verify" mapstructure:"skip_verify"`

	CAFile string `yaml:"ca_file" mapstructure:"ca_file"`

	// CertFile and KeyFile form the client key pair for mutual TLS.
	CertFile string `yaml:"cert_file" mapstructure:"cert_file" validate:"required_with=KeyFile"`
	KeyFile  string `yaml:"key_file" mapstructure:"key_file" validate:"required_with=CertFile"`

	// ServerName overrides the name checked against the server certificate.
	// ForAddr derives it from the dialed address when empty.
	ServerName string `yaml:"server_name" mapstructure:"server_name"`

	MinVersion string `yaml:"min_version" mapstructure:"min_version" validate:"omitempty,oneof=1.2 1.3"`
}

// IsEnabled reports whether TLS is switched on explicitly or implied by a
// setting.
func (c *TLSConfig) IsEnabled() bool {
	if c == nil {
		return false
	}
	return c.Enabled || c.SkipVerify || c.CAFile != "" || c.CertFile != "" || c.KeyFile != "" || c.ServerName != ""
}

// Validate checks the key pair is complete and the version is known.
func (c *TLSConfig) Validate() error {
	if c == nil {
		return nil
	}
	return validation.Validate(c)
}

// Build returns the *tls.Config for the settings, or nil when TLS is off.
func (c *TLSConfig) Build() (*tls.Config, error) {
	if !c.IsEnabled() {
		return nil, nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	cfg := &tls.Config{
		InsecureSkipVerify: c.SkipVerify, //nolint:gosec // opt-in for test clusters
		ServerName:         c.ServerName,
		MinVersion:         tls.VersionTLS12,
	}
	if c.MinVersion == TLS13 {
		cfg.MinVersion = tls.VersionTLS13
	}

	var err error
	if cfg.RootCAs, err = loadRootCAs(c.CAFile); err != nil {
		return nil, err
	}
	if c.CertFile != "" {
		pair, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("tls: load client certificate: %w", err)
		}
		cfg.Certificates = []tls.Certificate{pair}
	}
	return cfg, nil
}

// ForAddr builds the config for a connection to addr (host:port). Without
// an explicit ServerName the host part is verified.
func (c *TLSConfig) ForAddr(addr string) (*tls.Config, error) {
	if !c.IsEnabled() {
		return nil, nil
	}
	tc := *c
	if tc.ServerName == "" {
		if host, _, err := net.SplitHostPort(addr); err == nil {
			tc.ServerName = host
		}
	}
	return tc.Build()
}

// loadRootCAs returns nil for an empty path so the system pool is used.
func loadRootCAs(path string) (*x509.CertPool, error) {
	if path == "" {
		return nil, nil
	}
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tls: read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("tls: parse CA certificate %s", path)
	}
	return pool, nil
}
