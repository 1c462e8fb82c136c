package redis

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/dataflow/component"
	"github.com/kbukum/dataflow/security"
	"github.com/kbukum/dataflow/security/tlstest"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mini := miniredis.RunT(t)
	client, err := New(Config{Addr: mini.Addr()}, nil)
	if err != nil {
		t.Fatalf("failed to create redis client: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client, mini
}

func TestConfig_Defaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Addr != "localhost:6379" || cfg.KeyPrefix != "dataflow" || cfg.PoolSize != 10 {
		t.Errorf("defaults = %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	if cfg.TTLDuration() != 0 {
		t.Errorf("TTLDuration() = %v, want 0", cfg.TTLDuration())
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"no addr", func(c *Config) { c.Addr = "" }, "addr: is required"},
		{"addr without port", func(c *Config) { c.Addr = "cache" }, "addr: must be a host:port address"},
		{"negative db", func(c *Config) { c.DB = -1 }, "db: must be at least 0"},
		{"bad timeout", func(c *Config) { c.ReadTimeout = "fast" }, "read_timeout: is not a valid duration"},
		{"unparseable ttl", func(c *Config) { c.TTL = "soon" }, "ttl: is not a valid duration"},
		{"negative ttl", func(c *Config) { c.TTL = "-1h" }, "ttl: must be a positive duration"},
		{"tls cert without key", func(c *Config) { c.TLS.CertFile = "client.pem" }, "key_file: is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			cfg.ApplyDefaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestClient_ListOperations(t *testing.T) {
	client, mini := newTestClient(t)
	ctx := context.Background()

	if err := client.Ping(ctx); err != nil {
		t.Fatalf("Ping() error: %v", err)
	}
	if err := client.RPush(ctx, "l", "a", "b"); err != nil {
		t.Fatalf("RPush() error: %v", err)
	}
	if err := client.RPush(ctx, "l", "c"); err != nil {
		t.Fatalf("RPush() error: %v", err)
	}
	got, err := client.LRange(ctx, "l", 0, -1)
	if err != nil {
		t.Fatalf("LRange() error: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Errorf("list mismatch (-want +got):\n%s", diff)
	}

	if err := client.Expire(ctx, time.Minute, "l"); err != nil {
		t.Fatalf("Expire() error: %v", err)
	}
	if ttl := mini.TTL("l"); ttl != time.Minute {
		t.Errorf("TTL = %v, want 1m", ttl)
	}
	if err := client.Expire(ctx, time.Minute); err != nil {
		t.Errorf("Expire() without keys = %v", err)
	}

	if err := client.Del(ctx, "l"); err != nil {
		t.Fatalf("Del() error: %v", err)
	}
	if mini.Exists("l") {
		t.Error("list should be deleted")
	}
}

func TestClient_TLS(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)
	mini := miniredis.NewMiniRedis()
	if err := mini.StartTLS(certs.ServerConfig()); err != nil {
		t.Fatalf("StartTLS() error: %v", err)
	}
	t.Cleanup(mini.Close)

	client, err := New(Config{Addr: mini.Addr(), TLS: security.TLSConfig{CAFile: certs.CAFile}}, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer client.Close()

	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() over TLS error: %v", err)
	}
}

func TestClient_TLSBadCA(t *testing.T) {
	_, err := New(Config{TLS: security.TLSConfig{CAFile: tlstest.WriteInvalidPEM(t, "ca.pem")}}, nil)
	if err == nil || !strings.Contains(err.Error(), "redis tls") {
		t.Fatalf("New() error = %v, want redis tls error", err)
	}
}

func TestClient_CloseTwice(t *testing.T) {
	client, _ := newTestClient(t)
	if err := client.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	mini := miniredis.RunT(t)
	comp := NewComponent("fanout", Config{Addr: mini.Addr()}, nil)
	ctx := context.Background()

	if h := comp.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("Health() before start = %v", h.Status)
	}
	if err := comp.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if comp.Client() == nil {
		t.Fatal("Client() nil after Start")
	}
	if h := comp.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("Health() = %+v", h)
	}
	if d := comp.Describe(); d.Type != "redis" || !strings.Contains(d.Details, mini.Addr()) {
		t.Errorf("Describe() = %+v", d)
	}
	if err := comp.Stop(ctx); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if comp.Client() != nil {
		t.Error("client should be released after Stop")
	}
}

func TestComponent_StartUnreachable(t *testing.T) {
	mini := miniredis.RunT(t)
	addr := mini.Addr()
	mini.Close()

	comp := NewComponent("fanout", Config{Addr: addr, DialTimeout: "100ms", MaxRetries: 1}, nil)
	if err := comp.Start(context.Background()); err == nil {
		t.Fatal("expected error for unreachable server")
	}
}
