package database

import (
	"bytes"
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-sqlite3"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kbukum/dataflow/component"
	"github.com/kbukum/dataflow/database/migration"
	"github.com/kbukum/dataflow/logger"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{DSN: filepath.Join(t.TempDir(), "flow.db"), LogLevel: "silent"}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{DSN: "x.db"}
	cfg.ApplyDefaults()
	if cfg.Driver != DriverSQLite || cfg.MaxOpenConns != 10 || cfg.MaxRetries != 3 || cfg.LogLevel != "warn" || cfg.BusyTimeout != "5s" {
		t.Errorf("defaults = %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"driver", func(c *Config) { c.Driver = "oracle" }, "driver: must be sqlite"},
		{"dsn", func(c *Config) { c.DSN = "" }, "dsn: is required"},
		{"idle over open", func(c *Config) { c.MaxIdleConns = 20 }, "max_idle_conns: must not exceed max_open_conns"},
		{"lifetime", func(c *Config) { c.ConnMaxLifetime = "forever" }, "conn_max_lifetime: is not a valid duration"},
		{"log level", func(c *Config) { c.LogLevel = "verbose" }, "log_level: must be one of"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{DSN: "x.db"}
			cfg.ApplyDefaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("syntax error"), false},
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("database is locked"), true},
		{errors.New("Deadlock found"), true},
		{context.Canceled, false},
		{driver.ErrBadConn, true},
		{fmt.Errorf("insert: %w", sqlite3.Error{Code: sqlite3.ErrBusy}), true},
		{sqlite3.Error{Code: sqlite3.ErrConstraint}, false},
	}
	for _, tt := range tests {
		if got := IsRetryableError(tt.err); got != tt.want {
			t.Errorf("IsRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestNew_OpensAndMigrates(t *testing.T) {
	ctx := context.Background()
	db, err := New(ctx, testConfig(t), nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("PingContext() error: %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}
	// A second run has nothing to apply.
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate() error: %v", err)
	}
	if !db.GormDB.Migrator().HasTable(RecordsTable) {
		t.Fatal("records table missing after migration")
	}

	rec := Record{Channel: "out", TaskID: "t", AttemptID: "a", Seq: 1, Codec: "json", Payload: []byte(`["x"]`)}
	if err := db.WithContext(ctx).Create(&rec).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	if rec.ID == 0 {
		t.Error("expected generated id")
	}

	v, dirty, err := migration.MigrateVersion(db.GormDB, migrationsFS, "migrations", sqliteDriver)
	if err != nil || dirty || v != 1 {
		t.Errorf("MigrateVersion() = %d, %v, %v", v, dirty, err)
	}
	if err := migration.MigrateDown(db.GormDB, migrationsFS, "migrations", sqliteDriver); err != nil {
		t.Fatalf("MigrateDown() error: %v", err)
	}
	if db.GormDB.Migrator().HasTable(RecordsTable) {
		t.Error("records table should be dropped")
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	if _, err := New(context.Background(), Config{}, nil); err == nil {
		t.Fatal("expected error without DSN")
	}
}

func TestNew_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(ctx, testConfig(t), nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("New() = %v, want context.Canceled", err)
	}
}

func TestDB_CloseTwice(t *testing.T) {
	db, err := New(context.Background(), testConfig(t), nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	ctx := context.Background()
	comp := NewComponent("sink", testConfig(t), nil)

	if h := comp.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("Health() before start = %v", h.Status)
	}
	if err := comp.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if !comp.DB().GormDB.Migrator().HasTable(RecordsTable) {
		t.Error("Start should migrate the records table")
	}
	if h := comp.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("Health() = %+v", h)
	}
	if d := comp.Describe(); d.Type != "database" || !strings.Contains(d.Details, "driver=sqlite") {
		t.Errorf("Describe() = %+v", d)
	}
	if err := comp.Stop(ctx); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if comp.DB() != nil {
		t.Error("DB should be released after Stop")
	}
}

func TestComponent_SkipMigrations(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.SkipMigrations = true
	comp := NewComponent("sink", cfg, nil)
	if err := comp.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer comp.Stop(ctx)
	if comp.DB().GormDB.Migrator().HasTable(RecordsTable) {
		t.Error("records table should not exist with migrations skipped")
	}
	if !strings.Contains(comp.Describe().Details, "migrations=off") {
		t.Errorf("Describe() = %+v", comp.Describe())
	}
}

func TestGormLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug"}, "test", &buf)
	gl := newGormLogger(log, 10*time.Millisecond, gormlogger.Warn)
	ctx := context.Background()
	sql := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(ctx, time.Now(), sql, nil)
	if buf.Len() != 0 {
		t.Errorf("fast query logged at warn level: %s", buf.String())
	}
	gl.Trace(ctx, time.Now().Add(-time.Second), sql, nil)
	if !strings.Contains(buf.String(), `"slow":true`) {
		t.Errorf("slow query not logged: %s", buf.String())
	}
	buf.Reset()
	gl.Trace(ctx, time.Now(), sql, errors.New("no such table"))
	if !strings.Contains(buf.String(), "no such table") {
		t.Errorf("query error not logged: %s", buf.String())
	}

	buf.Reset()
	gl.LogMode(gormlogger.Silent).Trace(ctx, time.Now(), sql, errors.New("boom"))
	if buf.Len() != 0 {
		t.Errorf("silent logger wrote: %s", buf.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	for in, want := range map[string]gormlogger.LogLevel{
		"silent": gormlogger.Silent,
		"ERROR":  gormlogger.Error,
		"info":   gormlogger.Info,
		"":       gormlogger.Warn,
	} {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestWithBusyTimeout(t *testing.T) {
	tests := []struct {
		dsn     string
		timeout time.Duration
		want    string
	}{
		{"flow.db", 5 * time.Second, "flow.db?_busy_timeout=5000"},
		{"file:flow.db?cache=shared", time.Second, "file:flow.db?cache=shared&_busy_timeout=1000"},
		{"flow.db?_busy_timeout=50", time.Second, "flow.db?_busy_timeout=50"},
		{"flow.db", 0, "flow.db"},
	}
	for _, tt := range tests {
		if got := withBusyTimeout(tt.dsn, tt.timeout); got != tt.want {
			t.Errorf("withBusyTimeout(%q, %v) = %q, want %q", tt.dsn, tt.timeout, got, tt.want)
		}
	}
}
