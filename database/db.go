package database

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kbukum/dataflow/logger"
	"github.com/kbukum/dataflow/resilience"
)

// DB wraps a GORM database with dataflow logging.
type DB struct {
	GormDB *gorm.DB
	log    *logger.Logger
	cfg    Config
	closed bool
	mu     sync.Mutex
}

// New opens the sqlite database, retrying busy and connection failures, and
// sizes the pool.
func New(ctx context.Context, cfg Config, log *logger.Logger) (*DB, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("database config: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}

	gormCfg := &gorm.Config{
		Logger: newGormLogger(log, duration(cfg.SlowQueryThreshold), parseLogLevel(cfg.LogLevel)),
	}
	dsn := withBusyTimeout(cfg.DSN, duration(cfg.BusyTimeout))

	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = cfg.MaxRetries
	retry.InitialBackoff = time.Second
	retry.RetryIf = IsRetryableError
	retry.OnRetry = func(attempt int, err error, backoff time.Duration) {
		log.Warn("Database open failed, retrying", map[string]interface{}{
			"attempt":         attempt,
			logger.FieldError: err.Error(),
			"backoff":         backoff.String(),
		})
	}

	db, err := resilience.Retry(ctx, retry, func(ctx context.Context, _ int) (*gorm.DB, error) {
		return open(ctx, sqlite.Open(dsn), gormCfg)
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	d := &DB{GormDB: db, log: log, cfg: cfg}
	if err := d.configurePool(); err != nil {
		_ = d.Close()
		return nil, err
	}
	log.Info("Database opened", map[string]interface{}{
		"driver":         cfg.Driver,
		"max_open_conns": cfg.MaxOpenConns,
	})
	return d, nil
}

func open(ctx context.Context, d gorm.Dialector, gormCfg *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(d, gormCfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

func (d *DB) configurePool() error {
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(d.cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(d.cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(duration(d.cfg.ConnMaxLifetime))
	sqlDB.SetConnMaxIdleTime(duration(d.cfg.ConnMaxIdleTime))
	return nil
}

// withBusyTimeout adds the go-sqlite3 _busy_timeout parameter unless the DSN
// already sets one.
func withBusyTimeout(dsn string, timeout time.Duration) string {
	if timeout <= 0 || strings.Contains(dsn, "_busy_timeout=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_busy_timeout=%d", dsn, sep, timeout.Milliseconds())
}

// duration parses a validated duration string.
func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// Config returns the effective configuration.
func (d *DB) Config() Config { return d.cfg }

// Close closes the underlying connection pool. Safe to call multiple times.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return err
	}
	d.closed = true
	d.log.Debug("Closing database")
	return sqlDB.Close()
}

// PingContext verifies the database connection is alive.
func (d *DB) PingContext(ctx context.Context) error {
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// WithContext returns a GORM session scoped to ctx.
func (d *DB) WithContext(ctx context.Context) *gorm.DB {
	return d.GormDB.WithContext(ctx)
}
