package database

import (
	"context"
	"fmt"

	"github.com/kbukum/dataflow/component"
	"github.com/kbukum/dataflow/logger"
)

// Component owns the connection pool of a table channel.
type Component struct {
	*component.Managed[*DB]
}

// NewComponent creates a database component named name. Start opens the
// pool and, unless SkipMigrations is set, migrates the records table.
func NewComponent(name string, cfg Config, log *logger.Logger) *Component {
	if log == nil {
		log = logger.Nop()
	}
	cfg.ApplyDefaults()
	log = log.WithComponent("database")

	return &Component{component.NewManaged(name, component.Backend[*DB]{
		Open: func(ctx context.Context) (*DB, error) {
			db, err := New(ctx, cfg, log)
			if err != nil {
				return nil, fmt.Errorf("database start: %w", err)
			}
			if cfg.SkipMigrations {
				return db, nil
			}
			if err := db.Migrate(ctx); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("database migrate: %w", err)
			}
			return db, nil
		},
		Close: (*DB).Close,
		Probe: func(ctx context.Context, db *DB) error {
			if err := db.PingContext(ctx); err != nil {
				return fmt.Errorf("ping failed: %w", err)
			}
			return nil
		},
		Describe: func() component.Description {
			details := fmt.Sprintf("driver=%s pool=%d/%d", cfg.Driver, cfg.MaxOpenConns, cfg.MaxIdleConns)
			if cfg.SkipMigrations {
				details += " migrations=off"
			}
			return component.Description{Name: "Database", Type: "database", Details: details}
		},
	})}
}

// DB returns the open pool, or nil outside Start/Stop.
func (c *Component) DB() *DB {
	db, _ := c.Handle()
	return db
}
