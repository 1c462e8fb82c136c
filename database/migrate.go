package database

import (
	"context"
	"database/sql"
	"embed"

	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"

	"github.com/kbukum/dataflow/database/migration"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func sqliteDriver(db *sql.DB) (migratedb.Driver, error) {
	return sqlite3.WithInstance(db, &sqlite3.Config{})
}

// Migrate creates or upgrades the records table.
func (d *DB) Migrate(_ context.Context) error {
	if err := migration.MigrateUp(d.GormDB, migrationsFS, "migrations", sqliteDriver); err != nil {
		return err
	}
	v, _, err := migration.MigrateVersion(d.GormDB, migrationsFS, "migrations", sqliteDriver)
	if err != nil {
		return err
	}
	d.log.Info("Database schema up to date", map[string]interface{}{"version": v})
	return nil
}
