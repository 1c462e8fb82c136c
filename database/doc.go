// Package database provides the GORM database behind table channels.
//
// New opens the pool with retries on transient connection failures; the
// Component additionally applies the embedded SQL migrations that create the
// records table. Table channels write Record rows inside one transaction per
// task attempt.
//
//	database:
//	  driver: "sqlite"
//	  dsn: "/var/lib/dataflow/out.db"
package database
