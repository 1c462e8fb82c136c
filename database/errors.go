package database

import (
	"database/sql/driver"
	"errors"

	"github.com/mattn/go-sqlite3"

	"github.com/kbukum/dataflow/resilience"
)

// lockMessages cover contention reported as text by other drivers.
var lockMessages = []string{
	"database is locked",
	"database table is locked",
	"deadlock",
	"lock timeout",
	"too many connections",
}

// IsConnectionError reports whether err is a transport-level failure or a
// connection the driver discarded.
func IsConnectionError(err error) bool {
	return errors.Is(err, driver.ErrBadConn) || resilience.IsTransportError(err)
}

// IsRetryableError reports whether an operation that failed with err may
// succeed when retried: SQLITE_BUSY and SQLITE_LOCKED, lock contention and
// lost connections.
func IsRetryableError(err error) bool {
	if err == nil || resilience.IsCanceled(err) {
		return false
	}
	var lite sqlite3.Error
	if errors.As(err, &lite) {
		return lite.Code == sqlite3.ErrBusy || lite.Code == sqlite3.ErrLocked
	}
	return IsConnectionError(err) || resilience.MessageContains(err, lockMessages...)
}
