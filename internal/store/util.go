package store

import (
	"database/sql"
	"errors"
)

// isNoRows reports whether err is the sentinel sqlx/database-sql "no
// rows" error, used throughout this package to turn a missing singleton
// or upserted row into an explicit (zero-value, false) return instead of
// propagating a raw driver error to callers.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
