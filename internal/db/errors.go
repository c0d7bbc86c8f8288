// internal/db/errors.go
package db

import (
	"errors"

	sqlite "github.com/mattn/go-sqlite3"
)

// IsUniqueConstraint reports whether err is a SQLite unique (or primary key)
// constraint violation, e.g. a booking_hours insert losing a slot race.
func IsUniqueConstraint(err error) bool {
	var sqliteErr sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite.ErrConstraintPrimaryKey
}
