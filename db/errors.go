package db

import (
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/teranos/provgraph/errors"
)

// ErrDatabaseClosed marks use of a store after its command closed the
// database, e.g. a late MCP request or schema reload.
var ErrDatabaseClosed = errors.New("database is closed")

// IsDatabaseClosed reports ErrDatabaseClosed and the driver's own
// "database is closed" errors, which carry no type to match on.
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDatabaseClosed) {
		return true
	}
	return strings.Contains(err.Error(), "database is closed")
}

// IsBusy reports whether SQLite gave up waiting on a lock held by another
// connection, typically an ingest running next to a long-lived reader.
func IsBusy(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
}
