// Package testing holds shared test fixtures.
package testing

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/teranos/provgraph/db"
)

// CreateTestDB creates a migrated in-memory SQLite database.
// Automatically registers cleanup via t.Cleanup().
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// A single connection keeps every query on the same :memory: database.
	conn, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err, "create test database")
	conn.SetMaxOpenConns(1)

	_, err = conn.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err, "enable foreign keys")

	require.NoError(t, db.Migrate(conn, nil), "migrate test database")

	t.Cleanup(func() {
		conn.Close()
	})
	return conn
}
