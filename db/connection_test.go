package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/provgraph/errors"
)

func TestOpenPragmas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "line-3.db")
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	db, err := Open(path, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "Open creates the file")

	pragmas := []struct {
		name string
		want interface{}
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", int64(1)},
		{"busy_timeout", int64(SQLiteBusyTimeoutMS)},
	}
	for _, p := range pragmas {
		t.Run(p.name, func(t *testing.T) {
			var got interface{}
			require.NoError(t, db.QueryRow("PRAGMA "+p.name).Scan(&got))
			if s, ok := got.([]byte); ok {
				got = string(s)
			}
			assert.Equal(t, p.want, got)
		})
	}
}

func TestOpenInvalidPath(t *testing.T) {
	db, err := Open("/nonexistent/dir/provgraph.db", nil)
	require.Error(t, err)
	assert.Nil(t, db)
	assert.NotNil(t, errors.GetStack(err))
}

func TestIsDatabaseClosed(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "closed.db"), nil)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = db.Exec("SELECT 1")
	require.Error(t, err)
	assert.True(t, IsDatabaseClosed(err))
	assert.True(t, IsDatabaseClosed(errors.Wrap(ErrDatabaseClosed, "load artifact")))
	assert.False(t, IsDatabaseClosed(errors.New("no such table: artifacts")))
	assert.False(t, IsDatabaseClosed(nil))
}

func TestIsBusy(t *testing.T) {
	assert.True(t, IsBusy(errors.Wrap(sqlite3.Error{Code: sqlite3.ErrBusy}, "put artifact")))
	assert.True(t, IsBusy(sqlite3.Error{Code: sqlite3.ErrLocked}))
	assert.False(t, IsBusy(sqlite3.Error{Code: sqlite3.ErrConstraint}))
	assert.False(t, IsBusy(errors.New("database is locked")))
	assert.False(t, IsBusy(nil))
}
