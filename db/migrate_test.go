package db

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/provgraph/errors"
)

func migrated(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenWithMigrations(filepath.Join(t.TempDir(), "prov.db"), zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrationsOrdered(t *testing.T) {
	all, err := Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, all)
	assert.Equal(t, Migration{Version: "000", Filename: "000_create_schema_migrations.sql"}, all[0])
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Version, all[i].Version)
	}
}

func TestMigrateCreatesProvenanceTables(t *testing.T) {
	db := migrated(t)

	columns := map[string][]string{
		"artifacts":           {"id", "type_urn", "tags", "parent_frame", "transform", "attributes"},
		"operations":          {"id", "type_urn", "active", "attachments", "parameters"},
		"operation_artifacts": {"operation_id", "artifact_id", "direction"},
	}
	for table, want := range columns {
		rows, err := db.Query(fmt.Sprintf("SELECT name FROM pragma_table_info('%s')", table))
		require.NoError(t, err)
		var got []string
		for rows.Next() {
			var name string
			require.NoError(t, rows.Scan(&name))
			got = append(got, name)
		}
		rows.Close()
		for _, col := range want {
			assert.Contains(t, got, col, "%s.%s", table, col)
		}
	}

	versions, err := AppliedVersions(db)
	require.NoError(t, err)
	all, err := Migrations()
	require.NoError(t, err)
	assert.Len(t, versions, len(all))

	require.NoError(t, Migrate(db, nil), "second run applies nothing")
	again, err := AppliedVersions(db)
	require.NoError(t, err)
	assert.Equal(t, versions, again)
}

func TestOperationArtifactsConstraints(t *testing.T) {
	db := migrated(t)

	_, err := db.Exec(`INSERT INTO operations (id, type_urn) VALUES ('op1', 'urn:op:mill')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO operation_artifacts VALUES ('op1', 'A', 'input')`)
	require.NoError(t, err, "artifacts need not exist yet")

	_, err = db.Exec(`INSERT INTO operation_artifacts VALUES ('op1', 'B', 'sideways')`)
	assert.Error(t, err, "direction is input or output")

	_, err = db.Exec(`INSERT INTO operation_artifacts VALUES ('op9', 'B', 'output')`)
	assert.Error(t, err, "operation must exist")

	_, err = db.Exec(`DELETE FROM operations WHERE id = 'op1'`)
	require.NoError(t, err)
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM operation_artifacts`).Scan(&n))
	assert.Zero(t, n, "attachment index rows cascade with their operation")
}

func TestMigrateFailureNamesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prov.db")
	db, err := Open(path, nil)
	require.NoError(t, err)
	// type_urn is missing, so 001's index cannot be created
	_, err = db.Exec("CREATE TABLE artifacts (id TEXT)")
	require.NoError(t, err)
	db.Close()

	db, err = OpenWithMigrations(path, nil)
	require.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "001_create_artifacts.sql")
	assert.NotNil(t, errors.GetStack(err))
}

func TestApplyRollsBack(t *testing.T) {
	m := Migration{Version: "001", Filename: "001_create_artifacts.sql"}

	t.Run("statement fails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS artifacts").WillReturnError(errors.New("disk I/O error"))
		mock.ExpectRollback()

		err = apply(db, m)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "execute 001_create_artifacts.sql")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("version row fails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS artifacts").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO schema_migrations").WithArgs("001").WillReturnError(errors.New("constraint failed"))
		mock.ExpectRollback()

		err = apply(db, m)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "record 001_create_artifacts.sql")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("commits", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS artifacts").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO schema_migrations").WithArgs("001").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		require.NoError(t, apply(db, m))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMigrateClosedDatabase(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "prov.db"), nil)
	require.NoError(t, err)
	db.Close()

	err = Migrate(db, nil)
	require.Error(t, err)
	assert.True(t, IsDatabaseClosed(err))
}
