package kv

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"crawshaw.io/sqlite"
	"crawshaw.io/sqlite/sqlitex"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/repository/kv/migration"
)

// TestSQLiteStore_SetGet_Roundtrip ensures values persist across reopening the database.
func TestSQLiteStore_SetGet_Roundtrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.db")

	store, err := OpenSQLiteStore(path)
	require.NoError(t, err)

	_, err = store.Get(ctx, "alarms")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "alarms", []byte(`[{"id":"a"}]`)))
	require.NoError(t, store.Set(ctx, "alarms", []byte(`[{"id":"b"}]`)))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLiteStore(path)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, reopened.Close())
	}()

	got, err := reopened.Get(ctx, "alarms")
	require.NoError(t, err)
	require.Equal(t, `[{"id":"b"}]`, string(got))
}

// TestSQLiteStore_CanceledContext verifies that a canceled context interrupts the query.
func TestSQLiteStore_CanceledContext(t *testing.T) {
	t.Parallel()

	store, err := OpenSQLiteStore(":memory:")
	require.NoError(t, err)

	defer func() {
		_ = store.Close()
	}()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, store.Set(ctx, "alarms", []byte("[]")))
}

// TestMigrate applies scripts incrementally and skips non-SQL files.
func TestMigrate(t *testing.T) {
	t.Parallel()

	conn := mustOpenConn(t)

	// Empty filesystems don't trigger migration.
	fsys := make(fstest.MapFS, 3)
	require.NoError(t, Migrate(conn, fsys))
	require.Equal(t, 0, userVersion(t, conn))

	// First script triggers migration.
	fsys["0000.sql"] = &fstest.MapFile{Data: []byte("create table t1 (a text);")}
	require.NoError(t, Migrate(conn, fsys))
	require.Equal(t, 1, userVersion(t, conn))
	require.True(t, tableExists(t, conn, "t1"))

	// Scripts may hold several statements.
	fsys["0001.sql"] = &fstest.MapFile{Data: []byte("create table t2 (a text);\ncreate table t3 (a text);\n")}
	require.NoError(t, Migrate(conn, fsys))
	require.Equal(t, 2, userVersion(t, conn))
	require.True(t, tableExists(t, conn, "t2"))
	require.True(t, tableExists(t, conn, "t3"))

	// Non-SQL scripts don't trigger migration.
	fsys["0002.txt"] = &fstest.MapFile{Data: []byte("create table t4 (a text);")}
	require.NoError(t, Migrate(conn, fsys))
	require.Equal(t, 2, userVersion(t, conn))
	require.False(t, tableExists(t, conn, "t4"))
}

// TestMigrateScripts checks that the embedded schema applies cleanly.
func TestMigrateScripts(t *testing.T) {
	t.Parallel()

	conn := mustOpenConn(t)
	require.NoError(t, Migrate(conn, migration.Scripts))
	require.True(t, tableExists(t, conn, "kv"))
}

func mustOpenConn(tb testing.TB) *sqlite.Conn {
	tb.Helper()

	conn, err := sqlite.OpenConn(":memory:", 0)
	require.NoError(tb, err)

	tb.Cleanup(func() {
		require.NoError(tb, conn.Close())
	})

	return conn
}

func userVersion(tb testing.TB, conn *sqlite.Conn) int {
	tb.Helper()

	var got int

	require.NoError(tb, sqlitex.Exec(conn, "pragma user_version", func(stmt *sqlite.Stmt) error {
		got = stmt.ColumnInt(0)
		return nil
	}))

	return got
}

func tableExists(tb testing.TB, conn *sqlite.Conn, table string) bool {
	tb.Helper()

	var exists int

	require.NoError(tb, sqlitex.Exec(
		conn,
		"select count(*) from sqlite_master where type='table' and name=?",
		func(stmt *sqlite.Stmt) error {
			exists = stmt.ColumnInt(0)
			return nil
		},
		table,
	))

	return exists > 0
}
