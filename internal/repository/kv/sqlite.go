package kv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"crawshaw.io/sqlite"
	"crawshaw.io/sqlite/sqlitex"

	"github.com/oshokin/alarm-clock/internal/repository/kv/migration"
)

// SQLiteStore keeps keys in a single-table SQLite database.
type SQLiteStore struct {
	// conn is the only connection to the database; the daemon is the only writer.
	conn *sqlite.Conn
	// mu serializes use of conn, which is not safe for concurrent use.
	mu sync.Mutex
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLiteStore opens (creating if needed) the database at path and
// brings its schema up to date.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	conn, err := sqlite.OpenConn(path, 0)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}

	if err = Migrate(conn, migration.Scripts); err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("migrate sqlite store: %w", err)
	}

	return &SQLiteStore{conn: conn}, nil
}

// Get reads the value stored under key.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer s.conn.SetInterrupt(s.conn.SetInterrupt(ctx.Done()))

	var (
		value []byte
		found bool
	)

	err := sqlitex.Exec(s.conn, "select value from kv where key = ?", func(stmt *sqlite.Stmt) error {
		value = []byte(stmt.ColumnText(0))
		found = true

		return nil
	}, key)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", key, err)
	}

	if !found {
		return nil, ErrNotFound
	}

	return value, nil
}

// Set stores value under key.
func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer s.conn.SetInterrupt(s.conn.SetInterrupt(ctx.Done()))

	err := sqlitex.Exec(
		s.conn,
		"insert into kv (key, value) values (?, ?) on conflict (key) do update set value = excluded.value",
		nil,
		key,
		string(value),
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.conn.Close()
}
