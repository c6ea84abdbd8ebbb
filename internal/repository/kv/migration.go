package kv

import (
	"fmt"
	"io/fs"
	"slices"
	"strconv"
	"strings"

	"crawshaw.io/sqlite"
	"crawshaw.io/sqlite/sqlitex"
)

// Migrate runs the *.sql scripts of fsys that the database has not seen yet.
// Scripts run in lexical order; the number of applied scripts is kept in
// "pragma user_version". Everything happens inside one savepoint.
func Migrate(conn *sqlite.Conn, fsys fs.FS) (err error) {
	release := sqlitex.Save(conn)
	defer release(&err)

	var applied int
	if err = sqlitex.ExecTransient(conn, "pragma user_version", func(stmt *sqlite.Stmt) error {
		applied = stmt.ColumnInt(0)
		return nil
	}); err != nil {
		return fmt.Errorf("get version: %w", err)
	}

	scripts, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return fmt.Errorf("list scripts: %w", err)
	}

	if applied >= len(scripts) {
		return nil
	}

	slices.Sort(scripts)

	for _, script := range scripts[applied:] {
		if err = runScript(conn, fsys, script); err != nil {
			return err
		}
	}

	if err = sqlitex.ExecTransient(conn, "pragma user_version="+strconv.Itoa(len(scripts)), nil); err != nil {
		return fmt.Errorf("set version: %w", err)
	}

	return nil
}

// runScript executes every statement of a single script.
func runScript(conn *sqlite.Conn, fsys fs.FS, script string) error {
	buf, err := fs.ReadFile(fsys, script)
	if err != nil {
		return fmt.Errorf("read %s: %w", script, err)
	}

	queries := strings.TrimSpace(string(buf))
	for i := 0; queries != ""; i++ {
		stmt, trailingBytes, err := conn.PrepareTransient(queries)
		if err != nil {
			return fmt.Errorf("prepare %s, stmt %d: %w", script, i, err)
		}

		queries = strings.TrimSpace(queries[len(queries)-trailingBytes:])

		_, err = stmt.Step()
		_ = stmt.Finalize()

		if err != nil {
			return fmt.Errorf("execute %s, stmt %d: %w", script, i, err)
		}
	}

	return nil
}
