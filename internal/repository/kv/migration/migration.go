// Package migration embeds the schema scripts of the SQLite key-value store.
package migration

import "embed"

// Scripts holds the numbered *.sql files applied by kv.Migrate.
//
//go:embed *.sql
var Scripts embed.FS
