// Package kv implements the durable local key-value store behind the alarm
// list.
//
// Two drivers are provided: FileStore keeps a JSON object on disk, the same
// shape a browser's local storage has, and SQLiteStore keeps a single table
// in an SQLite database migrated from the embedded scripts.
package kv
