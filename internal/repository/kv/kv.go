package kv

import (
	"context"
	"errors"
	"fmt"
)

// Store is a durable local key-value store holding string-like values.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Close releases the underlying resources.
	Close() error
}

// Supported drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

var (
	// ErrNotFound is returned when the key or the whole store does not exist yet.
	ErrNotFound = errors.New("key not found")
	// ErrUnknownDriver is returned by Open for drivers other than DriverFile and DriverSQLite.
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// Open creates the store for the given driver at path.
//
//nolint:ireturn // Callers pick the driver from configuration.
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverFile:
		return NewFileStore(path), nil
	case DriverSQLite:
		return OpenSQLiteStore(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
