package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultFilePermissions restricts the store file to its owner.
const DefaultFilePermissions = 0o600

// FileStore keeps every key in a single JSON object on disk, the way a
// browser keeps its local storage: keys map to string values.
type FileStore struct {
	// path is the filesystem location of the JSON document.
	path string
	// mu serializes read-modify-write cycles on the document.
	mu sync.Mutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store that reads/writes the JSON document at path.
// The file is created on the first Set.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: filepath.Clean(path),
	}
}

// Get reads the value stored under key.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	document, err := s.read()
	if err != nil {
		return nil, err
	}

	value, ok := document[key]
	if !ok {
		return nil, ErrNotFound
	}

	return []byte(value), nil
}

// Set stores value under key and rewrites the document.
// A document that cannot be decoded is replaced rather than patched.
func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	document, err := s.read()
	if err != nil {
		document = make(map[string]string, 1)
	}

	document[key] = string(value)

	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store file: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	// Write next to the target and rename, so a crash never leaves half a document.
	tmp := s.path + ".tmp"
	if err = os.WriteFile(tmp, data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}

	if err = os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}

	return nil
}

// Close is a no-op; the document is written on every Set.
func (s *FileStore) Close() error {
	return nil
}

// read loads the whole document. The caller holds mu.
func (s *FileStore) read() (map[string]string, error) {
	contents, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read store file: %w", err)
	}

	if len(contents) == 0 {
		return nil, ErrNotFound
	}

	var document map[string]string
	if err = json.Unmarshal(contents, &document); err != nil {
		return nil, fmt.Errorf("decode store file: %w", err)
	}

	return document, nil
}
