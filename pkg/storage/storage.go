// Package storage provides the small string key-value stores that hold
// promptly's persisted entries. Three back ends share the [Store] interface:
// an in-memory map, a JSON file and an SQLite database.
package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key has no entry.
var ErrNotFound = errors.New("storage: not found")

// ErrUnknownBackend is returned by Open for an unsupported back end name.
var ErrUnknownBackend = errors.New("storage: unknown backend")

// Store is a persistent string key-value store. Implementations are safe for
// concurrent use.
type Store interface {
	// Get returns the value stored under key or ErrNotFound.
	Get(key string) (string, error)
	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// Close releases the store's resources.
	Close() error
}

// Backend names a store implementation.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendFile   Backend = "file"
	BackendMemory Backend = "memory"
)

// Valid reports whether b names a known back end.
func (b Backend) Valid() bool {
	switch b {
	case BackendSQLite, BackendFile, BackendMemory:
		return true
	default:
		return false
	}
}

// Open creates the store for backend at path. The memory back end ignores
// path.
func Open(backend Backend, path string) (Store, error) {
	switch backend {
	case BackendSQLite:
		return OpenSQLite(path)
	case BackendFile:
		return OpenFile(path)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
