package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File is a Store persisted as a single JSON object. Every write replaces the
// file atomically.
type File struct {
	mu       sync.RWMutex
	data     map[string]string
	filePath string
}

// OpenFile creates a File store backed by path. Existing entries are loaded
// immediately; a missing file starts empty.
func OpenFile(path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve path: %w", err)
	}

	f := &File{
		data:     make(map[string]string),
		filePath: abs,
	}

	if err := f.load(); err != nil {
		return nil, err
	}

	return f, nil
}

func (f *File) Get(key string) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	v, ok := f.data[key]
	if !ok {
		return "", ErrNotFound
	}

	return v, nil
}

func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.data[key] = value

	return f.persist()
}

func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.data[key]; !ok {
		return nil
	}

	delete(f.data, key)

	return f.persist()
}

// Close is a no-op; every write is already on disk.
func (f *File) Close() error { return nil }

// --- persistence ---

func (f *File) load() error {
	data, err := os.ReadFile(f.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("storage: read file: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	if err := json.Unmarshal(trimmed, &f.data); err != nil {
		return fmt.Errorf("storage: parse file: %w", err)
	}

	if f.data == nil {
		f.data = make(map[string]string)
	}

	return nil
}

// persist writes the entries to disk. Must be called while f.mu is held so
// concurrent writers cannot reorder renames.
func (f *File) persist() error {
	data, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: marshal: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.filePath), 0o750); err != nil {
		return fmt.Errorf("storage: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.filePath), ".state-*.tmp")
	if err != nil {
		return fmt.Errorf("storage: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName) //nolint:gosec // tmpName comes from os.CreateTemp in a known directory
		return fmt.Errorf("storage: write temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName) //nolint:gosec // tmpName comes from os.CreateTemp in a known directory
		return fmt.Errorf("storage: close temp file: %w", err)
	}

	if err := os.Rename(tmpName, f.filePath); err != nil { //nolint:gosec // tmpName comes from os.CreateTemp in a known directory
		_ = os.Remove(tmpName) //nolint:gosec // tmpName comes from os.CreateTemp in a known directory
		return fmt.Errorf("storage: rename temp file: %w", err)
	}

	return nil
}
