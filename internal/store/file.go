package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps all values in one JSON object on disk, rewritten on every Set.
type FileStore struct {
	mu       sync.Mutex
	filePath string
	values   map[string]string
}

// NewFileStore loads filePath. A missing or undecodable file yields an empty
// store; the next Set rewrites the file.
func NewFileStore(filePath string) (*FileStore, error) {
	values, err := loadValues(filePath)
	if err != nil {
		return nil, err
	}
	return &FileStore{filePath: filePath, values: values}, nil
}

// Get returns the value stored under key.
func (f *FileStore) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok, nil
}

// Set stores value under key and rewrites the file.
func (f *FileStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	return saveValues(f.filePath, f.values)
}

// Close is a no-op; every Set is already on disk.
func (f *FileStore) Close() error { return nil }

func loadValues(filePath string) (map[string]string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}
	values := map[string]string{}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		slog.Warn("state file is corrupt, starting empty", "path", filePath, "error", err)
		return map[string]string{}, nil
	}
	return values, nil
}

// saveValues replaces the state file atomically via rename.
func saveValues(filePath string, values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return os.Rename(tmp, filePath)
}
