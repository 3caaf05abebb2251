package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

// FileStore keeps all keys in a single JSON object on disk.
// Every Set rewrites the whole file via a temporary file and rename.
type FileStore struct {
	path   string
	mu     sync.Mutex
	closed bool
}

// NewFileStore creates a store backed by path. The file is created on first Set.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file location.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return "", false, ErrStoreClosed
	}

	values, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (f *FileStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrStoreClosed
	}

	values, err := f.read()
	if err != nil {
		return err
	}
	values[key] = value

	return f.write(values)
}

func (f *FileStore) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *FileStore) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	values := make(map[string]string)
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", f.path, err)
	}
	return values, nil
}

func (f *FileStore) write(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set settings permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
