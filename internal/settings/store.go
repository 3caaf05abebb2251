// Package settings persists the connection record in a durable key-value store.
package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/orbit-drive/orbit/internal/config"
)

// ErrStoreClosed is returned by operations on a closed store.
var ErrStoreClosed = errors.New("settings store is closed")

// Store is a minimal durable key-value store.
type Store interface {
	// Get returns the value for key. found is false when the key was never written.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set overwrites the value for key.
	Set(ctx context.Context, key, value string) error

	Close() error
}

// OpenStore builds the backend selected by the [orbit.settings] section.
func OpenStore(cfg config.SettingsConfig) (Store, error) {
	switch cfg.Backend {
	case "", "file":
		path := cfg.Path
		if path == "" {
			path = config.DefaultSettingsPath()
		}
		return NewFileStore(path), nil
	case "redis":
		return NewRedisStore(cfg.RedisAddr, cfg.RedisDB)
	default:
		return nil, fmt.Errorf("unknown settings backend %q", cfg.Backend)
	}
}

// MemoryStore keeps values in process memory. Values do not survive a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
	closed bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, ErrStoreClosed
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
