// Package persist keeps client-only state (favorites, recently viewed jobs,
// applied jobs and the admin flag) in a durable key-value store.
package persist

import (
	"sync"
)

// Storage is a string keyed slot store with browser local-storage semantics.
type Storage interface {
	// GetItem returns the stored value and whether the key exists.
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// MemoryStorage is a Storage that lives for the lifetime of the process.
type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

// GetItem implements Storage.
func (m *MemoryStorage) GetItem(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

// SetItem implements Storage.
func (m *MemoryStorage) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

// RemoveItem implements Storage.
func (m *MemoryStorage) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}
