package store

import (
	"github.com/patrickmn/go-cache"
)

// MemoryBackend keeps values in process memory
type MemoryBackend struct {
	items *cache.Cache
}

// NewMemory creates an empty in-memory backend
func NewMemory() *MemoryBackend {
	return &MemoryBackend{items: cache.New(cache.NoExpiration, 0)}
}

// Get implements Backend
func (m *MemoryBackend) Get(key string) ([]byte, bool, error) {
	v, ok := m.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v.([]byte)...), true, nil
}

// Put implements Backend
func (m *MemoryBackend) Put(key string, value []byte) error {
	m.items.Set(key, append([]byte(nil), value...), cache.NoExpiration)
	return nil
}

// Delete implements Backend
func (m *MemoryBackend) Delete(key string) error {
	m.items.Delete(key)
	return nil
}

// Close implements Backend
func (m *MemoryBackend) Close() error {
	m.items.Flush()
	return nil
}
