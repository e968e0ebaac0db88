package cache

import (
	"context"
	"sync"
)

// MemoryFacility is a process-local Facility. It is what tests and single-process tools use
// in place of Redis.
type MemoryFacility struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryFacility creates an empty in-memory facility
func NewMemoryFacility() *MemoryFacility {
	return &MemoryFacility{values: make(map[string]string)}
}

func (m *MemoryFacility) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryFacility) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryFacility) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Len returns the number of stored keys.
func (m *MemoryFacility) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
