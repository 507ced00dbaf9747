package storage

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps the list in process memory, lost on exit
type MemoryStore struct {
	mu      sync.Mutex
	entries []int
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.entries), nil
}

func (m *MemoryStore) Save(ctx context.Context, entries []int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = slices.Clone(entries)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
