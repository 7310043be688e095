package localstore

import (
	"context"
	"sync"

	"github.com/erp/pos/internal/domain/shared"
)

// MemoryStore implements DurableStore using an in-memory map.
// Nothing survives a restart; it is meant for tests and as a fallback
// when the configured medium is unavailable.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string][]byte),
	}
}

// Get returns a copy of the value stored under key
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.entries[key]
	if !ok {
		return nil, shared.ErrStoreKeyNotFound
	}
	return append([]byte(nil), value...), nil
}

// Set overwrites the value stored under key
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes key
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}

// Size returns the number of entries in the store (for testing)
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Ensure MemoryStore implements DurableStore
var _ shared.DurableStore = (*MemoryStore)(nil)
