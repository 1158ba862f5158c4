package store

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// MemoryStore is the fixed-capacity in-memory tier. It holds at most N
// entries; inserting beyond capacity evicts the least-recently-used
// entry atomically. Get touches an entry as most-recently-used. There is
// no TTL at this tier -- entries live until evicted by LRU pressure or
// explicitly deleted.
//
// All operations are infallible at this tier: the underlying cache
// cannot itself report an I/O error, so every method here returns a nil
// error except Get's ErrNotFound.
type MemoryStore struct {
	cache *lru.Cache[string, []byte]
}

// NewMemoryStore creates a memory tier holding at most capacity entries.
func NewMemoryStore(capacity int) (*MemoryStore, error) {
	cache, err := lru.New[string, []byte](capacity)
	if err != nil {
		return nil, err
	}
	return &MemoryStore{cache: cache}, nil
}

func (m *MemoryStore) Get(key string) ([]byte, error) {
	value, ok := m.cache.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (m *MemoryStore) Put(key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	m.cache.Add(key, stored)
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.cache.Remove(key)
	return nil
}

// Len reports the current number of entries, used by tests asserting
// the LRU size invariant.
func (m *MemoryStore) Len() int {
	return m.cache.Len()
}
