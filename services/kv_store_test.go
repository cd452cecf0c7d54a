package services

import (
	"context"
	"encoding/json"
	"sync"
)

// memoryStore is an in-memory KVStore for tests, JSON round-tripping values
// the way the real store does.
type memoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string][]byte)}
}

func (m *memoryStore) Get(_ context.Context, key string, out any) error {
	m.mu.Lock()
	raw, ok := m.data[key]
	m.mu.Unlock()
	if !ok {
		return ErrKeyNotFound
	}
	return json.Unmarshal(raw, out)
}

func (m *memoryStore) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
	return nil
}
