package kv

import (
	"context"
	"sync"
)

// Memory is a map-backed store. Values are copied on the way in and out so
// callers never share a buffer with it.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get returns a copy of the value under key, or nil when the key is absent.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value under key.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error { return nil }
