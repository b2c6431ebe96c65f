// Package store provides in-memory keyed stores.
package store

import (
	"sort"
	"sync"
)

// =============================================================================
// MEMORY STORE - In-memory keyed values (chat sessions)
// =============================================================================

// Memory holds values by string key. Values are copied in and out; callers
// never share mutable state through it.
type Memory[T any] struct {
	mu     sync.RWMutex
	values map[string]T
}

func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{values: make(map[string]T)}
}

// Load returns the value for key and whether it exists.
func (m *Memory[T]) Load(key string) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

// Save stores v under key, replacing any previous value.
func (m *Memory[T]) Save(key string, v T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = v
}

// Update applies fn to the current value (zero value if absent) under the
// write lock and stores the result.
func (m *Memory[T]) Update(key string, fn func(T) T) T {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := fn(m.values[key])
	m.values[key] = v
	return v
}

// Delete removes key. Returns false if it was not present.
func (m *Memory[T]) Delete(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[key]; !ok {
		return false
	}
	delete(m.values, key)
	return true
}

// Keys returns all keys, sorted.
func (m *Memory[T]) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *Memory[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
