package status

import (
	"sort"
	"sync"
)

// MetricMap hands out stable pointers to metrics of type T keyed by name
// Writers cache the pointer once and update it without locking; the map lock only guards registration
type MetricMap[T any] struct {
	mu    sync.RWMutex
	items map[string]*T

	// Sorted key cache, rebuilt after a registration
	keys  []string
	dirty bool
}

func NewMetricMap[T any]() *MetricMap[T] {
	return &MetricMap[T]{
		items: make(map[string]*T),
	}
}

// Get returns the metric for key, registering a zero value on first use
func (m *MetricMap[T]) Get(key string) *T {
	m.mu.RLock()
	ptr, ok := m.items[key]
	m.mu.RUnlock()
	if ok {
		return ptr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if ptr, ok := m.items[key]; ok {
		return ptr
	}
	ptr = new(T)
	m.items[key] = ptr
	m.dirty = true
	return ptr
}

func (m *MetricMap[T]) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.items[key]
	return ok
}

// Keys returns registered names in sorted order
// The slice is shared until the next registration; callers must not modify it
func (m *MetricMap[T]) Keys() []string {
	m.mu.RLock()
	if !m.dirty {
		keys := m.keys
		m.mu.RUnlock()
		return keys
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dirty {
		keys := make([]string, 0, len(m.items))
		for k := range m.items {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m.keys = keys
		m.dirty = false
	}
	return m.keys
}

// Range visits every metric in key order
// fn must not register new keys on the same map
func (m *MetricMap[T]) Range(fn func(key string, ptr *T)) {
	keys := m.Keys()
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, k := range keys {
		fn(k, m.items[k])
	}
}

func (m *MetricMap[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
