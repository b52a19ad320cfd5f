// Package memo provides a generic get-or-compute memoization map. Entries
// live until explicitly invalidated; there is no expiry. Failed computations
// are never stored, so a miss that errors is retried on the next access.
package memo

import "sync"

// Map memoizes computed values by key.
type Map[K comparable, V any] struct {
	mu   sync.Mutex
	data map[K]V

	hits   int64
	misses int64
}

// New creates an empty memoization map.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{data: make(map[K]V)}
}

// GetOrCompute returns the cached value for k, computing and storing it on a
// miss. compute runs outside the map lock; if it fails, nothing is stored and
// the error is returned as-is.
func (m *Map[K, V]) GetOrCompute(k K, compute func() (V, error)) (V, error) {
	m.mu.Lock()
	if v, ok := m.data[k]; ok {
		m.hits++
		m.mu.Unlock()
		return v, nil
	}
	m.misses++
	m.mu.Unlock()

	v, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}

	m.mu.Lock()
	m.data[k] = v
	m.mu.Unlock()
	return v, nil
}

// Get returns the cached value for k without computing.
func (m *Map[K, V]) Get(k K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[k]
	return v, ok
}

// Delete evicts one entry.
func (m *Map[K, V]) Delete(k K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, k)
}

// Clear evicts every entry. Counters are kept.
func (m *Map[K, V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[K]V)
}

// Len returns the number of cached entries.
func (m *Map[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// Stats returns the hit and miss counts since creation.
func (m *Map[K, V]) Stats() (hits, misses int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}
