package symbols

import "sync"

// Memo is a set of compute-once cells keyed by owning symbol. Concurrent
// first reads of a key block until the single computation finishes.
//
// A computation may read other keys of the same Memo but must not depend on
// its own key.
type Memo[K comparable, V any] struct {
	mu    sync.Mutex
	cells map[K]*memoCell[V]
}

type memoCell[V any] struct {
	once  sync.Once
	value V
}

// Get returns the cached value of key, computing it on first use.
func (m *Memo[K, V]) Get(key K, compute func() V) V {
	m.mu.Lock()
	if m.cells == nil {
		m.cells = make(map[K]*memoCell[V])
	}
	cell, ok := m.cells[key]
	if !ok {
		cell = &memoCell[V]{}
		m.cells[key] = cell
	}
	m.mu.Unlock()

	cell.once.Do(func() { cell.value = compute() })
	return cell.value
}

// Len returns the number of cells created so far.
func (m *Memo[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cells)
}
