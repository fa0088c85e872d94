package driver

import "sync"

// Worklist is a FIFO that holds each item at most once. It is safe for
// concurrent use.
type Worklist[T comparable] struct {
	mu     sync.Mutex
	items  []T
	queued map[T]struct{}
}

// NewWorklist creates an empty worklist.
func NewWorklist[T comparable]() *Worklist[T] {
	return &Worklist[T]{queued: make(map[T]struct{})}
}

// Enqueue appends item unless it is already waiting. It reports whether the
// item was added.
func (w *Worklist[T]) Enqueue(item T) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.queued[item]; ok {
		return false
	}
	w.queued[item] = struct{}{}
	w.items = append(w.items, item)
	return true
}

// Dequeue removes the oldest item. ok is false on an empty list.
func (w *Worklist[T]) Dequeue() (item T, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.items) == 0 {
		return item, false
	}
	item = w.items[0]
	var zero T
	w.items[0] = zero
	w.items = w.items[1:]
	delete(w.queued, item)
	return item, true
}

// Len returns the number of waiting items.
func (w *Worklist[T]) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.items)
}
