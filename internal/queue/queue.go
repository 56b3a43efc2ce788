package queue

import (
	"sync"
)

// Deque is a generic thread-safe double-ended queue.
// Commands are consumed from the front; detour chains are prepended to the
// front as a single atomic operation relative to Pop.
type Deque[T any] struct {
	mu    sync.Mutex
	items []T
}

// New creates a new empty deque.
func New[T any]() *Deque[T] {
	return &Deque[T]{
		items: make([]T, 0),
	}
}

// Push appends items to the back of the deque.
func (q *Deque[T]) Push(items ...T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, items...)
}

// PushFront inserts items at the front of the deque, preserving their order:
// after PushFront(a, b, c) the next Pop returns a.
func (q *Deque[T]) PushFront(items ...T) {
	if len(items) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	merged := make([]T, 0, len(items)+len(q.items))
	merged = append(merged, items...)
	merged = append(merged, q.items...)
	q.items = merged
}

// Pop removes and returns the first item. Returns zero value if empty.
func (q *Deque[T]) Pop() T {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		var zero T
		return zero
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item
}

// Peek returns the first item without removing it. Returns zero value if empty.
func (q *Deque[T]) Peek() T {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		var zero T
		return zero
	}
	return q.items[0]
}

// Empty returns true if the deque has no items.
func (q *Deque[T]) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) == 0
}

// Len returns the number of items in the deque.
func (q *Deque[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Clear removes all items from the deque.
func (q *Deque[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = q.items[:0]
}

// GetAndEmpty returns all items and clears the deque.
func (q *Deque[T]) GetAndEmpty() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	result := q.items
	q.items = make([]T, 0, cap(q.items))
	return result
}
