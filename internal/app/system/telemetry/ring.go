// Package telemetry keeps process-local analytics: page views, custom
// events and client-side errors, each in a bounded newest-first list.
package telemetry

import "sync"

// Ring is a bounded list that keeps the newest entries first.
// When Add pushes it past max, the oldest entries are dropped.
type Ring[T any] struct {
	mu    sync.Mutex
	items []T
	max   int
}

// NewRing creates a ring holding at most max entries. max < 1 is treated as 1.
func NewRing[T any](max int) *Ring[T] {
	if max < 1 {
		max = 1
	}
	return &Ring[T]{max: max, items: make([]T, 0, max)}
}

// Add prepends v and trims the tail to max.
func (r *Ring[T]) Add(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.items) < r.max {
		r.items = append(r.items, v)
	}
	// shift right by one; the last element falls off when full
	copy(r.items[1:], r.items[:len(r.items)-1])
	r.items[0] = v
}

// List returns a copy, newest first.
func (r *Ring[T]) List() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.items))
	copy(out, r.items)
	return out
}

// Len is the number of entries currently held.
func (r *Ring[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Clear drops every entry and keeps the capacity.
func (r *Ring[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = r.items[:0]
}
