// Package ring provides a small fixed-capacity FIFO window used for the
// per-artwork value history and the per-user activity log. When the window
// overflows, the oldest entries are permanently discarded — this is a
// sliding window, not a circular buffer with index reuse.
package ring

import "encoding/json"

// Window holds the most recent entries up to a fixed capacity.
// A capacity of zero means unbounded; the normalizer always rebuilds
// windows with an explicit capacity before they reach the engine.
type Window[T any] struct {
	capacity int
	items    []T
}

// New creates a window with the given capacity, seeded with the provided
// entries (truncated to the most recent `capacity` if necessary).
func New[T any](capacity int, seed ...T) Window[T] {
	w := Window[T]{capacity: capacity}
	for _, v := range seed {
		w.Push(v)
	}
	return w
}

// Push appends an entry, dropping the oldest if the window is full.
func (w *Window[T]) Push(v T) {
	w.items = append(w.items, v)
	if w.capacity > 0 && len(w.items) > w.capacity {
		// Re-slice with copy so the discarded head can be collected.
		keep := make([]T, w.capacity)
		copy(keep, w.items[len(w.items)-w.capacity:])
		w.items = keep
	}
}

// Len returns the number of retained entries.
func (w Window[T]) Len() int { return len(w.items) }

// Capacity returns the configured maximum length.
func (w Window[T]) Capacity() int { return w.capacity }

// Items returns a copy of the retained entries, oldest first.
func (w Window[T]) Items() []T {
	out := make([]T, len(w.items))
	copy(out, w.items)
	return out
}

// First returns the oldest retained entry.
func (w Window[T]) First() (T, bool) {
	var zero T
	if len(w.items) == 0 {
		return zero, false
	}
	return w.items[0], true
}

// Last returns the most recent entry.
func (w Window[T]) Last() (T, bool) {
	var zero T
	if len(w.items) == 0 {
		return zero, false
	}
	return w.items[len(w.items)-1], true
}

// At returns the entry at index i (0 = oldest).
func (w Window[T]) At(i int) T { return w.items[i] }

// MarshalJSON encodes the window as a plain array, oldest first, so the
// persisted snapshot stays an opaque structural copy of the data.
func (w Window[T]) MarshalJSON() ([]byte, error) {
	if w.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(w.items)
}

// UnmarshalJSON decodes a plain array. Capacity is not part of the wire
// form; callers rebuild windows through the normalizer, which re-applies it.
func (w *Window[T]) UnmarshalJSON(data []byte) error {
	w.items = nil
	return json.Unmarshal(data, &w.items)
}
