// Package memory holds bounded histories of values.
package memory

// History keeps the most recent entries up to a fixed capacity.
// It is not safe for concurrent use.
type History[T any] struct {
	stream   []T
	capacity int
}

// NewHistory creates a history holding at most capacity entries.
// A negative capacity is treated as zero.
func NewHistory[T any](capacity int) *History[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &History[T]{
		stream:   make([]T, 0, capacity),
		capacity: capacity,
	}
}

// All returns a copy of the retained entries, oldest first
func (h *History[T]) All() []T {
	entries := make([]T, len(h.stream))
	copy(entries, h.stream)
	return entries
}

// Store appends v, evicting the oldest entry once capacity is exceeded
func (h *History[T]) Store(v T) {
	if h.capacity == 0 {
		return
	}
	if len(h.stream) == h.capacity {
		copy(h.stream, h.stream[1:])
		h.stream = h.stream[:len(h.stream)-1]
	}
	h.stream = append(h.stream, v)
}

// Len returns the number of retained entries
func (h *History[T]) Len() int {
	return len(h.stream)
}

func (h *History[T]) Capacity() int {
	return h.capacity
}
