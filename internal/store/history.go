package store

import "signal-dashboard-go/internal/models"

// History is a bounded, ordered collection of recent signals, newest first.
// It is a ring buffer: the head insert is O(1) and once full every insert
// overwrites the oldest entry. It is not safe for concurrent use on its
// own; State serializes access.
type History struct {
	capacity int
	buf      []models.Signal
	head     int // index of the most recent signal
	size     int
}

// NewHistory creates an empty history bounded to the given capacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 50
	}
	return &History{
		capacity: capacity,
		buf:      make([]models.Signal, capacity),
	}
}

// PushFront inserts a signal at the head, evicting the oldest entry once
// the capacity is exceeded. Eviction is normal operation, not an error.
func (h *History) PushFront(s models.Signal) {
	h.head = (h.head - 1 + h.capacity) % h.capacity
	h.buf[h.head] = s
	if h.size < h.capacity {
		h.size++
	}
}

// Replace swaps in a full set of entries, truncating to capacity when the
// source returned more. Entries must be ordered newest first, matching the
// sink's history contract; truncation keeps the head of the slice.
func (h *History) Replace(entries []models.Signal) {
	if len(entries) > h.capacity {
		entries = entries[:h.capacity]
	}
	h.buf = make([]models.Signal, h.capacity)
	copy(h.buf, entries)
	h.head = 0
	h.size = len(entries)
}

// All returns a copy of the stored signals, newest first.
func (h *History) All() []models.Signal {
	out := make([]models.Signal, h.size)
	for i := 0; i < h.size; i++ {
		out[i] = h.buf[(h.head+i)%h.capacity]
	}
	return out
}

// CountWhere returns how many stored signals satisfy the predicate.
func (h *History) CountWhere(pred func(models.Signal) bool) int {
	count := 0
	for i := 0; i < h.size; i++ {
		if pred(h.buf[(h.head+i)%h.capacity]) {
			count++
		}
	}
	return count
}

// Len returns the number of stored signals.
func (h *History) Len() int {
	return h.size
}

// Capacity returns the configured bound.
func (h *History) Capacity() int {
	return h.capacity
}
