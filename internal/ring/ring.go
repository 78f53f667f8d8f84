// Package ring provides the two bounded-list disciplines used by the
// snapshot tree: newest-first event logs and fixed-length sliding windows.
//
// Both containers are value types whose Push returns an updated copy backed
// by a fresh slice. Published snapshots therefore share no mutable backing
// arrays with their successors.
package ring

import "encoding/json"

// EventLog is a newest-first bounded log. Push prepends; once the length
// exceeds the capacity, the oldest (tail) entries are dropped.
type EventLog[T any] struct {
	items []T
	cap   int
}

// NewEventLog creates an empty EventLog with the given capacity.
func NewEventLog[T any](capacity int) EventLog[T] {
	if capacity < 1 {
		capacity = 1
	}
	return EventLog[T]{cap: capacity}
}

// Push prepends item and trims the tail to capacity.
func (l EventLog[T]) Push(item T) EventLog[T] {
	n := len(l.items) + 1
	if n > l.cap {
		n = l.cap
	}
	items := make([]T, n)
	items[0] = item
	copy(items[1:], l.items)
	return EventLog[T]{items: items, cap: l.cap}
}

// Items returns the entries, newest first. The returned slice must not be
// mutated by the caller.
func (l EventLog[T]) Items() []T {
	return l.items
}

// Len returns the number of entries.
func (l EventLog[T]) Len() int {
	return len(l.items)
}

// Cap returns the declared capacity.
func (l EventLog[T]) Cap() int {
	return l.cap
}

// MarshalJSON encodes the log as a plain array, newest first.
func (l EventLog[T]) MarshalJSON() ([]byte, error) {
	if l.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.items)
}

// SlidingWindow is a fixed-length series. Push appends; once the length
// exceeds the capacity, the oldest (head) entry is dropped.
type SlidingWindow[T any] struct {
	items []T
	cap   int
}

// NewSlidingWindow creates an empty SlidingWindow with the given capacity.
func NewSlidingWindow[T any](capacity int) SlidingWindow[T] {
	if capacity < 1 {
		capacity = 1
	}
	return SlidingWindow[T]{cap: capacity}
}

// Push appends item and drops the head if the window is over capacity.
func (w SlidingWindow[T]) Push(item T) SlidingWindow[T] {
	drop := 0
	if len(w.items)+1 > w.cap {
		drop = len(w.items) + 1 - w.cap
	}
	items := make([]T, 0, len(w.items)-drop+1)
	items = append(items, w.items[drop:]...)
	items = append(items, item)
	return SlidingWindow[T]{items: items, cap: w.cap}
}

// Items returns the entries, oldest first. The returned slice must not be
// mutated by the caller.
func (w SlidingWindow[T]) Items() []T {
	return w.items
}

// Len returns the number of entries.
func (w SlidingWindow[T]) Len() int {
	return len(w.items)
}

// Cap returns the declared capacity.
func (w SlidingWindow[T]) Cap() int {
	return w.cap
}

// MarshalJSON encodes the window as a plain array, oldest first.
func (w SlidingWindow[T]) MarshalJSON() ([]byte, error) {
	if w.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(w.items)
}
