package spline

import "fmt"

// DefaultHistorySize is the number of states kept in each direction.
const DefaultHistorySize = 20

// History is an undo/redo buffer of editing states.
//
// The most recent past state is the current one. Capturing a new state
// discards everything that could have been redone. Both directions are
// bounded; the oldest entries are dropped first.
type History[T any] struct {
	past   *Deque[T]
	future *Deque[T]
}

// NewHistory returns an empty history keeping at most maxlen states in each
// direction. A non-positive maxlen selects DefaultHistorySize.
func NewHistory[T any](maxlen int) *History[T] {
	if maxlen <= 0 {
		maxlen = DefaultHistorySize
	}
	return &History[T]{
		past:   NewDeque[T](maxlen),
		future: NewDeque[T](maxlen),
	}
}

// Len returns the number of past and future states.
func (h *History[T]) Len() int {
	return h.past.Len() + h.future.Len()
}

// Undoable reports whether there is a state before the current one.
func (h *History[T]) Undoable() bool {
	return h.past.Len() > 1
}

// Redoable reports whether an undone state can be restored.
func (h *History[T]) Redoable() bool {
	return h.future.Len() > 0
}

// Capture records state as the current one and clears the redo direction.
func (h *History[T]) Capture(state T) {
	h.future.Clear()
	h.past.PushBack(state)
}

// Retrieve returns the current state.
func (h *History[T]) Retrieve() (T, error) {
	v, ok := h.past.Back()
	if !ok {
		return v, ErrEmptyHistory
	}
	return v, nil
}

// Undo winds back one state and returns the new current state.
func (h *History[T]) Undo() (T, error) {
	if !h.Undoable() {
		var zero T
		return zero, fmt.Errorf("%w: %d past states", ErrNothingToUndo, h.past.Len())
	}
	current, _ := h.past.PopBack()
	h.future.PushFront(current)
	return h.Retrieve()
}

// Redo restores the most recently undone state and returns it.
func (h *History[T]) Redo() (T, error) {
	previous, ok := h.future.PopFront()
	if !ok {
		return previous, ErrNothingToRedo
	}
	h.past.PushBack(previous)
	return h.Retrieve()
}

// Clear drops all states.
func (h *History[T]) Clear() {
	h.past.Clear()
	h.future.Clear()
}
