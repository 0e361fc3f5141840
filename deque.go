package spline

import "iter"

// Deque is a double-ended queue with a fixed maximum length. Pushing onto a
// full deque evicts the element at the opposite end.
type Deque[T any] struct {
	buf  []T
	head int
	n    int
}

// NewDeque returns an empty deque holding at most maxlen elements. maxlen
// must be positive.
func NewDeque[T any](maxlen int) *Deque[T] {
	if maxlen <= 0 {
		panic("spline: deque length must be positive")
	}
	return &Deque[T]{buf: make([]T, maxlen)}
}

func (d *Deque[T]) Len() int { return d.n }

// Cap returns the maximum length.
func (d *Deque[T]) Cap() int { return len(d.buf) }

func (d *Deque[T]) index(i int) int {
	return (d.head + i) % len(d.buf)
}

// PushBack appends v, evicting the front element if the deque is full.
func (d *Deque[T]) PushBack(v T) {
	if d.n == len(d.buf) {
		d.PopFront()
	}
	d.buf[d.index(d.n)] = v
	d.n++
}

// PushFront prepends v, evicting the back element if the deque is full.
func (d *Deque[T]) PushFront(v T) {
	if d.n == len(d.buf) {
		d.PopBack()
	}
	d.head = (d.head - 1 + len(d.buf)) % len(d.buf)
	d.buf[d.head] = v
	d.n++
}

func (d *Deque[T]) PopBack() (T, bool) {
	var zero T
	if d.n == 0 {
		return zero, false
	}
	i := d.index(d.n - 1)
	v := d.buf[i]
	d.buf[i] = zero
	d.n--
	return v, true
}

func (d *Deque[T]) PopFront() (T, bool) {
	var zero T
	if d.n == 0 {
		return zero, false
	}
	v := d.buf[d.head]
	d.buf[d.head] = zero
	d.head = d.index(1)
	d.n--
	return v, true
}

func (d *Deque[T]) Back() (T, bool) {
	if d.n == 0 {
		var zero T
		return zero, false
	}
	return d.buf[d.index(d.n-1)], true
}

func (d *Deque[T]) Front() (T, bool) {
	if d.n == 0 {
		var zero T
		return zero, false
	}
	return d.buf[d.head], true
}

// Clear removes all elements.
func (d *Deque[T]) Clear() {
	clear(d.buf)
	d.head = 0
	d.n = 0
}

// All iterates from front to back.
func (d *Deque[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := range d.n {
			if !yield(d.buf[d.index(i)]) {
				return
			}
		}
	}
}
