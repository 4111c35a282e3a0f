package ring

import "fmt"

// IndexError is the panic value raised when a Buffer is indexed outside its
// live window.
type IndexError struct {
	Index int
	Size  int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("ring: index %d out of range [0:%d]", e.Index, e.Size)
}

// Buffer is a fixed-capacity circular buffer. Once full, each Add overwrites
// the oldest element.
//
// Indexing runs from the oldest live element (0) to the most recent one
// (Size()-1). Every filter in this module relies on that convention.
type Buffer[T any] struct {
	items []T
	start int
	size  int
}

// New creates a buffer holding at most capacity elements. It panics if
// capacity is less than 1.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		panic(fmt.Sprintf("ring: invalid capacity %d", capacity))
	}
	return &Buffer[T]{items: make([]T, capacity)}
}

// Capacity returns the maximum number of live elements.
func (b *Buffer[T]) Capacity() int {
	return len(b.items)
}

// Size returns the number of live elements.
func (b *Buffer[T]) Size() int {
	return b.size
}

// Full reports whether the next Add will evict the oldest element.
func (b *Buffer[T]) Full() bool {
	return b.size == len(b.items)
}

// Add appends item as the most recent element, evicting the oldest one when
// the buffer is full.
func (b *Buffer[T]) Add(item T) {
	if b.size < len(b.items) {
		b.items[(b.start+b.size)%len(b.items)] = item
		b.size++
		return
	}
	b.items[b.start] = item
	b.start = (b.start + 1) % len(b.items)
}

// Get returns the i-th live element counting from the oldest. It panics with
// an *IndexError if i is not in [0, Size()).
func (b *Buffer[T]) Get(i int) T {
	return b.items[b.slot(i)]
}

// Set replaces the i-th live element counting from the oldest. It panics with
// an *IndexError if i is not in [0, Size()).
func (b *Buffer[T]) Set(i int, item T) {
	b.items[b.slot(i)] = item
}

// Latest returns the most recent element, or false if the buffer is empty.
func (b *Buffer[T]) Latest() (T, bool) {
	if b.size == 0 {
		var zero T
		return zero, false
	}
	return b.Get(b.size - 1), true
}

// Clear drops every live element without reallocating.
func (b *Buffer[T]) Clear() {
	var zero T
	for i := range b.items {
		b.items[i] = zero
	}
	b.start = 0
	b.size = 0
}

// AppendTo appends the live window, oldest first, to dst.
func (b *Buffer[T]) AppendTo(dst []T) []T {
	for i := 0; i < b.size; i++ {
		dst = append(dst, b.items[(b.start+i)%len(b.items)])
	}
	return dst
}

func (b *Buffer[T]) slot(i int) int {
	if i < 0 || i >= b.size {
		panic(&IndexError{Index: i, Size: b.size})
	}
	return (b.start + i) % len(b.items)
}
