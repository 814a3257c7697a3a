// Package ring implements a growable circular buffer with a hard capacity
// ceiling. Capacity is always a power of two so index wrapping is a mask;
// when the buffer fills it doubles in place up to MaxCapacity, past which
// appends fail rather than silently dropping data.
package ring

import (
	"errors"
	"fmt"
)

// MaxCapacity is the hard ceiling on buffer capacity. Growing past it is an
// error, never a truncation.
const MaxCapacity = 1 << 16

var (
	// ErrOverflow is returned when an append would require growing past
	// MaxCapacity.
	ErrOverflow = errors.New("ring: buffer at maximum capacity")

	// ErrEmpty is returned by pop operations on an empty buffer.
	ErrEmpty = errors.New("ring: buffer is empty")
)

// Buffer is a circular store of T. The zero value is not usable; use New.
//
// start is the index of the oldest element, end the next write position, and
// count the number of stored elements. Full versus empty is disambiguated by
// count, never by comparing start and end.
type Buffer[T any] struct {
	data  []T
	start int
	end   int
	count int
}

// New creates a buffer with at least the given initial capacity, rounded up
// to a power of two. Initial capacities above MaxCapacity are rejected.
func New[T any](capacity int) (*Buffer[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("ring: capacity must be positive, got %d", capacity)
	}
	c := 1
	for c < capacity {
		c <<= 1
	}
	if c > MaxCapacity {
		return nil, fmt.Errorf("%w: requested %d exceeds %d", ErrOverflow, capacity, MaxCapacity)
	}
	return &Buffer[T]{data: make([]T, c)}, nil
}

// Len returns the number of stored elements.
func (b *Buffer[T]) Len() int { return b.count }

// Cap returns the current capacity.
func (b *Buffer[T]) Cap() int { return len(b.data) }

// Empty reports whether the buffer holds no elements.
func (b *Buffer[T]) Empty() bool { return b.count == 0 }

// Full reports whether the buffer is at capacity (it may still grow).
func (b *Buffer[T]) Full() bool { return b.count == len(b.data) }

// Append adds v after the newest element, growing the buffer if it is full.
// Returns ErrOverflow, leaving the buffer unchanged, if growth would exceed
// MaxCapacity.
func (b *Buffer[T]) Append(v T) error {
	if b.Full() {
		if err := b.grow(); err != nil {
			return err
		}
	}
	b.data[b.end] = v
	b.end = (b.end + 1) & (len(b.data) - 1)
	b.count++
	return nil
}

// grow doubles capacity, copying the two logical runs (start to physical end,
// then physical 0 to end) so logical order is preserved and start resets to 0.
func (b *Buffer[T]) grow() error {
	if len(b.data) >= MaxCapacity {
		return ErrOverflow
	}
	next := make([]T, len(b.data)*2)
	n := copy(next, b.data[b.start:])
	copy(next[n:], b.data[:b.end])
	b.data = next
	b.start = 0
	b.end = b.count
	return nil
}

// PopFront removes and returns the oldest element.
func (b *Buffer[T]) PopFront() (T, error) {
	var zero T
	if b.count == 0 {
		return zero, ErrEmpty
	}
	v := b.data[b.start]
	b.data[b.start] = zero
	b.start = (b.start + 1) & (len(b.data) - 1)
	b.count--
	return v, nil
}

// PopBack removes and returns the newest element.
func (b *Buffer[T]) PopBack() (T, error) {
	var zero T
	if b.count == 0 {
		return zero, ErrEmpty
	}
	b.end = (b.end - 1) & (len(b.data) - 1)
	v := b.data[b.end]
	b.data[b.end] = zero
	b.count--
	return v, nil
}

// Front returns the oldest element without removing it.
func (b *Buffer[T]) Front() (T, error) {
	var zero T
	if b.count == 0 {
		return zero, ErrEmpty
	}
	return b.data[b.start], nil
}

// Back returns the newest element without removing it.
func (b *Buffer[T]) Back() (T, error) {
	var zero T
	if b.count == 0 {
		return zero, ErrEmpty
	}
	return b.data[(b.end-1)&(len(b.data)-1)], nil
}

// At returns the element at logical index i, 0 being the oldest. The index
// must be in [0, Len()).
func (b *Buffer[T]) At(i int) T {
	return b.data[(b.start+i)&(len(b.data)-1)]
}

// Clear resets the buffer to empty without releasing storage.
func (b *Buffer[T]) Clear() {
	var zero T
	for i := range b.data {
		b.data[i] = zero
	}
	b.start, b.end, b.count = 0, 0, 0
}
