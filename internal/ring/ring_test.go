package ring

import (
	"errors"
	"testing"
)

func TestAppendPopOrder(t *testing.T) {
	b, err := New[int](4)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		if err := b.Append(i); err != nil {
			t.Fatalf("Append(%d) error = %v", i, err)
		}
	}
	if b.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", b.Len())
	}
	for i := 0; i < 10; i++ {
		v, err := b.PopFront()
		if err != nil {
			t.Fatalf("PopFront() error = %v", err)
		}
		if v != i {
			t.Fatalf("PopFront() = %d, want %d", v, i)
		}
	}
	if !b.Empty() {
		t.Fatal("buffer not empty after draining")
	}
}

func TestSizeTracksAppendsMinusPops(t *testing.T) {
	b, _ := New[int](2)
	ops := 0
	for i := 0; i < 100; i++ {
		b.Append(i)
		ops++
		if i%3 == 0 {
			if _, err := b.PopFront(); err != nil {
				t.Fatalf("PopFront() error = %v", err)
			}
			ops--
		}
		if b.Len() != ops {
			t.Fatalf("Len() = %d after %d net appends", b.Len(), ops)
		}
	}
}

func TestGrowPreservesWrappedOrder(t *testing.T) {
	b, _ := New[int](4)
	// Wrap the buffer: fill, drain two, refill past the physical end.
	for i := 0; i < 4; i++ {
		b.Append(i)
	}
	b.PopFront()
	b.PopFront()
	b.Append(4)
	b.Append(5)
	if !b.Full() {
		t.Fatal("buffer should be full before growth")
	}
	before := b.Len()
	if err := b.Append(6); err != nil {
		t.Fatalf("Append() during growth error = %v", err)
	}
	if b.Len() != before+1 {
		t.Fatalf("Len() = %d after grow, want %d", b.Len(), before+1)
	}
	if b.Cap() != 8 {
		t.Fatalf("Cap() = %d after grow, want 8", b.Cap())
	}
	want := []int{2, 3, 4, 5, 6}
	for i, w := range want {
		if got := b.At(i); got != w {
			t.Fatalf("At(%d) = %d, want %d", i, got, w)
		}
	}
}

func TestPopBack(t *testing.T) {
	b, _ := New[int](4)
	b.Append(1)
	b.Append(2)
	v, err := b.PopBack()
	if err != nil {
		t.Fatalf("PopBack() error = %v", err)
	}
	if v != 2 {
		t.Fatalf("PopBack() = %d, want 2", v)
	}
	if front, _ := b.Front(); front != 1 {
		t.Fatalf("Front() = %d after PopBack, want 1", front)
	}
}

func TestEmptyErrors(t *testing.T) {
	b, _ := New[int](4)
	if _, err := b.PopFront(); !errors.Is(err, ErrEmpty) {
		t.Fatalf("PopFront() on empty error = %v, want ErrEmpty", err)
	}
	if _, err := b.PopBack(); !errors.Is(err, ErrEmpty) {
		t.Fatalf("PopBack() on empty error = %v, want ErrEmpty", err)
	}
	if _, err := b.Front(); !errors.Is(err, ErrEmpty) {
		t.Fatalf("Front() on empty error = %v, want ErrEmpty", err)
	}
}

func TestOverflowLeavesBufferUnchanged(t *testing.T) {
	b, _ := New[int](MaxCapacity)
	for i := 0; i < MaxCapacity; i++ {
		if err := b.Append(i); err != nil {
			t.Fatalf("Append(%d) error = %v", i, err)
		}
	}
	if err := b.Append(-1); !errors.Is(err, ErrOverflow) {
		t.Fatalf("Append() past ceiling error = %v, want ErrOverflow", err)
	}
	if b.Len() != MaxCapacity {
		t.Fatalf("Len() = %d after failed append, want %d", b.Len(), MaxCapacity)
	}
	if front, _ := b.Front(); front != 0 {
		t.Fatalf("Front() = %d after failed append, want 0", front)
	}
	if back, _ := b.Back(); back != MaxCapacity-1 {
		t.Fatalf("Back() = %d after failed append, want %d", back, MaxCapacity-1)
	}
}

func TestNewRejectsBadCapacities(t *testing.T) {
	if _, err := New[int](0); err == nil {
		t.Fatal("New(0) should fail")
	}
	if _, err := New[int](MaxCapacity + 1); !errors.Is(err, ErrOverflow) {
		t.Fatalf("New(MaxCapacity+1) error = %v, want ErrOverflow", err)
	}
	b, err := New[int](3)
	if err != nil {
		t.Fatalf("New(3) error = %v", err)
	}
	if b.Cap() != 4 {
		t.Fatalf("Cap() = %d, want next power of two 4", b.Cap())
	}
}

func TestClearRetainsCapacity(t *testing.T) {
	b, _ := New[int](4)
	for i := 0; i < 6; i++ {
		b.Append(i)
	}
	c := b.Cap()
	b.Clear()
	if b.Len() != 0 || !b.Empty() {
		t.Fatalf("Len() = %d after Clear, want 0", b.Len())
	}
	if b.Cap() != c {
		t.Fatalf("Cap() = %d after Clear, want %d", b.Cap(), c)
	}
	b.Append(42)
	if v, _ := b.Front(); v != 42 {
		t.Fatalf("Front() = %d after Clear+Append, want 42", v)
	}
}
