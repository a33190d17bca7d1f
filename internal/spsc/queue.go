// Package spsc provides a bounded lock-free queue for exactly one
// producer goroutine and exactly one consumer goroutine.
package spsc

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// Queue is a ring buffer with a power of two capacity. Push must only
// be called by the producer and Pop only by the consumer. Neither
// blocks nor allocates.
type Queue[T any] struct {
	_ cpu.CacheLinePad
	// head is the next position to write. Owned by the producer.
	head atomic.Uint64
	// cachedTail is the producer's last view of tail.
	cachedTail uint64
	_          cpu.CacheLinePad
	// tail is the next position to read. Owned by the consumer.
	tail atomic.Uint64
	// cachedHead is the consumer's last view of head.
	cachedHead uint64
	_          cpu.CacheLinePad

	mask  uint64
	slots []T
}

// New returns a queue holding at least capacity items. Capacity is
// rounded up to the next power of two.
func New[T any](capacity int) *Queue[T] {
	n := 1
	for n < capacity {
		n <<= 1
	}
	return &Queue[T]{
		mask:  uint64(n - 1),
		slots: make([]T, n),
	}
}

// Cap returns the number of items the queue holds when full.
func (q *Queue[T]) Cap() int {
	return len(q.slots)
}

// Push appends v. It returns false and leaves the queue untouched when
// it is full.
func (q *Queue[T]) Push(v T) bool {
	h := q.head.Load()
	if h-q.cachedTail == uint64(len(q.slots)) {
		q.cachedTail = q.tail.Load()
		if h-q.cachedTail == uint64(len(q.slots)) {
			return false
		}
	}
	q.slots[h&q.mask] = v
	q.head.Store(h + 1)
	return true
}

// Pop removes the oldest item. The vacated slot is zeroed so the queue
// does not keep references alive.
func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	t := q.tail.Load()
	if t == q.cachedHead {
		q.cachedHead = q.head.Load()
		if t == q.cachedHead {
			return zero, false
		}
	}
	i := t & q.mask
	v := q.slots[i]
	q.slots[i] = zero
	q.tail.Store(t + 1)
	return v, true
}

// Free returns the number of items that can be pushed without failing.
// It is exact for the producer: concurrent pops only increase it.
func (q *Queue[T]) Free() int {
	return len(q.slots) - int(q.head.Load()-q.tail.Load())
}

// Len returns an approximate number of queued items.
func (q *Queue[T]) Len() int {
	return int(q.head.Load() - q.tail.Load())
}
