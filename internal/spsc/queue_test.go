package spsc_test

import (
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/pipelined/modular/internal/spsc"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCapacity(t *testing.T) {
	tests := []struct {
		requested int
		expected  int
	}{
		{requested: 0, expected: 1},
		{requested: 1, expected: 1},
		{requested: 3, expected: 4},
		{requested: 1024, expected: 1024},
		{requested: 1025, expected: 2048},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, spsc.New[int](test.requested).Cap())
	}
}

func TestFullAndEmpty(t *testing.T) {
	q := spsc.New[int](4)
	_, ok := q.Pop()
	assert.False(t, ok)

	for i := 0; i < 4; i++ {
		assert.True(t, q.Push(i))
	}
	assert.Equal(t, 0, q.Free())
	assert.False(t, q.Push(4))
	assert.Equal(t, 4, q.Len())

	for i := 0; i < 4; i++ {
		v, ok := q.Pop()
		assert.True(t, ok)
		assert.Equal(t, i, v)
	}
	_, ok = q.Pop()
	assert.False(t, ok)
	assert.Equal(t, 4, q.Free())
}

func TestWrapAround(t *testing.T) {
	q := spsc.New[int](2)
	for i := 0; i < 100; i++ {
		assert.True(t, q.Push(i))
		v, ok := q.Pop()
		assert.True(t, ok)
		assert.Equal(t, i, v)
	}
}

func TestPopReleasesReferences(t *testing.T) {
	q := spsc.New[*int](2)
	v := 1
	q.Push(&v)
	p, ok := q.Pop()
	assert.True(t, ok)
	assert.Equal(t, &v, p)
	// the slot is reused and must not hand out the old pointer
	q.Push(nil)
	p, _ = q.Pop()
	assert.Nil(t, p)
}

func TestConcurrentOrder(t *testing.T) {
	const n = 100000
	q := spsc.New[int](64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; {
			if !q.Push(i) {
				runtime.Gosched()
				continue
			}
			i++
		}
	}()

	received := make([]int, 0, n)
	for len(received) < n {
		v, ok := q.Pop()
		if !ok {
			runtime.Gosched()
			continue
		}
		received = append(received, v)
	}
	wg.Wait()
	for i, v := range received {
		if v != i {
			t.Fatalf("item %d: got %d", i, v)
		}
	}
}

func TestNoAllocations(t *testing.T) {
	q := spsc.New[[4]float32](8)
	allocs := testing.AllocsPerRun(100, func() {
		q.Push([4]float32{1, 2, 3, 4})
		q.Pop()
	})
	assert.Equal(t, float64(0), allocs)
}
