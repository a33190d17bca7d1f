package pool_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pipelined/modular/module"
	"github.com/pipelined/modular/pool"
	"github.com/pipelined/modular/signal"
)

var twoByOne = &module.Descriptor{
	Type: "test",
	Ports: []module.Port{
		module.In("a", signal.Audio, 0),
		module.Out("gate", signal.Gate),
		module.In("b", signal.Control, 0),
	},
}

func TestActivate(t *testing.T) {
	p := pool.New(4, 2, 2, 8, 4)
	assert.False(t, p.Active(1))
	p.Activate(1, twoByOne)
	assert.True(t, p.Active(1))

	assert.Len(t, p.Outputs(1), 1)
	assert.Len(t, p.Inputs(1), 2)
	assert.Equal(t, signal.Gate, p.Output(1, 0).Type)
	assert.Equal(t, signal.Control, p.Input(1, 1).Type)
	assert.Equal(t, 8, p.Output(1, 0).Len())

	p.Deactivate(1)
	assert.False(t, p.Active(1))
	assert.Empty(t, p.Outputs(1))
}

func TestSlotsDoNotAlias(t *testing.T) {
	p := pool.New(4, 2, 2, 8, 4)
	p.Activate(0, twoByOne)
	p.Activate(1, twoByOne)
	p.Output(0, 0).Fill(1)
	assert.Equal(t, float32(0), p.Output(1, 0).Samples[0])
	assert.NotSame(t, p.Output(0, 0), p.Output(1, 0))
}

func TestClearAll(t *testing.T) {
	p := pool.New(2, 2, 2, 4, 4)
	p.Activate(0, twoByOne)
	p.Output(0, 0).Fill(0.5)
	p.Output(0, 0).PushEvent(signal.Event{Kind: signal.NoteOn, Data1: 60, Data2: 1})
	p.ClearAll()
	assert.Equal(t, []float32{0, 0, 0, 0}, p.Output(0, 0).Samples)
	assert.Empty(t, p.Output(0, 0).Events)
}

func TestSetBlockSize(t *testing.T) {
	p := pool.New(2, 2, 2, 16, 4)
	p.Activate(0, twoByOne)
	p.SetBlockSize(4)
	assert.Equal(t, 4, p.BlockSize())
	assert.Equal(t, 4, p.Output(0, 0).Len())
	assert.Equal(t, 4, p.Input(0, 1).Len())

	// slots activated later pick up the current size
	p.Activate(1, twoByOne)
	assert.Equal(t, 4, p.Output(1, 0).Len())
	assert.Equal(t, 16, p.MaxBlockSize())
	assert.Panics(t, func() { p.SetBlockSize(17) })
}

func TestNoAllocations(t *testing.T) {
	p := pool.New(8, 4, 4, 64, 4)
	allocs := testing.AllocsPerRun(100, func() {
		p.Activate(3, twoByOne)
		p.SetBlockSize(32)
		p.ClearAll()
		p.SetBlockSize(64)
		p.Deactivate(3)
	})
	assert.Equal(t, float64(0), allocs)
}

func TestInputViews(t *testing.T) {
	p := pool.New(2, 2, 2, 4, 4)
	p.Activate(0, twoByOne)
	p.Activate(1, twoByOne)
	assert.Same(t, p.Input(1, 0), p.Inputs(1)[0])

	views := p.Inputs(1)
	views[0] = p.Output(0, 0)
	assert.Same(t, p.Output(0, 0), p.Inputs(1)[0])
	assert.NotSame(t, p.Output(0, 0), p.Input(1, 0))

	// activation points views back at the scratch buffers
	p.Activate(1, twoByOne)
	assert.Same(t, p.Input(1, 0), p.Inputs(1)[0])
}
