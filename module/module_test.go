package module_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pipelined/modular/module"
	"github.com/pipelined/modular/signal"
)

var desc = &module.Descriptor{
	Type: "test.desc",
	Ports: []module.Port{
		module.In("a", signal.Audio, 0),
		module.Out("x", signal.Audio),
		module.In("b", signal.Gate, 1),
		module.Out("y", signal.Control),
	},
	Params: []module.Param{
		module.Range("gain", 0, 2, 1, ""),
		module.Switch("on", true),
	},
}

func TestDescriptorSlots(t *testing.T) {
	assert.Equal(t, 2, desc.NumInputs())
	assert.Equal(t, 2, desc.NumOutputs())

	p, ok := desc.Port(module.Input, 1)
	assert.True(t, ok)
	assert.Equal(t, "b", p.Name)
	assert.Equal(t, float32(1), p.Default)

	p, ok = desc.Port(module.Output, 1)
	assert.True(t, ok)
	assert.Equal(t, "y", p.Name)

	_, ok = desc.Port(module.Output, 2)
	assert.False(t, ok)

	slot, ok := desc.Slot(module.Output, "y")
	assert.True(t, ok)
	assert.Equal(t, 1, slot)

	_, ok = desc.Slot(module.Input, "y")
	assert.False(t, ok)

	assert.Len(t, desc.Inputs(), 2)
	idx, ok := desc.Param("on")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	assert.Equal(t, []float32{1, 1}, desc.Defaults(make([]float32, 4)))
}

func TestParamClamp(t *testing.T) {
	tests := []struct {
		description string
		param       module.Param
		in          float32
		expected    float32
	}{
		{description: "in range", param: module.Range("p", 0, 1, 0.5, ""), in: 0.3, expected: 0.3},
		{description: "below", param: module.Range("p", 0, 1, 0.5, ""), in: -3, expected: 0},
		{description: "above", param: module.Log("f", 20, 20000, 440, "Hz"), in: 1e6, expected: 20000},
		{description: "nan", param: module.Range("p", 0, 1, 0.5, ""), in: float32(math.NaN()), expected: 0.5},
		{description: "discrete", param: module.Choice("w", 0, "sine", "saw", "square"), in: 1.4, expected: 1},
		{description: "toggle", param: module.Switch("t", false), in: 0.7, expected: 1},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, test.param.Clamp(test.in), test.description)
	}
}

func TestParamFormat(t *testing.T) {
	assert.Equal(t, "saw", module.Choice("w", 0, "sine", "saw").Format(1))
	assert.Equal(t, "on", module.Switch("t", false).Format(1))
	assert.Equal(t, "440 Hz", module.Log("f", 20, 20000, 440, "Hz").Format(440))
}

func TestDirection(t *testing.T) {
	d, ok := module.ParseDirection("output")
	assert.True(t, ok)
	assert.Equal(t, module.Output, d)
	_, ok = module.ParseDirection("sideways")
	assert.False(t, ok)
	assert.Equal(t, "in", module.Input.String())
}

func TestContext(t *testing.T) {
	ctx := &module.Context{SampleRate: 48000, BlockSize: 480, Position: 96000}
	assert.Equal(t, 10*time.Millisecond, ctx.BlockDuration())
	assert.Equal(t, float64(24000), ctx.Nyquist())
	assert.Equal(t, float64(2), ctx.Time())
}
