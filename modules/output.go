package modules

import (
	"math"

	"github.com/pipelined/modular/module"
	"github.com/pipelined/modular/signal"
)

// Output parameter indexes.
const (
	OutputVolume = iota
	OutputLimiter
)

var outputDescriptor = &module.Descriptor{
	Type:        OutputType,
	Name:        "Output",
	Category:    module.Sink,
	Description: "Stereo device output with volume and soft limiter.",
	Ports: []module.Port{
		module.In("left", signal.Audio, 0),
		module.In("right", signal.Audio, 0),
		module.In("mono", signal.Audio, 0),
		module.Out("left", signal.Audio),
		module.Out("right", signal.Audio),
	},
	Params: []module.Param{
		module.Range("volume", 0, 1, 0.8, ""),
		module.Switch("limiter", true),
	},
	Terminal: true,
}

// Output scales its inputs and passes them to the device. The mono
// input is added to both channels.
type Output struct{}

// NewOutput returns an Output.
func NewOutput() module.Module { return &Output{} }

// Descriptor implements module.Module.
func (m *Output) Descriptor() *module.Descriptor { return outputDescriptor }

// Prepare implements module.Module.
func (m *Output) Prepare(float64, int) {}

// Reset implements module.Module.
func (m *Output) Reset() {}

// Process implements module.Module.
func (m *Output) Process(in, out []*signal.Buffer, params []float32, _ *module.Context) {
	volume := params[OutputVolume]
	limit := params[OutputLimiter] >= 0.5
	left, right, mono := in[0].Samples, in[1].Samples, in[2].Samples
	for i := range out[0].Samples {
		l := (left[i] + mono[i]) * volume
		r := (right[i] + mono[i]) * volume
		if limit {
			l = float32(math.Tanh(float64(l)))
			r = float32(math.Tanh(float64(r)))
		}
		out[0].Samples[i] = l
		out[1].Samples[i] = r
	}
}
