package modules

import (
	"github.com/pipelined/modular/module"
	"github.com/pipelined/modular/signal"
)

var gainDescriptor = &module.Descriptor{
	Type:        GainType,
	Name:        "Gain",
	Category:    module.Utility,
	Description: "Voltage controlled amplifier.",
	Ports: []module.Port{
		module.In("in", signal.Audio, 0),
		module.In("cv", signal.Control, 1),
		module.Out("out", signal.Audio),
	},
	Params: []module.Param{
		module.Range("gain", 0, 2, 1, ""),
	},
}

// Gain multiplies its input by the gain parameter and the cv input.
type Gain struct{}

// NewGain returns a Gain.
func NewGain() module.Module { return &Gain{} }

// Descriptor implements module.Module.
func (m *Gain) Descriptor() *module.Descriptor { return gainDescriptor }

// Prepare implements module.Module.
func (m *Gain) Prepare(float64, int) {}

// Reset implements module.Module.
func (m *Gain) Reset() {}

// Process implements module.Module.
func (m *Gain) Process(in, out []*signal.Buffer, params []float32, _ *module.Context) {
	g := params[0]
	src, cv := in[0].Samples, in[1].Samples
	for i := range out[0].Samples {
		out[0].Samples[i] = src[i] * g * cv[i]
	}
}
