package modules

import (
	"github.com/pipelined/modular/module"
	"github.com/pipelined/modular/signal"
)

var attenuverterDescriptor = &module.Descriptor{
	Type:        AttenuverterType,
	Name:        "Attenuverter",
	Category:    module.Utility,
	Description: "Scales, inverts and offsets a control signal.",
	Ports: []module.Port{
		module.In("in", signal.Control, 0),
		module.Out("out", signal.Control),
	},
	Params: []module.Param{
		module.Range("amount", -1, 1, 1, ""),
		module.Range("offset", -1, 1, 0, ""),
	},
}

// Attenuverter computes in*amount + offset.
type Attenuverter struct{}

// NewAttenuverter returns an Attenuverter.
func NewAttenuverter() module.Module { return &Attenuverter{} }

// Descriptor implements module.Module.
func (m *Attenuverter) Descriptor() *module.Descriptor { return attenuverterDescriptor }

// Prepare implements module.Module.
func (m *Attenuverter) Prepare(float64, int) {}

// Reset implements module.Module.
func (m *Attenuverter) Reset() {}

// Process implements module.Module.
func (m *Attenuverter) Process(in, out []*signal.Buffer, params []float32, _ *module.Context) {
	amount, offset := params[0], params[1]
	for i, v := range in[0].Samples {
		out[0].Samples[i] = v*amount + offset
	}
}
