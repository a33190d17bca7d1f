package modules

import (
	"github.com/pipelined/modular/module"
	"github.com/pipelined/modular/signal"
)

var sampleHoldDescriptor = &module.Descriptor{
	Type:        SampleHoldType,
	Name:        "Sample & Hold",
	Category:    module.Utility,
	Description: "Holds the input on every rising trigger.",
	Ports: []module.Port{
		module.In("in", signal.Control, 0),
		module.In("trigger", signal.Gate, 0),
		module.Out("out", signal.Control),
	},
}

// SampleHold samples its input on rising triggers.
type SampleHold struct {
	held    float32
	trigger edge
}

// NewSampleHold returns a SampleHold.
func NewSampleHold() module.Module { return &SampleHold{} }

// Descriptor implements module.Module.
func (m *SampleHold) Descriptor() *module.Descriptor { return sampleHoldDescriptor }

// Prepare implements module.Module.
func (m *SampleHold) Prepare(float64, int) {}

// Reset implements module.Module.
func (m *SampleHold) Reset() {
	m.held = 0
	m.trigger = edge{}
}

// Process implements module.Module.
func (m *SampleHold) Process(in, out []*signal.Buffer, _ []float32, _ *module.Context) {
	for i := range out[0].Samples {
		if m.trigger.rising(in[1].Samples[i]) {
			m.held = in[0].Samples[i]
		}
		out[0].Samples[i] = m.held
	}
}
