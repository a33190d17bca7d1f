package modules

import (
	"github.com/pipelined/modular/module"
	"github.com/pipelined/modular/signal"
)

var clockDescriptor = &module.Descriptor{
	Type:        ClockType,
	Name:        "Clock",
	Category:    module.Source,
	Description: "Gate pulses at a fixed tempo.",
	Ports: []module.Port{
		module.In("reset", signal.Gate, 0),
		module.Out("gate", signal.Gate),
	},
	Params: []module.Param{
		module.Range("bpm", 20, 300, 120, "bpm"),
		module.Range("width", 0.01, 0.99, 0.5, ""),
	},
}

// Clock emits one gate per beat, high for width of the beat.
type Clock struct {
	sampleRate float64
	phase      float64
	reset      edge
}

// NewClock returns a Clock.
func NewClock() module.Module { return &Clock{sampleRate: 44100} }

// Descriptor implements module.Module.
func (m *Clock) Descriptor() *module.Descriptor { return clockDescriptor }

// Prepare implements module.Module.
func (m *Clock) Prepare(sampleRate float64, _ int) {
	m.sampleRate = sampleRate
}

// Reset implements module.Module.
func (m *Clock) Reset() {
	m.phase = 0
	m.reset = edge{}
}

// Process implements module.Module.
func (m *Clock) Process(in, out []*signal.Buffer, params []float32, _ *module.Context) {
	inc := float64(params[0]) / 60 / m.sampleRate
	width := float64(params[1])
	for i := range out[0].Samples {
		if m.reset.rising(in[0].Samples[i]) {
			m.phase = 0
		}
		if m.phase < width {
			out[0].Samples[i] = 1
		} else {
			out[0].Samples[i] = 0
		}
		m.phase = advance(m.phase, inc)
	}
}
