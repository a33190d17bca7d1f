package modules

import (
	"github.com/pipelined/modular/module"
	"github.com/pipelined/modular/signal"
)

var lfoDescriptor = &module.Descriptor{
	Type:        LFOType,
	Name:        "LFO",
	Category:    module.Modulator,
	Description: "Low frequency oscillator with phase reset.",
	Ports: []module.Port{
		module.In("reset", signal.Gate, 0),
		module.Out("out", signal.Control),
		module.Out("unipolar", signal.Control),
	},
	Params: []module.Param{
		module.Log("rate", 0.01, 50, 1, "Hz"),
		module.Choice("waveform", sine, waveforms...),
	},
}

// LFO renders a slow bipolar and unipolar waveform.
type LFO struct {
	sampleRate float64
	phase      float64
	reset      edge
}

// NewLFO returns an LFO.
func NewLFO() module.Module { return &LFO{sampleRate: 44100} }

// Descriptor implements module.Module.
func (m *LFO) Descriptor() *module.Descriptor { return lfoDescriptor }

// Prepare implements module.Module.
func (m *LFO) Prepare(sampleRate float64, _ int) {
	m.sampleRate = sampleRate
}

// Reset implements module.Module.
func (m *LFO) Reset() {
	m.phase = 0
	m.reset = edge{}
}

// Process implements module.Module.
func (m *LFO) Process(in, out []*signal.Buffer, params []float32, _ *module.Context) {
	inc := float64(params[0]) / m.sampleRate
	w := int(params[1])
	for i := range out[0].Samples {
		if m.reset.rising(in[0].Samples[i]) {
			m.phase = 0
		}
		v := wave(w, m.phase)
		out[0].Samples[i] = v
		out[1].Samples[i] = (v + 1) / 2
		m.phase = advance(m.phase, inc)
	}
}
