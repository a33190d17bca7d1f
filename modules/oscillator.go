package modules

import (
	"math"

	"github.com/pipelined/modular/module"
	"github.com/pipelined/modular/signal"
)

// Oscillator parameter indexes.
const (
	OscFrequency = iota
	OscWaveform
	OscFMDepth
)

var oscillatorDescriptor = &module.Descriptor{
	Type:        OscillatorType,
	Name:        "Oscillator",
	Category:    module.Source,
	Description: "Audio oscillator with 1V/octave pitch and linear FM.",
	Ports: []module.Port{
		module.In("v_oct", signal.Control, 0),
		module.In("fm", signal.Audio, 0),
		module.Out("out", signal.Audio),
	},
	Params: []module.Param{
		module.Log("frequency", 20, 20000, 440, "Hz"),
		module.Choice("waveform", sine, waveforms...),
		module.Range("fm_depth", 0, 1000, 0, "Hz"),
	},
}

// Oscillator renders a periodic waveform.
type Oscillator struct {
	sampleRate float64
	phase      float64
}

// NewOscillator returns an Oscillator.
func NewOscillator() module.Module { return &Oscillator{sampleRate: 44100} }

// Descriptor implements module.Module.
func (m *Oscillator) Descriptor() *module.Descriptor { return oscillatorDescriptor }

// Prepare implements module.Module.
func (m *Oscillator) Prepare(sampleRate float64, _ int) {
	m.sampleRate = sampleRate
}

// Reset implements module.Module.
func (m *Oscillator) Reset() {
	m.phase = 0
}

// Process implements module.Module.
func (m *Oscillator) Process(in, out []*signal.Buffer, params []float32, ctx *module.Context) {
	voct, fm := in[0].Samples, in[1].Samples
	base := float64(params[OscFrequency])
	depth := float64(params[OscFMDepth])
	w := int(params[OscWaveform])
	nyquist := m.sampleRate / 2
	for i := range out[0].Samples {
		f := base
		if v := voct[i]; v != 0 {
			f *= math.Exp2(float64(v))
		}
		f += float64(fm[i]) * depth
		if f > nyquist {
			f = nyquist
		} else if f < -nyquist {
			f = -nyquist
		}
		out[0].Samples[i] = wave(w, m.phase)
		m.phase = advance(m.phase, f/m.sampleRate)
	}
}
