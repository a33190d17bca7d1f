package modules

import (
	"math"

	"github.com/pipelined/modular/module"
	"github.com/pipelined/modular/signal"
)

var filterDescriptor = &module.Descriptor{
	Type:        FilterType,
	Name:        "State variable filter",
	Category:    module.Filter,
	Description: "Two pole filter with lowpass, bandpass and highpass outputs.",
	Ports: []module.Port{
		module.In("in", signal.Audio, 0),
		module.In("cutoff_cv", signal.Control, 0),
		module.Out("lowpass", signal.Audio),
		module.Out("bandpass", signal.Audio),
		module.Out("highpass", signal.Audio),
	},
	Params: []module.Param{
		module.Log("cutoff", 20, 20000, 1000, "Hz"),
		module.Range("resonance", 0, 1, 0, ""),
	},
}

// Filter is a trapezoidal state variable filter. The cutoff input
// shifts the cutoff in octaves.
type Filter struct {
	sampleRate float64
	ic1, ic2   float64
}

// NewFilter returns a Filter.
func NewFilter() module.Module { return &Filter{sampleRate: 44100} }

// Descriptor implements module.Module.
func (m *Filter) Descriptor() *module.Descriptor { return filterDescriptor }

// Prepare implements module.Module.
func (m *Filter) Prepare(sampleRate float64, _ int) {
	m.sampleRate = sampleRate
}

// Reset implements module.Module.
func (m *Filter) Reset() {
	m.ic1, m.ic2 = 0, 0
}

// Process implements module.Module.
func (m *Filter) Process(in, out []*signal.Buffer, params []float32, _ *module.Context) {
	cutoff := float64(params[0])
	// k of 2 is no resonance, close to 0 self oscillates
	k := 2 - 1.95*float64(params[1])
	limit := m.sampleRate * 0.49
	lastCV := float32(math.NaN())
	var a1, a2, a3 float64
	for i := range out[0].Samples {
		if cv := in[1].Samples[i]; cv != lastCV {
			lastCV = cv
			fc := cutoff * math.Exp2(float64(cv))
			if fc > limit {
				fc = limit
			}
			g := math.Tan(math.Pi * fc / m.sampleRate)
			a1 = 1 / (1 + g*(g+k))
			a2 = g * a1
			a3 = g * a2
		}
		v0 := float64(in[0].Samples[i])
		v3 := v0 - m.ic2
		v1 := a1*m.ic1 + a2*v3
		v2 := m.ic2 + a2*m.ic1 + a3*v3
		m.ic1 = 2*v1 - m.ic1
		m.ic2 = 2*v2 - m.ic2
		out[0].Samples[i] = float32(v2)
		out[1].Samples[i] = float32(v1)
		out[2].Samples[i] = float32(v0 - k*v1 - v2)
	}
}
