// Package modules contains the built-in module set.
package modules

import (
	"math"
	"sync"

	"github.com/pipelined/modular/registry"
)

// Built-in module types.
const (
	OscillatorType   = "osc"
	GainType         = "gain"
	MixerType        = "mixer"
	AttenuverterType = "attenuverter"
	LFOType          = "lfo"
	ADSRType         = "adsr"
	ClockType        = "clock"
	SampleHoldType   = "sample_hold"
	FilterType       = "svf"
	DelayType        = "delay"
	MIDIInputType    = "midi.input"
	MIDINoteType     = "midi.note"
	OutputType       = "output"
)

var (
	defaultOnce     sync.Once
	defaultRegistry *registry.Registry
)

// Default returns the process-wide registry of built-in modules. It is
// built on first use and must not be modified.
func Default() *registry.Registry {
	defaultOnce.Do(func() {
		r := registry.New()
		Register(r)
		defaultRegistry = r
	})
	return defaultRegistry
}

// Register adds the built-in modules to r.
func Register(r *registry.Registry) {
	r.MustRegister(OscillatorType, NewOscillator)
	r.MustRegister(GainType, NewGain)
	r.MustRegister(MixerType, NewMixer)
	r.MustRegister(AttenuverterType, NewAttenuverter)
	r.MustRegister(LFOType, NewLFO)
	r.MustRegister(ADSRType, NewADSR)
	r.MustRegister(ClockType, NewClock)
	r.MustRegister(SampleHoldType, NewSampleHold)
	r.MustRegister(FilterType, NewFilter)
	r.MustRegister(DelayType, NewDelay)
	r.MustRegister(MIDIInputType, NewMIDIInput)
	r.MustRegister(MIDINoteType, NewMIDINote)
	r.MustRegister(OutputType, NewOutput)
}

// Waveforms shared by oscillators.
const (
	sine = iota
	saw
	square
	triangle
)

var waveforms = []string{"sine", "saw", "square", "triangle"}

// wave returns the value of waveform w at phase in [0, 1).
func wave(w int, phase float64) float32 {
	switch w {
	case saw:
		return float32(2*phase - 1)
	case square:
		if phase < 0.5 {
			return 1
		}
		return -1
	case triangle:
		return float32(1 - 4*math.Abs(phase-0.5))
	default:
		return float32(math.Sin(2 * math.Pi * phase))
	}
}

// advance moves phase by inc and wraps it into [0, 1).
func advance(phase, inc float64) float64 {
	phase += inc
	if phase >= 1 || phase < 0 {
		phase -= math.Floor(phase)
	}
	return phase
}

// edge detects rising gates.
type edge struct {
	high bool
}

func (e *edge) rising(v float32) bool {
	high := v >= 0.5
	rising := high && !e.high
	e.high = high
	return rising
}
