package modules

import (
	"github.com/pipelined/modular/module"
	"github.com/pipelined/modular/signal"
)

// ADSR parameter indexes.
const (
	ADSRAttack = iota
	ADSRDecay
	ADSRSustain
	ADSRRelease
)

var adsrDescriptor = &module.Descriptor{
	Type:        ADSRType,
	Name:        "ADSR",
	Category:    module.Modulator,
	Description: "Linear attack, decay, sustain, release envelope.",
	Ports: []module.Port{
		module.In("gate", signal.Gate, 0),
		module.Out("out", signal.Control),
	},
	Params: []module.Param{
		module.Log("attack", 0.001, 10, 0.01, "s"),
		module.Log("decay", 0.001, 10, 0.1, "s"),
		module.Range("sustain", 0, 1, 0.7, ""),
		module.Log("release", 0.001, 10, 0.3, "s"),
	},
}

type stage uint8

const (
	idle stage = iota
	attack
	decay
	sustain
	release
)

// ADSR is an envelope generator triggered by its gate input.
type ADSR struct {
	sampleRate float64
	stage      stage
	level      float32
	// releaseStep is fixed when the release starts so the release
	// lasts the same time from any level.
	releaseStep float32
}

// NewADSR returns an ADSR.
func NewADSR() module.Module { return &ADSR{sampleRate: 44100} }

// Descriptor implements module.Module.
func (m *ADSR) Descriptor() *module.Descriptor { return adsrDescriptor }

// Prepare implements module.Module.
func (m *ADSR) Prepare(sampleRate float64, _ int) {
	m.sampleRate = sampleRate
}

// Reset implements module.Module.
func (m *ADSR) Reset() {
	m.stage = idle
	m.level = 0
	m.releaseStep = 0
}

func (m *ADSR) step(seconds float32) float32 {
	return float32(1 / (float64(seconds) * m.sampleRate))
}

// Process implements module.Module.
func (m *ADSR) Process(in, out []*signal.Buffer, params []float32, _ *module.Context) {
	attackStep := m.step(params[ADSRAttack])
	decayStep := m.step(params[ADSRDecay])
	sustainLevel := params[ADSRSustain]
	for i := range out[0].Samples {
		gate := in[0].Samples[i] >= 0.5
		switch {
		case gate && (m.stage == idle || m.stage == release):
			m.stage = attack
		case !gate && m.stage != idle && m.stage != release:
			m.stage = release
			m.releaseStep = m.level * m.step(params[ADSRRelease])
		}
		switch m.stage {
		case attack:
			m.level += attackStep
			if m.level >= 1 {
				m.level = 1
				m.stage = decay
			}
		case decay:
			m.level -= decayStep
			if m.level <= sustainLevel {
				m.level = sustainLevel
				m.stage = sustain
			}
		case sustain:
			m.level = sustainLevel
		case release:
			m.level -= m.releaseStep
			if m.level <= 0 {
				m.level = 0
				m.stage = idle
			}
		}
		out[0].Samples[i] = m.level
	}
}
