package modules

import (
	"github.com/pipelined/modular/module"
	"github.com/pipelined/modular/signal"
)

// Delay parameter indexes.
const (
	DelayTime = iota
	DelayFeedback
	DelayMix
)

const maxDelaySeconds = 2

var delayDescriptor = &module.Descriptor{
	Type:        DelayType,
	Name:        "Delay",
	Category:    module.Effect,
	Description: "Feedback delay line.",
	Ports: []module.Port{
		module.In("in", signal.Audio, 0),
		module.Out("out", signal.Audio),
	},
	Params: []module.Param{
		module.Range("time", 0.001, maxDelaySeconds, 0.25, "s"),
		module.Range("feedback", 0, 0.95, 0.3, ""),
		module.Range("mix", 0, 1, 0.5, ""),
	},
}

// Delay mixes its input with a delayed copy. The line is allocated by
// Prepare.
type Delay struct {
	sampleRate float64
	line       []float32
	pos        int
}

// NewDelay returns a Delay.
func NewDelay() module.Module { return &Delay{sampleRate: 44100} }

// Descriptor implements module.Module.
func (m *Delay) Descriptor() *module.Descriptor { return delayDescriptor }

// Prepare implements module.Module.
func (m *Delay) Prepare(sampleRate float64, _ int) {
	m.sampleRate = sampleRate
	m.line = make([]float32, int(maxDelaySeconds*sampleRate)+1)
	m.pos = 0
}

// Reset implements module.Module.
func (m *Delay) Reset() {
	clear(m.line)
	m.pos = 0
}

// Process implements module.Module.
func (m *Delay) Process(in, out []*signal.Buffer, params []float32, _ *module.Context) {
	if len(m.line) == 0 {
		copy(out[0].Samples, in[0].Samples)
		return
	}
	d := int(float64(params[DelayTime])*m.sampleRate + 0.5)
	if d < 1 {
		d = 1
	}
	if d >= len(m.line) {
		d = len(m.line) - 1
	}
	feedback, mix := params[DelayFeedback], params[DelayMix]
	for i, x := range in[0].Samples {
		read := m.pos - d
		if read < 0 {
			read += len(m.line)
		}
		delayed := m.line[read]
		m.line[m.pos] = x + delayed*feedback
		m.pos++
		if m.pos == len(m.line) {
			m.pos = 0
		}
		out[0].Samples[i] = x*(1-mix) + delayed*mix
	}
}
