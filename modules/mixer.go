package modules

import (
	"github.com/pipelined/modular/module"
	"github.com/pipelined/modular/signal"
)

const mixerChannels = 4

var mixerDescriptor = &module.Descriptor{
	Type:        MixerType,
	Name:        "Mixer",
	Category:    module.Utility,
	Description: "Four channel mixer.",
	Ports: []module.Port{
		module.In("in1", signal.Audio, 0),
		module.In("in2", signal.Audio, 0),
		module.In("in3", signal.Audio, 0),
		module.In("in4", signal.Audio, 0),
		module.Out("out", signal.Audio),
	},
	Params: []module.Param{
		module.Range("level1", 0, 1, 1, ""),
		module.Range("level2", 0, 1, 1, ""),
		module.Range("level3", 0, 1, 1, ""),
		module.Range("level4", 0, 1, 1, ""),
		module.Range("master", 0, 1, 1, ""),
	},
}

// Mixer sums four inputs with individual levels.
type Mixer struct{}

// NewMixer returns a Mixer.
func NewMixer() module.Module { return &Mixer{} }

// Descriptor implements module.Module.
func (m *Mixer) Descriptor() *module.Descriptor { return mixerDescriptor }

// Prepare implements module.Module.
func (m *Mixer) Prepare(float64, int) {}

// Reset implements module.Module.
func (m *Mixer) Reset() {}

// Process implements module.Module.
func (m *Mixer) Process(in, out []*signal.Buffer, params []float32, _ *module.Context) {
	dst := out[0].Samples
	for i := range dst {
		var sum float32
		for c := 0; c < mixerChannels; c++ {
			sum += in[c].Samples[i] * params[c]
		}
		dst[i] = sum * params[mixerChannels]
	}
}
