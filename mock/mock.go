// Package mock provides mock modules for engine and integration tests.
package mock

import (
	"github.com/pipelined/modular/module"
	"github.com/pipelined/modular/registry"
	"github.com/pipelined/modular/signal"
)

// Mock module types.
const (
	SourceType = "mock.source"
	CVType     = "mock.cv"
	PassType   = "mock.pass"
	SumType    = "mock.sum"
	GateType   = "mock.gate"
	MIDIType   = "mock.midi"
	SinkType   = "mock.sink"
)

// PassDefault is the value the pass input reads when unconnected.
const PassDefault = 0.25

// Registry returns a registry with all mock modules.
func Registry() *registry.Registry {
	r := registry.New()
	r.MustRegister(SourceType, NewSource)
	r.MustRegister(CVType, NewCV)
	r.MustRegister(PassType, NewPass)
	r.MustRegister(SumType, NewSum)
	r.MustRegister(GateType, NewGate)
	r.MustRegister(MIDIType, NewMIDI)
	r.MustRegister(SinkType, NewSink)
	return r
}

// counter counts blocks and samples.
type counter struct {
	blocks   int
	samples  int
	resets   int
	prepared bool
	maxBlock int
}

func (c *counter) advance(size int) {
	c.blocks++
	c.samples += size
}

// Count returns the number of processed blocks and samples.
func (c *counter) Count() (int, int) {
	return c.blocks, c.samples
}

// Resets returns how many times the module was reset.
func (c *counter) Resets() int {
	return c.resets
}

// Prepared reports whether Prepare was called and with which maximum
// block size.
func (c *counter) Prepared() (bool, int) {
	return c.prepared, c.maxBlock
}

// Prepare implements module.Module.
func (c *counter) Prepare(_ float64, maxBlockSize int) {
	c.prepared = true
	c.maxBlock = maxBlockSize
}

// Reset implements module.Module.
func (c *counter) Reset() {
	c.resets++
	c.blocks, c.samples = 0, 0
}

// Source writes its value parameter to every sample.
type Source struct {
	counter
}

var sourceDescriptor = &module.Descriptor{
	Type:     SourceType,
	Name:     "Mock source",
	Category: module.Source,
	Ports:    []module.Port{module.Out("out", signal.Audio)},
	Params:   []module.Param{module.Range("value", -1, 1, 0, "")},
}

// NewSource returns a Source.
func NewSource() module.Module { return &Source{} }

// Descriptor implements module.Module.
func (m *Source) Descriptor() *module.Descriptor { return sourceDescriptor }

// Process implements module.Module.
func (m *Source) Process(_, out []*signal.Buffer, params []float32, ctx *module.Context) {
	for i := range out[0].Samples {
		out[0].Samples[i] = params[0]
	}
	m.advance(ctx.BlockSize)
}

// CV is a Source with a control output.
type CV struct {
	Source
}

var cvDescriptor = &module.Descriptor{
	Type:     CVType,
	Name:     "Mock control voltage",
	Category: module.Source,
	Ports:    []module.Port{module.Out("out", signal.Control)},
	Params:   []module.Param{module.Range("value", -1, 1, 0, "")},
}

// NewCV returns a CV.
func NewCV() module.Module { return &CV{} }

// Descriptor implements module.Module.
func (m *CV) Descriptor() *module.Descriptor { return cvDescriptor }

// Pass copies its input to its output.
type Pass struct {
	counter
}

var passDescriptor = &module.Descriptor{
	Type:     PassType,
	Name:     "Mock pass",
	Category: module.Utility,
	Ports: []module.Port{
		module.In("in", signal.Audio, PassDefault),
		module.Out("out", signal.Audio),
	},
}

// NewPass returns a Pass.
func NewPass() module.Module { return &Pass{} }

// Descriptor implements module.Module.
func (m *Pass) Descriptor() *module.Descriptor { return passDescriptor }

// Process implements module.Module.
func (m *Pass) Process(in, out []*signal.Buffer, _ []float32, ctx *module.Context) {
	copy(out[0].Samples, in[0].Samples)
	m.advance(ctx.BlockSize)
}

// Sum adds its two inputs.
type Sum struct {
	counter
}

var sumDescriptor = &module.Descriptor{
	Type:     SumType,
	Name:     "Mock sum",
	Category: module.Utility,
	Ports: []module.Port{
		module.In("a", signal.Audio, 0),
		module.In("b", signal.Audio, 0),
		module.Out("out", signal.Audio),
	},
}

// NewSum returns a Sum.
func NewSum() module.Module { return &Sum{} }

// Descriptor implements module.Module.
func (m *Sum) Descriptor() *module.Descriptor { return sumDescriptor }

// Process implements module.Module.
func (m *Sum) Process(in, out []*signal.Buffer, _ []float32, ctx *module.Context) {
	for i := range out[0].Samples {
		out[0].Samples[i] = in[0].Samples[i] + in[1].Samples[i]
	}
	m.advance(ctx.BlockSize)
}

// Gate copies a gate input to a control output.
type Gate struct {
	counter
}

var gateDescriptor = &module.Descriptor{
	Type:     GateType,
	Name:     "Mock gate",
	Category: module.Utility,
	Ports: []module.Port{
		module.In("gate", signal.Gate, 0),
		module.Out("out", signal.Control),
	},
}

// NewGate returns a Gate.
func NewGate() module.Module { return &Gate{} }

// Descriptor implements module.Module.
func (m *Gate) Descriptor() *module.Descriptor { return gateDescriptor }

// Process implements module.Module.
func (m *Gate) Process(in, out []*signal.Buffer, _ []float32, ctx *module.Context) {
	copy(out[0].Samples, in[0].Samples)
	m.advance(ctx.BlockSize)
}

// MIDI emits injected events on its output and writes the number of
// events to every sample.
type MIDI struct {
	counter
	pending [8]signal.Event
	n       int
}

var midiDescriptor = &module.Descriptor{
	Type:     MIDIType,
	Name:     "Mock MIDI",
	Category: module.Source,
	Ports:    []module.Port{module.Out("out", signal.MIDI)},
}

// NewMIDI returns a MIDI.
func NewMIDI() module.Module { return &MIDI{} }

// Descriptor implements module.Module.
func (m *MIDI) Descriptor() *module.Descriptor { return midiDescriptor }

// ReceiveMIDI implements module.MIDIReceiver.
func (m *MIDI) ReceiveMIDI(e signal.Event) bool {
	if m.n == len(m.pending) {
		return false
	}
	m.pending[m.n] = e
	m.n++
	return true
}

// Process implements module.Module.
func (m *MIDI) Process(_, out []*signal.Buffer, _ []float32, ctx *module.Context) {
	out[0].Fill(float32(m.n))
	for i := 0; i < m.n; i++ {
		out[0].PushEvent(m.pending[i])
	}
	m.n = 0
	m.advance(ctx.BlockSize)
}

// Sink is a terminal module passing left and right inputs to the
// device output.
type Sink struct {
	counter
}

var sinkDescriptor = &module.Descriptor{
	Type:     SinkType,
	Name:     "Mock sink",
	Category: module.Sink,
	Ports: []module.Port{
		module.In("left", signal.Audio, 0),
		module.In("right", signal.Audio, 0),
		module.Out("left", signal.Audio),
		module.Out("right", signal.Audio),
	},
	Terminal: true,
}

// NewSink returns a Sink.
func NewSink() module.Module { return &Sink{} }

// Descriptor implements module.Module.
func (m *Sink) Descriptor() *module.Descriptor { return sinkDescriptor }

// Process implements module.Module.
func (m *Sink) Process(in, out []*signal.Buffer, _ []float32, ctx *module.Context) {
	copy(out[0].Samples, in[0].Samples)
	copy(out[1].Samples, in[1].Samples)
	m.advance(ctx.BlockSize)
}
