package modules_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/gomidi/midi/v2"

	"github.com/pipelined/modular/module"
	"github.com/pipelined/modular/modules"
	"github.com/pipelined/modular/signal"
)

// rig drives a single module with its port defaults.
type rig struct {
	m       module.Module
	in, out []*signal.Buffer
	params  []float32
	ctx     module.Context
}

func newRig(m module.Module, sampleRate float64, n int) *rig {
	d := m.Descriptor()
	r := &rig{
		m:      m,
		params: d.Defaults(make([]float32, len(d.Params))),
		ctx:    module.Context{SampleRate: sampleRate, BlockSize: n, Transport: module.Playing},
	}
	for _, p := range d.Ports {
		b := signal.NewBuffer(p.Type, n, signal.MaxEvents)
		if p.Direction == module.Input {
			b.Fill(p.Default)
			r.in = append(r.in, b)
		} else {
			r.out = append(r.out, b)
		}
	}
	m.Prepare(sampleRate, n)
	return r
}

func (r *rig) process() {
	for _, b := range r.out {
		b.Clear()
	}
	r.m.Process(r.in, r.out, r.params, &r.ctx)
}

func TestDefault(t *testing.T) {
	r := modules.Default()
	assert.Same(t, r, modules.Default())
	types := []string{
		modules.OscillatorType,
		modules.GainType,
		modules.MixerType,
		modules.AttenuverterType,
		modules.LFOType,
		modules.ADSRType,
		modules.ClockType,
		modules.SampleHoldType,
		modules.FilterType,
		modules.DelayType,
		modules.MIDIInputType,
		modules.MIDINoteType,
		modules.OutputType,
	}
	assert.Equal(t, len(types), r.Len())
	for _, typeID := range types {
		d, err := r.Describe(typeID)
		assert.NoError(t, err)
		assert.Equal(t, typeID, d.Type)
		for _, p := range d.Params {
			assert.Equal(t, p.Default, p.Clamp(p.Default), "%s %s default out of range", typeID, p.Name)
		}
	}
}

func TestNoAllocations(t *testing.T) {
	r := modules.Default()
	for _, typeID := range r.Types() {
		m, err := r.Create(typeID)
		assert.NoError(t, err)
		rig := newRig(m, 44100, 64)
		allocs := testing.AllocsPerRun(20, rig.process)
		assert.Equal(t, float64(0), allocs, typeID)
	}
}

func TestOscillator(t *testing.T) {
	r := newRig(modules.NewOscillator(), 44100, 100)
	r.params[modules.OscFrequency] = 441
	r.process()
	out := r.out[0].Samples
	assert.InDelta(t, 0, out[0], 1e-6)
	assert.InDelta(t, 1, out[25], 1e-3)
	assert.InDelta(t, -1, out[75], 1e-3)

	// one volt doubles the frequency
	r.m.Reset()
	r.in[0].Fill(1)
	r.process()
	assert.InDelta(t, 0, out[25], 1e-3)
	assert.InDelta(t, -1, out[37], 2e-2)

	r.m.Reset()
	r.in[0].Fill(0)
	r.params[modules.OscWaveform] = 1
	r.process()
	assert.InDelta(t, -1, out[0], 1e-6)
	assert.InDelta(t, 0, out[50], 1e-3)
}

func TestOscillatorDeterministic(t *testing.T) {
	render := func() []float32 {
		r := newRig(modules.NewOscillator(), 44100, 4)
		var all []float32
		for i := 0; i < 16; i++ {
			r.process()
			all = append(all, r.out[0].Samples...)
		}
		return all
	}
	assert.Equal(t, render(), render())
}

func TestGainMixerAttenuverter(t *testing.T) {
	gain := newRig(modules.NewGain(), 44100, 4)
	gain.in[0].Fill(0.5)
	gain.params[0] = 2
	gain.process()
	assert.Equal(t, []float32{1, 1, 1, 1}, gain.out[0].Samples)
	gain.in[1].Fill(0)
	gain.process()
	assert.Equal(t, []float32{0, 0, 0, 0}, gain.out[0].Samples)

	mixer := newRig(modules.NewMixer(), 44100, 4)
	for i, v := range []float32{0.125, 0.25, 0.5, 1} {
		mixer.in[i].Fill(v)
	}
	mixer.params[3] = 0
	mixer.params[4] = 0.5
	mixer.process()
	assert.Equal(t, float32(0.4375), mixer.out[0].Samples[0])

	att := newRig(modules.NewAttenuverter(), 44100, 4)
	att.in[0].Fill(0.5)
	att.params[0] = -1
	att.params[1] = 0.25
	att.process()
	assert.Equal(t, float32(-0.25), att.out[0].Samples[3])
}

func TestLFO(t *testing.T) {
	r := newRig(modules.NewLFO(), 1000, 1000)
	r.params[0] = 2
	r.process()
	for i, v := range r.out[1].Samples {
		assert.True(t, v >= 0 && v <= 1, "unipolar sample %d: %v", i, v)
	}
	assert.InDelta(t, 1, r.out[0].Samples[125], 1e-3)

	// a rising reset restarts the cycle
	r.in[0].Samples[10] = 1
	r.process()
	assert.InDelta(t, 0, r.out[0].Samples[10], 1e-6)
}

func TestADSR(t *testing.T) {
	r := newRig(modules.NewADSR(), 1000, 100)
	r.params[modules.ADSRAttack] = 0.01
	r.params[modules.ADSRDecay] = 0.1
	r.params[modules.ADSRSustain] = 0.7
	r.params[modules.ADSRRelease] = 0.05

	r.in[0].Fill(1)
	r.process()
	out := r.out[0].Samples
	assert.InDelta(t, 0.1, out[0], 1e-6)
	assert.InDelta(t, 1, out[10], 0.02)
	assert.Equal(t, float32(0.7), out[99])

	r.in[0].Fill(0)
	r.process()
	assert.Less(t, out[0], float32(0.7))
	assert.Equal(t, float32(0), out[99])

	r.in[0].Fill(1)
	r.m.Reset()
	r.process()
	assert.InDelta(t, 0.1, out[0], 1e-6)
}

func TestClock(t *testing.T) {
	r := newRig(modules.NewClock(), 1000, 1000)
	r.process()
	out := r.out[0].Samples
	assert.Equal(t, float32(1), out[0])
	assert.Equal(t, float32(1), out[240])
	assert.Equal(t, float32(0), out[260])
	assert.Equal(t, float32(1), out[510])
}

func TestSampleHold(t *testing.T) {
	r := newRig(modules.NewSampleHold(), 1000, 8)
	for i := range r.in[0].Samples {
		r.in[0].Samples[i] = float32(i)
	}
	r.in[1].Samples[2] = 1
	r.in[1].Samples[3] = 1
	r.in[1].Samples[6] = 1
	r.process()
	assert.Equal(t, []float32{0, 0, 2, 2, 2, 2, 6, 6}, r.out[0].Samples)
}

func TestFilter(t *testing.T) {
	r := newRig(modules.NewFilter(), 44100, 4096)
	r.in[0].Fill(1)
	r.process()
	last := len(r.out[0].Samples) - 1
	assert.InDelta(t, 1, r.out[0].Samples[last], 1e-3)
	assert.InDelta(t, 0, r.out[1].Samples[last], 1e-3)
	assert.InDelta(t, 0, r.out[2].Samples[last], 1e-3)
}

func TestDelay(t *testing.T) {
	r := newRig(modules.NewDelay(), 1000, 32)
	r.params[modules.DelayTime] = 0.01
	r.params[modules.DelayFeedback] = 0
	r.params[modules.DelayMix] = 1
	r.in[0].Samples[0] = 1
	r.process()
	for i, v := range r.out[0].Samples {
		if i == 10 {
			assert.Equal(t, float32(1), v)
		} else {
			assert.Equal(t, float32(0), v, "sample %d", i)
		}
	}
	r.m.Reset()
	r.in[0].Fill(0)
	r.process()
	assert.Equal(t, float32(0), r.out[0].Peak())
}

func event(msg midi.Message) signal.Event {
	e, _ := signal.EventOf(msg)
	return e
}

func TestMIDI(t *testing.T) {
	input := newRig(modules.NewMIDIInput(), 1000, 4)
	receiver := input.m.(module.MIDIReceiver)
	assert.True(t, receiver.ReceiveMIDI(event(midi.NoteOn(0, 69, 127))))
	input.process()
	assert.Len(t, input.out[0].Events, 1)

	note := newRig(modules.NewMIDINote(), 1000, 4)
	note.in[0].CopyFrom(input.out[0])
	note.process()
	assert.Equal(t, []float32{1, 1, 1, 1}, note.out[modules.NoteGate].Samples)
	assert.InDelta(t, 0.75, note.out[modules.NotePitch].Samples[0], 1e-6)
	assert.Equal(t, float32(1), note.out[modules.NoteVelocity].Samples[0])

	// release in the middle of the block, pitch is held
	note.in[0].Clear()
	off := event(midi.NoteOff(0, 69))
	off.Offset = 2
	note.in[0].PushEvent(off)
	note.process()
	assert.Equal(t, []float32{1, 1, 0, 0}, note.out[modules.NoteGate].Samples)
	assert.InDelta(t, 0.75, note.out[modules.NotePitch].Samples[3], 1e-6)

	// events are emitted once
	input.process()
	assert.Empty(t, input.out[0].Events)
	for i := 0; i < signal.MaxEvents; i++ {
		receiver.ReceiveMIDI(event(midi.NoteOn(0, 60, 1)))
	}
	assert.False(t, receiver.ReceiveMIDI(event(midi.NoteOn(0, 60, 1))))
}

func TestMIDINoteLastNotePriority(t *testing.T) {
	note := newRig(modules.NewMIDINote(), 1000, 1)
	send := func(e signal.Event) {
		note.in[0].Clear()
		note.in[0].PushEvent(e)
		note.process()
	}
	send(event(midi.NoteOn(0, 60, 100)))
	send(event(midi.NoteOn(0, 72, 100)))
	assert.InDelta(t, 1, note.out[modules.NotePitch].Samples[0], 1e-6)
	send(event(midi.NoteOff(0, 72)))
	assert.InDelta(t, 0, note.out[modules.NotePitch].Samples[0], 1e-6)
	assert.Equal(t, float32(1), note.out[modules.NoteGate].Samples[0])

	// channel filter
	note.params[1] = 2
	send(event(midi.NoteOn(0, 64, 100)))
	assert.InDelta(t, 0, note.out[modules.NotePitch].Samples[0], 1e-6)
}

func TestOutput(t *testing.T) {
	r := newRig(modules.NewOutput(), 44100, 4)
	assert.True(t, r.m.Descriptor().Terminal)
	r.in[0].Fill(0.5)
	r.in[1].Fill(-0.5)
	r.params[modules.OutputVolume] = 1
	r.params[modules.OutputLimiter] = 0
	r.process()
	assert.Equal(t, float32(0.5), r.out[0].Samples[0])
	assert.Equal(t, float32(-0.5), r.out[1].Samples[0])

	r.in[2].Fill(2)
	r.params[modules.OutputLimiter] = 1
	r.process()
	assert.InDelta(t, math.Tanh(2.5), r.out[0].Samples[0], 1e-6)
	assert.InDelta(t, math.Tanh(1.5), r.out[1].Samples[0], 1e-6)
}
