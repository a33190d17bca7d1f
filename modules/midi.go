package modules

import (
	"github.com/pipelined/modular/module"
	"github.com/pipelined/modular/signal"
)

var midiInputDescriptor = &module.Descriptor{
	Type:        MIDIInputType,
	Name:        "MIDI input",
	Category:    module.Source,
	Description: "Emits MIDI events sent from the control side.",
	Ports: []module.Port{
		module.Out("out", signal.MIDI),
	},
}

// MIDIInput queues injected events and emits them at the start of the
// next block.
type MIDIInput struct {
	pending [signal.MaxEvents]signal.Event
	n       int
}

// NewMIDIInput returns a MIDIInput.
func NewMIDIInput() module.Module { return &MIDIInput{} }

// Descriptor implements module.Module.
func (m *MIDIInput) Descriptor() *module.Descriptor { return midiInputDescriptor }

// Prepare implements module.Module.
func (m *MIDIInput) Prepare(float64, int) {}

// Reset implements module.Module.
func (m *MIDIInput) Reset() {
	m.n = 0
}

// ReceiveMIDI implements module.MIDIReceiver.
func (m *MIDIInput) ReceiveMIDI(e signal.Event) bool {
	if m.n == len(m.pending) {
		return false
	}
	e.Offset = 0
	m.pending[m.n] = e
	m.n++
	return true
}

// Process implements module.Module.
func (m *MIDIInput) Process(_, out []*signal.Buffer, _ []float32, _ *module.Context) {
	for i := 0; i < m.n; i++ {
		if !out[0].PushEvent(m.pending[i]) {
			break
		}
	}
	m.n = 0
}

// MIDI note output indexes.
const (
	NotePitch = iota
	NoteGate
	NoteVelocity
)

const maxHeldNotes = 16

var midiNoteDescriptor = &module.Descriptor{
	Type:        MIDINoteType,
	Name:        "MIDI to CV",
	Category:    module.Utility,
	Description: "Monophonic MIDI to pitch, gate and velocity with last note priority.",
	Ports: []module.Port{
		module.In("midi", signal.MIDI, 0),
		module.Out("pitch", signal.Control),
		module.Out("gate", signal.Gate),
		module.Out("velocity", signal.Control),
	},
	Params: []module.Param{
		{Name: "transpose", Min: -24, Max: 24, Scale: module.Discrete, Unit: "st"},
		{Name: "channel", Min: 0, Max: 16, Scale: module.Discrete},
	},
}

// MIDINote converts note events into control signals. Pitch is
// 1V/octave with middle C at 0.
type MIDINote struct {
	held     [maxHeldNotes]byte
	n        int
	pitch    float32
	velocity float32
}

// NewMIDINote returns a MIDINote.
func NewMIDINote() module.Module { return &MIDINote{} }

// Descriptor implements module.Module.
func (m *MIDINote) Descriptor() *module.Descriptor { return midiNoteDescriptor }

// Prepare implements module.Module.
func (m *MIDINote) Prepare(float64, int) {}

// Reset implements module.Module.
func (m *MIDINote) Reset() {
	m.n = 0
	m.pitch = 0
	m.velocity = 0
}

func (m *MIDINote) press(note byte, velocity byte) {
	m.release(note)
	if m.n == maxHeldNotes {
		copy(m.held[:], m.held[1:])
		m.n--
	}
	m.held[m.n] = note
	m.n++
	m.velocity = float32(velocity) / 127
}

func (m *MIDINote) release(note byte) {
	for i := 0; i < m.n; i++ {
		if m.held[i] == note {
			copy(m.held[i:], m.held[i+1:m.n])
			m.n--
			return
		}
	}
}

// Process implements module.Module.
func (m *MIDINote) Process(in, out []*signal.Buffer, params []float32, _ *module.Context) {
	transpose := params[0]
	// channel 0 listens to all channels
	channel := int(params[1])
	events := in[0].Events
	e := 0
	for i := range out[NotePitch].Samples {
		for e < len(events) && int(events[e].Offset) <= i {
			ev := events[e]
			e++
			if channel != 0 && int(ev.Channel)+1 != channel {
				continue
			}
			switch ev.Kind {
			case signal.NoteOn:
				m.press(ev.Data1, ev.Data2)
			case signal.NoteOff:
				m.release(ev.Data1)
			}
		}
		// pitch holds the last note after release
		if m.n == 0 {
			out[NoteGate].Samples[i] = 0
		} else {
			m.pitch = signal.NoteToVolts(float32(m.held[m.n-1]) + transpose)
			out[NoteGate].Samples[i] = 1
		}
		out[NotePitch].Samples[i] = m.pitch
		out[NoteVelocity].Samples[i] = m.velocity
	}
}
