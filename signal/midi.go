package signal

import (
	"math"

	"gitlab.com/gomidi/midi/v2"
)

// MaxEvents is the default number of MIDI events a buffer holds per block.
const MaxEvents = 64

// EventKind is the type of a decoded MIDI channel message.
type EventKind uint8

// Supported channel messages. Note-on with zero velocity decodes as NoteOff.
const (
	NoteOff EventKind = iota + 1
	NoteOn
	ControlChange
)

// Event is a single decoded MIDI channel message positioned within a
// block. It is fixed size so the audio goroutine can copy it freely.
type Event struct {
	// Offset is the sample position inside the block.
	Offset  uint32
	Kind    EventKind
	Channel uint8
	// Data1 is the key or the controller number.
	Data1 uint8
	// Data2 is the velocity or the controller value.
	Data2 uint8
}

// EventOf decodes a channel message. It reports false for messages
// other than note on, note off and control change.
func EventOf(msg midi.Message) (Event, bool) {
	var channel, data1, data2 uint8
	switch {
	case msg.GetNoteStart(&channel, &data1, &data2):
		return Event{Kind: NoteOn, Channel: channel, Data1: data1, Data2: data2}, true
	case msg.GetNoteEnd(&channel, &data1):
		return Event{Kind: NoteOff, Channel: channel, Data1: data1}, true
	case msg.GetControlChange(&channel, &data1, &data2):
		return Event{Kind: ControlChange, Channel: channel, Data1: data1, Data2: data2}, true
	}
	return Event{}, false
}

// NoteToFrequency converts a MIDI note number to Hz with A4 = 440.
func NoteToFrequency(note float32) float32 {
	return float32(440 * math.Pow(2, float64(note-69)/12))
}

// NoteToVolts converts a MIDI note number to 1V/octave pitch with C4 at 0V.
func NoteToVolts(note float32) float32 {
	return (note - 60) / 12
}

// VoltsToFrequency converts 1V/octave pitch to Hz with 0V at middle C.
func VoltsToFrequency(v float32) float32 {
	return float32(261.6256 * math.Pow(2, float64(v)))
}
