// Package module defines the contract every processing unit of the graph
// implements and the static description it exposes.
package module

import (
	"time"

	"github.com/pipelined/modular/signal"
)

// Module is a processing unit. Prepare, Reset and Process are only
// called from the goroutine that owns the instance. Process must not
// allocate, block or log: it runs inside the audio device callback.
type Module interface {
	// Descriptor returns the static description shared by all
	// instances of the module type.
	Descriptor() *Descriptor
	// Prepare is called once before the first Process with the
	// engine's sample rate and the largest block it will ever see.
	Prepare(sampleRate float64, maxBlockSize int)
	// Process renders one block. Inputs and outputs are ordered like
	// the descriptor's ports of the same direction and are exactly
	// ctx.BlockSize samples long. Params are clamped to their ranges.
	Process(in, out []*signal.Buffer, params []float32, ctx *Context)
	// Reset clears internal state such as phase, envelopes and delay
	// lines.
	Reset()
}

// MIDIReceiver is implemented by modules that accept MIDI injected from
// the control side.
type MIDIReceiver interface {
	// ReceiveMIDI queues e for the next block. It returns false when
	// the module can hold no more events.
	ReceiveMIDI(e signal.Event) bool
}

// TransportState is the playback state seen by modules.
type TransportState uint8

const (
	// Stopped transport renders silence.
	Stopped TransportState = iota
	// Playing transport runs the graph.
	Playing
)

// Context carries per-block information to modules.
type Context struct {
	SampleRate float64
	BlockSize  int
	// Position is the number of samples rendered since playback started.
	Position  uint64
	Transport TransportState
}

// Time returns Position in seconds.
func (c *Context) Time() float64 {
	return float64(c.Position) / c.SampleRate
}

// BlockDuration returns the duration of the current block.
func (c *Context) BlockDuration() time.Duration {
	return signal.DurationOf(c.SampleRate, int64(c.BlockSize))
}

// Nyquist returns half the sample rate.
func (c *Context) Nyquist() float64 {
	return c.SampleRate / 2
}
