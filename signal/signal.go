// Package signal defines the signal types modules exchange and the
// buffers that carry them between connected ports.
package signal

import (
	"math"
	"time"
)

// Type classifies the signal carried by a port.
type Type uint8

const (
	// Audio is a bipolar audio-rate signal, nominally in [-1, 1].
	Audio Type = iota
	// Control is a modulation signal, bipolar or unipolar.
	Control
	// Gate is an on/off signal: 0 is off, anything else is on.
	Gate
	// MIDI carries timestamped note and controller events.
	MIDI
)

// GateThreshold is the level at which a control signal opens a gate.
const GateThreshold = 0.5

func (t Type) String() string {
	switch t {
	case Audio:
		return "audio"
	case Control:
		return "control"
	case Gate:
		return "gate"
	case MIDI:
		return "midi"
	default:
		return "unknown"
	}
}

// CanConnect reports whether an output of type src may feed an input of
// type dst.
func CanConnect(src, dst Type) bool {
	switch {
	case src == dst:
		return true
	case src == MIDI || dst == MIDI:
		return false
	case src == Audio && dst == Control,
		src == Control && dst == Audio,
		src == Gate && dst == Control,
		src == Control && dst == Gate:
		return true
	}
	return false
}

// NeedsConversion reports whether samples must be rewritten when passed
// from src to dst. Compatible numeric types share their samples as is,
// only gates derived from other signals are thresholded.
func NeedsConversion(src, dst Type) bool {
	return dst == Gate && src != Gate
}

// Convert maps a single sample of type src to type dst.
func Convert(src, dst Type, v float32) float32 {
	if NeedsConversion(src, dst) {
		if v >= GateThreshold {
			return 1
		}
		return 0
	}
	return v
}

const (
	// BitDepth8 is 8 bit depth.
	BitDepth8 = BitDepth(8)
	// BitDepth16 is 16 bit depth.
	BitDepth16 = BitDepth(16)
	// BitDepth24 is 24 bit depth.
	BitDepth24 = BitDepth(24)
	// BitDepth32 is 32 bit depth.
	BitDepth32 = BitDepth(32)
)

// BitDepth contains values required for float-to-int conversion.
type BitDepth int

func (bitDepth BitDepth) multiplier() float64 {
	switch bitDepth {
	case BitDepth8:
		return math.MaxInt8
	case BitDepth16:
		return math.MaxInt16
	case BitDepth24:
		return 1<<23 - 1
	case BitDepth32:
		return math.MaxInt32
	default:
		return 1
	}
}

// Supported reports whether ints of this depth can be produced.
func (bitDepth BitDepth) Supported() bool {
	return bitDepth.multiplier() != 1
}

// AsInts converts float samples into ints of the given bit depth. Values
// outside of [-1, 1] are clipped. It returns the number of converted
// samples, which is the shorter of both slices.
func AsInts(dst []int, src []float32, bitDepth BitDepth) int {
	multiplier := bitDepth.multiplier()
	n := len(src)
	if len(dst) < n {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		v := src[i]
		switch {
		case v > 1:
			v = 1
		case v < -1:
			v = -1
		}
		dst[i] = int(float64(v) * multiplier)
	}
	return n
}

// DurationOf returns time duration of passed samples for this sample rate.
func DurationOf(sampleRate float64, samples int64) time.Duration {
	return time.Duration(float64(samples) / sampleRate * float64(time.Second))
}

// SamplesIn returns the number of samples that fit in d at sample rate.
func SamplesIn(sampleRate float64, d time.Duration) int64 {
	return int64(d.Seconds() * sampleRate)
}
