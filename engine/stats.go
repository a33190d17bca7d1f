package engine

import (
	"math"
	"sync/atomic"
)

// Stats are counters written by the audio goroutine and readable from
// any goroutine.
type Stats struct {
	blocks   atomic.Uint64
	samples  atomic.Uint64
	xruns    atomic.Uint64
	dropped  atomic.Uint64
	rejected atomic.Uint64
	cpuLoad  atomic.Uint32
	playing  atomic.Bool
}

// Blocks returns the number of processed callbacks.
func (s *Stats) Blocks() uint64 {
	return s.blocks.Load()
}

// Samples returns the number of processed frames.
func (s *Stats) Samples() uint64 {
	return s.samples.Load()
}

// Xruns returns the number of callbacks that took longer than the
// audio they produced.
func (s *Stats) Xruns() uint64 {
	return s.xruns.Load()
}

// Dropped returns the number of events lost to a full queue.
func (s *Stats) Dropped() uint64 {
	return s.dropped.Load()
}

// Rejected returns the number of commands refused by the audio
// goroutine.
func (s *Stats) Rejected() uint64 {
	return s.rejected.Load()
}

// CPULoad returns the smoothed load in percent.
func (s *Stats) CPULoad() float32 {
	return math.Float32frombits(s.cpuLoad.Load())
}

// Playing reports the transport state of the audio goroutine.
func (s *Stats) Playing() bool {
	return s.playing.Load()
}

func (s *Stats) setCPULoad(v float32) {
	s.cpuLoad.Store(math.Float32bits(v))
}
