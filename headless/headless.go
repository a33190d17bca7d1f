// Package headless paces an engine with a timer instead of an audio
// device. Rendered audio is discarded.
package headless

import (
	"context"
	"time"

	"github.com/pipelined/modular/engine"
	"github.com/pipelined/modular/signal"
)

// Device calls Process every period of frames.
type Device struct {
	r      engine.Renderer
	period time.Duration
	buf    []float32
}

// New returns a Device rendering blocks of frames.
func New(r engine.Renderer, frames int) *Device {
	return &Device{
		r:      r,
		period: signal.DurationOf(r.SampleRate(), int64(frames)),
		buf:    make([]float32, frames*r.Channels()),
	}
}

// Run renders until ctx is done.
func (d *Device) Run(ctx context.Context) error {
	t := time.NewTicker(d.period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			d.r.Process(d.buf)
		}
	}
}
