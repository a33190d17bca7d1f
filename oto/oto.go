// Package oto plays an engine through the oto audio library. Oto pulls
// samples from a reader, so the engine renders whenever the player
// drains its buffer.
package oto

import (
	"context"

	"github.com/ebitengine/oto/v3"

	"github.com/pipelined/modular/engine"
	"github.com/pipelined/modular/pcm"
	"github.com/pipelined/modular/signal"
)

// Device owns an oto context. Oto allows one context per process, so
// only one Device can run.
type Device struct {
	r      engine.Renderer
	frames int
}

// New returns a Device with a player buffer of frames.
func New(r engine.Renderer, frames int) *Device {
	return &Device{r: r, frames: frames}
}

// Run plays until ctx is done.
func (d *Device) Run(ctx context.Context) error {
	c, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(d.r.SampleRate()),
		ChannelCount: d.r.Channels(),
		Format:       oto.FormatFloat32LE,
		BufferSize:   signal.DurationOf(d.r.SampleRate(), int64(d.frames)),
	})
	if err != nil {
		return err
	}
	<-ready
	player := c.NewPlayer(pcm.NewReader(d.r, d.frames))
	player.Play()
	<-ctx.Done()
	return player.Close()
}
