// Package portaudio plays an engine through the default output device.
package portaudio

import (
	"context"

	"github.com/gordonklaus/portaudio"

	"github.com/pipelined/modular/engine"
)

// Device opens a callback stream. The stream callback runs on the
// PortAudio thread and renders straight into the device buffer.
type Device struct {
	r      engine.Renderer
	frames int
}

// New returns a Device requesting buffers of frames.
func New(r engine.Renderer, frames int) *Device {
	return &Device{r: r, frames: frames}
}

// Run initializes PortAudio and plays until ctx is done.
func (d *Device) Run(ctx context.Context) (err error) {
	if err = portaudio.Initialize(); err != nil {
		return err
	}
	defer func() {
		if terr := portaudio.Terminate(); err == nil {
			err = terr
		}
	}()
	stream, err := portaudio.OpenDefaultStream(0, d.r.Channels(), d.r.SampleRate(), d.frames, d.process)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stream.Close(); err == nil {
			err = cerr
		}
	}()
	if err = stream.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return stream.Stop()
}

func (d *Device) process(out []float32) {
	d.r.Process(out)
}
