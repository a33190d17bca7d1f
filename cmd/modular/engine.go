package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pipelined/modular/engine"
	"github.com/pipelined/modular/headless"
	"github.com/pipelined/modular/oto"
	"github.com/pipelined/modular/patch"
	"github.com/pipelined/modular/portaudio"
)

// queueSpare is the command queue room left after a patch is applied.
const queueSpare = 1024

// engineFlags are shared by commands that build an engine.
type engineFlags struct {
	patch      string
	sampleRate float64
	channels   int
	frames     int
}

func (f *engineFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.patch, "patch", "", "patch file, .json or .yaml")
	fs.Float64Var(&f.sampleRate, "rate", engine.DefaultSampleRate, "sample rate in Hz")
	fs.IntVar(&f.channels, "channels", engine.DefaultChannels, "number of output channels")
	fs.IntVar(&f.frames, "frames", engine.DefaultMaxBlockSize, "frames per device buffer")
}

// build creates an engine, applies the patch if any and starts the
// transport.
func (f *engineFlags) build(logger *logrus.Logger) (*engine.Controller, *engine.Processor, error) {
	var p *patch.Patch
	commands := queueSpare
	if f.patch != "" {
		var err error
		if p, err = patch.Load(f.patch); err != nil {
			return nil, nil, err
		}
		commands += p.Commands()
	}
	c, proc, err := engine.New(
		engine.WithName("modular"),
		engine.WithSampleRate(f.sampleRate),
		engine.WithChannels(f.channels),
		engine.WithMaxBlockSize(f.frames),
		engine.WithCommandQueue(commands),
		engine.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, err
	}
	if p != nil {
		if err := p.Apply(c); err != nil {
			return nil, nil, fmt.Errorf("apply patch %s: %w", f.patch, err)
		}
		logger.WithFields(logrus.Fields{
			"engine": c.ID(),
			"patch":  p.ID,
			"name":   p.Name,
			"nodes":  len(p.Nodes),
		}).Info("patch loaded")
	}
	if err := c.SetPlaying(true); err != nil {
		return nil, nil, err
	}
	// apply everything before the first audible block
	for c.Pending() > 0 {
		proc.Process(nil)
	}
	return c, proc, nil
}

type device interface {
	Run(ctx context.Context) error
}

func openDevice(name string, p *engine.Processor, frames int) (device, error) {
	switch name {
	case "headless":
		return headless.New(p, frames), nil
	case "portaudio":
		return portaudio.New(p, frames), nil
	case "oto":
		return oto.New(p, frames), nil
	}
	return nil, fmt.Errorf("unknown device %q", name)
}

// monitor polls engine events until ctx is done and logs them.
func monitor(ctx context.Context, c *engine.Controller, logger *logrus.Logger) error {
	t := time.NewTicker(100 * time.Millisecond)
	defer t.Stop()
	entry := logger.WithField("engine", c.ID())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
		c.Poll(func(e engine.Event) {
			switch e.Kind {
			case engine.Level:
				entry.WithFields(logrus.Fields{"left": e.Left, "right": e.Right}).Debug("level")
			case engine.CPULoad:
				entry.WithField("load", e.Value).Debug("cpu")
			case engine.Overrun:
				entry.WithField("load", e.Value).Warn("overrun")
			case engine.Rejected:
				entry.WithFields(logrus.Fields{
					"command": e.Command.Kind,
					"node":    e.Node,
				}).WithError(e.Err).Warn("command rejected")
			}
		})
	}
}
