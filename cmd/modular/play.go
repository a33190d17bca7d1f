package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/pipelined/modular/log"
)

type playCommand struct {
	engine  engineFlags
	device  string
	seconds float64
}

func (cmd *playCommand) Name() string {
	return "play"
}

func (cmd *playCommand) Help() string {
	return "Play a patch live until interrupted"
}

func (cmd *playCommand) Register(fs *flag.FlagSet) {
	cmd.engine.register(fs)
	fs.StringVar(&cmd.device, "device", "portaudio", "output device: portaudio, oto or headless")
	fs.Float64Var(&cmd.seconds, "seconds", 0, "stop after this many seconds, 0 plays until interrupted")
}

func (cmd *playCommand) Run(ctx context.Context, out io.Writer) error {
	if cmd.engine.patch == "" {
		return errors.New("Missing -patch required flag")
	}
	logger := log.GetLogger()
	c, p, err := cmd.engine.build(logger)
	if err != nil {
		return err
	}
	dev, err := openDevice(cmd.device, p, cmd.engine.frames)
	if err != nil {
		return err
	}
	if cmd.seconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cmd.seconds*float64(time.Second)))
		defer cancel()
	}
	logger.WithFields(logrus.Fields{
		"engine": c.ID(),
		"device": cmd.device,
		"frames": cmd.engine.frames,
	}).Info("playing")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return dev.Run(ctx) })
	g.Go(func() error { return monitor(ctx, c, logger) })
	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Played %d blocks, %d overruns\n", c.Stats().Blocks(), c.Stats().Xruns())
	return nil
}
