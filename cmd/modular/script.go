package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/pipelined/modular/log"
	"github.com/pipelined/modular/patch"
	"github.com/pipelined/modular/script"
)

type scriptCommand struct {
	engine engineFlags
	file   string
	device string
	save   string
}

func (cmd *scriptCommand) Name() string {
	return "script"
}

func (cmd *scriptCommand) Help() string {
	return "Run a Lua control script against a live engine"
}

func (cmd *scriptCommand) Register(fs *flag.FlagSet) {
	cmd.engine.register(fs)
	fs.StringVar(&cmd.file, "file", "", "Lua script (required)")
	fs.StringVar(&cmd.device, "device", "portaudio", "output device: portaudio, oto or headless")
	fs.StringVar(&cmd.save, "save", "", "save the resulting patch to this file")
}

func (cmd *scriptCommand) Run(ctx context.Context, out io.Writer) error {
	if cmd.file == "" {
		return errors.New("Missing -file required flag")
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

	// the script owns the controller, so it polls events itself
	g, gctx := errgroup.WithContext(ctx)
	devCtx, stop := context.WithCancel(gctx)
	defer stop()
	g.Go(func() error { return dev.Run(devCtx) })
	g.Go(func() error {
		defer stop()
		s := script.New(c, script.WithLogger(logger))
		return s.RunFile(gctx, cmd.file)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.WithFields(logrus.Fields{
		"engine": c.ID(),
		"script": cmd.file,
		"nodes":  len(c.Snapshot().Nodes),
	}).Info("script done")

	if cmd.save != "" {
		pt := patch.FromSnapshot(cmd.file, c.Snapshot())
		if err := patch.Save(cmd.save, pt); err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved patch %s to %s\n", pt.ID, cmd.save)
	}
	return nil
}
