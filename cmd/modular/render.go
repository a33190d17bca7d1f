package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pipelined/modular/log"
	"github.com/pipelined/modular/mp3"
	"github.com/pipelined/modular/signal"
	"github.com/pipelined/modular/wav"
)

type renderCommand struct {
	engine  engineFlags
	out     string
	seconds float64
	bits    int
	bitRate int
	quality int
}

func (cmd *renderCommand) Name() string {
	return "render"
}

func (cmd *renderCommand) Help() string {
	return "Render a patch offline into a wav or mp3 file"
}

func (cmd *renderCommand) Register(fs *flag.FlagSet) {
	cmd.engine.register(fs)
	fs.StringVar(&cmd.out, "out", "", "output file, .wav or .mp3 (required)")
	fs.Float64Var(&cmd.seconds, "seconds", 5, "duration to render")
	fs.IntVar(&cmd.bits, "bits", 16, "wav bit depth")
	fs.IntVar(&cmd.bitRate, "bitrate", mp3.DefaultBitRate, "mp3 bit rate in kbps")
	fs.IntVar(&cmd.quality, "quality", mp3.DefaultQuality, "mp3 quality, 0 is best")
}

func (cmd *renderCommand) Validate() error {
	var message string
	if cmd.engine.patch == "" {
		message = message + "Missing -patch required flag\n"
	}
	if cmd.out == "" {
		message = message + "Missing -out required flag\n"
	}
	if cmd.seconds <= 0 {
		message = message + "Flag -seconds must be positive\n"
	}
	if message != "" {
		return errors.New(message)
	}
	return nil
}

func (cmd *renderCommand) Run(_ context.Context, out io.Writer) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	logger := log.GetLogger()
	c, p, err := cmd.engine.build(logger)
	if err != nil {
		return err
	}
	samples := signal.SamplesIn(cmd.engine.sampleRate, time.Duration(cmd.seconds*float64(time.Second)))
	start := time.Now()
	switch ext := strings.ToLower(filepath.Ext(cmd.out)); ext {
	case ".wav":
		err = wav.RenderFile(cmd.out, p, samples, signal.BitDepth(cmd.bits))
	case ".mp3":
		err = mp3.RenderFile(cmd.out, p, samples, cmd.bitRate, cmd.quality)
	default:
		err = fmt.Errorf("unsupported output format %q", ext)
	}
	if err != nil {
		return err
	}
	c.Poll(nil)
	logger.WithFields(logrus.Fields{
		"engine":   c.ID(),
		"samples":  samples,
		"rejected": c.Stats().Rejected(),
		"elapsed":  time.Since(start),
	}).Info("rendered")
	fmt.Fprintf(out, "Rendered %v of audio to %s\n", signal.DurationOf(cmd.engine.sampleRate, samples), cmd.out)
	return nil
}
