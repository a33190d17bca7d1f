//go:build portaudio

package portaudio_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelined/modular/engine"
	"github.com/pipelined/modular/modules"
	"github.com/pipelined/modular/portaudio"
)

func TestDevice(t *testing.T) {
	c, p, err := engine.New()
	require.NoError(t, err)
	osc, err := c.AddModule(modules.OscillatorType)
	require.NoError(t, err)
	out, err := c.AddModule(modules.OutputType)
	require.NoError(t, err)
	require.NoError(t, c.Connect(osc, 0, out, 2))
	require.NoError(t, c.SetParameter(out, modules.OutputVolume, 0.2))
	require.NoError(t, c.SetPlaying(true))

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	require.NoError(t, portaudio.New(p, 512).Run(ctx))
	assert.Greater(t, c.Stats().Blocks(), uint64(0))
}
