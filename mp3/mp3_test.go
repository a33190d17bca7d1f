//go:build lame

package mp3_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelined/modular/engine"
	"github.com/pipelined/modular/modules"
	"github.com/pipelined/modular/mp3"
)

func TestRenderFile(t *testing.T) {
	c, p, err := engine.New()
	require.NoError(t, err)
	osc, err := c.AddModule(modules.OscillatorType)
	require.NoError(t, err)
	out, err := c.AddModule(modules.OutputType)
	require.NoError(t, err)
	require.NoError(t, c.Connect(osc, 0, out, 2))
	require.NoError(t, c.SetPlaying(true))

	path := filepath.Join(t.TempDir(), "out.mp3")
	require.NoError(t, mp3.RenderFile(path, p, 44100, mp3.DefaultBitRate, mp3.DefaultQuality))
	assert.Equal(t, uint64(44100), c.Stats().Samples())
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(1000))
}
