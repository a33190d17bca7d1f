package wav_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelined/modular/engine"
	"github.com/pipelined/modular/mock"
	"github.com/pipelined/modular/signal"
	modwav "github.com/pipelined/modular/wav"
)

func newProcessor(t *testing.T, left, right float32) (*engine.Controller, *engine.Processor) {
	t.Helper()
	c, p, err := engine.New(engine.WithRegistry(mock.Registry()), engine.WithSampleRate(22050))
	require.NoError(t, err)
	sink, err := c.AddModule(mock.SinkType)
	require.NoError(t, err)
	for i, v := range []float32{left, right} {
		src, err := c.AddModule(mock.SourceType)
		require.NoError(t, err)
		require.NoError(t, c.SetParameter(src, 0, v))
		require.NoError(t, c.Connect(src, 0, sink, i))
	}
	require.NoError(t, c.SetPlaying(true))
	return c, p
}

func TestRenderFile(t *testing.T) {
	tests := []struct {
		description string
		bitDepth    signal.BitDepth
		samples     int64
		left        int
		right       int
	}{
		{
			description: "16 bit",
			bitDepth:    signal.BitDepth16,
			samples:     1000,
			left:        16383,
			right:       -32767,
		},
		{
			description: "24 bit one block",
			bitDepth:    signal.BitDepth24,
			samples:     modwav.BlockSize,
			left:        4194303,
			right:       -8388607,
		},
	}
	for _, test := range tests {
		c, p := newProcessor(t, 0.5, -1)
		path := filepath.Join(t.TempDir(), "out.wav")
		require.NoError(t, modwav.RenderFile(path, p, test.samples, test.bitDepth), test.description)
		assert.Equal(t, uint64(test.samples), c.Stats().Samples(), test.description)

		f, err := os.Open(path)
		require.NoError(t, err)
		d := wav.NewDecoder(f)
		buf, err := d.FullPCMBuffer()
		require.NoError(t, err, test.description)
		require.NoError(t, f.Close())

		assert.Equal(t, uint32(22050), d.SampleRate, test.description)
		assert.Equal(t, uint16(test.bitDepth), d.BitDepth, test.description)
		assert.Equal(t, uint16(2), d.NumChans, test.description)
		require.Len(t, buf.Data, int(test.samples)*2, test.description)
		for i := 0; i < len(buf.Data); i += 2 {
			assert.Equal(t, test.left, buf.Data[i])
			assert.Equal(t, test.right, buf.Data[i+1])
		}
	}
}

func TestUnsupportedBitDepth(t *testing.T) {
	_, p := newProcessor(t, 0, 0)
	err := modwav.RenderFile(filepath.Join(t.TempDir(), "out.wav"), p, 10, signal.BitDepth(12))
	assert.True(t, errors.Is(err, modwav.ErrUnsupportedBitDepth))
}
