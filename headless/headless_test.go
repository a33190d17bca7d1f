package headless_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pipelined/modular/engine"
	"github.com/pipelined/modular/headless"
	"github.com/pipelined/modular/mock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRun(t *testing.T) {
	c, p, err := engine.New(engine.WithRegistry(mock.Registry()), engine.WithSampleRate(8000))
	require.NoError(t, err)
	_, err = c.AddModule(mock.SourceType)
	require.NoError(t, err)
	require.NoError(t, c.SetPlaying(true))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	// 8 frames at 8 kHz is a millisecond.
	require.NoError(t, headless.New(p, 8).Run(ctx))

	assert.Greater(t, c.Stats().Blocks(), uint64(10))
	assert.Equal(t, 0, c.Pending())
	assert.True(t, c.Stats().Playing())
}
