package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pipelined/modular/graph"
	"github.com/pipelined/modular/modules"
	"github.com/pipelined/modular/patch"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func run(args ...string) (int, string) {
	var out bytes.Buffer
	c := config{
		args: append([]string{"modular"}, args...),
		out:  &out,
	}
	code := c.run(context.Background())
	return code, out.String()
}

func testPatch(t *testing.T) string {
	t.Helper()
	p := &patch.Patch{
		ID:      "test",
		Version: patch.Version,
		Nodes: []patch.Node{
			{ID: 1, Type: modules.OscillatorType, Params: []float32{220, 0, 0}},
			{ID: 2, Type: modules.OutputType},
		},
		Connections: []graph.Connection{{From: 1, To: 2, ToSlot: 2}},
	}
	path := filepath.Join(t.TempDir(), "patch.yaml")
	require.NoError(t, patch.Save(path, p))
	return path
}

func TestInit(t *testing.T) {
	// check if commands are registered
	assert.Equal(t, 4, len(commands))
}

func TestUsage(t *testing.T) {
	code, out := run()
	assert.Equal(t, errorExitCode, code)
	assert.Contains(t, out, "Usage: modular")

	code, out = run("nope")
	assert.Equal(t, errorExitCode, code)
	assert.Contains(t, out, "Unknown command: nope")

	code, _ = run("list", "-nope")
	assert.Equal(t, errorExitCode, code)
}

func TestList(t *testing.T) {
	code, out := run("list")
	assert.Equal(t, successExitCode, code)
	for _, typeID := range modules.Default().Types() {
		assert.Contains(t, out, typeID)
	}

	code, out = run("list", "-v")
	assert.Equal(t, successExitCode, code)
	assert.Contains(t, out, "Descriptor")
	assert.Contains(t, out, "frequency")
}

func TestRender(t *testing.T) {
	p := testPatch(t)
	dir := t.TempDir()
	tests := []struct {
		description string
		args        []string
		code        int
		contains    string
	}{
		{
			description: "wav",
			args:        []string{"render", "-patch", p, "-out", filepath.Join(dir, "out.wav"), "-seconds", "0.1"},
			code:        successExitCode,
			contains:    "Rendered 100ms",
		},
		{
			description: "missing flags",
			args:        []string{"render"},
			code:        errorExitCode,
			contains:    "Missing -patch required flag",
		},
		{
			description: "bad format",
			args:        []string{"render", "-patch", p, "-out", filepath.Join(dir, "out.ogg")},
			code:        errorExitCode,
			contains:    "unsupported output format",
		},
		{
			description: "missing patch",
			args:        []string{"render", "-patch", filepath.Join(dir, "none.yaml"), "-out", filepath.Join(dir, "x.wav")},
			code:        errorExitCode,
			contains:    "Command failed",
		},
	}
	for _, test := range tests {
		code, out := run(test.args...)
		assert.Equal(t, test.code, code, test.description)
		assert.Contains(t, out, test.contains, test.description)
	}
	info, err := os.Stat(filepath.Join(dir, "out.wav"))
	require.NoError(t, err)
	// 4410 stereo 16 bit frames and a header
	assert.Greater(t, info.Size(), int64(4410*4))
}

func TestPlayHeadless(t *testing.T) {
	code, out := run("play", "-patch", testPatch(t), "-device", "headless", "-seconds", "0.1", "-frames", "256")
	assert.Equal(t, successExitCode, code, out)
	assert.Contains(t, out, "Played")

	code, out = run("play", "-patch", testPatch(t), "-device", "tape")
	assert.Equal(t, errorExitCode, code)
	assert.Contains(t, out, `unknown device "tape"`)
}

func TestScript(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "chain.lua")
	require.NoError(t, os.WriteFile(file, []byte(`
local osc = add("osc")
local out = add("output")
connect(osc, "out", out, "mono")
set(osc, "frequency", 330)
sleep(0.05)
`), 0o644))
	saved := filepath.Join(dir, "saved.json")
	code, out := run("script", "-file", file, "-device", "headless", "-save", saved)
	require.Equal(t, successExitCode, code, out)
	assert.Contains(t, out, "Saved patch")

	p, err := patch.Load(saved)
	require.NoError(t, err)
	require.Len(t, p.Nodes, 2)
	assert.Equal(t, float32(330), p.Nodes[0].Params[modules.OscFrequency])
	assert.Equal(t, []graph.Connection{{From: 1, To: 2, ToSlot: 2}}, p.Connections)
}
