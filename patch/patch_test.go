package patch_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelined/modular/engine"
	"github.com/pipelined/modular/graph"
	"github.com/pipelined/modular/mock"
	"github.com/pipelined/modular/patch"
)

func newController(t *testing.T) *engine.Controller {
	t.Helper()
	c, _, err := engine.New(engine.WithRegistry(mock.Registry()))
	require.NoError(t, err)
	return c
}

// build creates source(1) -> pass(2) -> sink(3) with a parameter set.
func build(t *testing.T, c *engine.Controller) {
	t.Helper()
	require.NoError(t, c.AddModuleWithID(3, mock.SinkType))
	require.NoError(t, c.AddModuleWithID(1, mock.SourceType))
	require.NoError(t, c.AddModuleWithID(2, mock.PassType))
	require.NoError(t, c.SetParameter(1, 0, 0.75))
	require.NoError(t, c.Connect(1, 0, 2, 0))
	require.NoError(t, c.Connect(2, 0, 3, 1))
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		description string
		file        string
	}{
		{description: "json", file: "patch.json"},
		{description: "yaml", file: "patch.yaml"},
		{description: "yml", file: "patch.yml"},
	}
	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			c := newController(t)
			build(t, c)
			expected := c.Snapshot()
			p := patch.FromSnapshot("chain", expected)
			assert.NotEmpty(t, p.ID)
			assert.Equal(t, patch.Version, p.Version)
			assert.Equal(t, 6, p.Commands())

			path := filepath.Join(t.TempDir(), test.file)
			require.NoError(t, patch.Save(path, p))
			loaded, err := patch.Load(path)
			require.NoError(t, err)
			assert.Equal(t, p, loaded)

			c = newController(t)
			require.NoError(t, loaded.Apply(c))
			assert.Equal(t, expected, c.Snapshot())
		})
	}
}

func TestUnmarshal(t *testing.T) {
	tests := []struct {
		description string
		data        string
		format      patch.Format
		err         error
	}{
		{
			description: "yaml",
			format:      patch.YAML,
			data: `
id: a
version: 1
nodes:
  - {id: 1, type: osc, params: [440, 0, 0]}
  - {id: 2, type: output}
connections:
  - {from: 1, from_slot: 0, to: 2, to_slot: 2}
`,
		},
		{
			description: "json",
			format:      patch.JSON,
			data:        `{"id":"a","version":1,"nodes":[{"id":1,"type":"osc"}]}`,
		},
		{
			description: "future version",
			format:      patch.JSON,
			data:        `{"id":"a","version":2,"nodes":[]}`,
			err:         patch.ErrVersion,
		},
		{
			description: "missing version",
			format:      patch.YAML,
			data:        "id: a\nnodes: []\n",
			err:         patch.ErrVersion,
		},
		{
			description: "unknown field",
			format:      patch.YAML,
			data:        "id: a\nversion: 1\nwires: []\n",
		},
		{
			description: "unknown format",
			format:      patch.Format(7),
			data:        "{}",
			err:         patch.ErrFormat,
		},
	}
	for _, test := range tests {
		p, err := patch.Unmarshal([]byte(test.data), test.format)
		switch {
		case test.description == "unknown field":
			assert.Error(t, err, test.description)
		case test.err != nil:
			assert.True(t, errors.Is(err, test.err), test.description)
		default:
			require.NoError(t, err, test.description)
			assert.Equal(t, "a", p.ID, test.description)
		}
	}

	p, err := patch.Unmarshal([]byte(tests[0].data), patch.YAML)
	require.NoError(t, err)
	assert.Equal(t, []float32{440, 0, 0}, p.Nodes[0].Params)
	assert.Equal(t, []graph.Connection{{From: 1, To: 2, ToSlot: 2}}, p.Connections)
}

func TestFormatOf(t *testing.T) {
	f, err := patch.FormatOf("a/b.YAML")
	require.NoError(t, err)
	assert.Equal(t, patch.YAML, f)
	_, err = patch.FormatOf("b.toml")
	assert.True(t, errors.Is(err, patch.ErrFormat))

	err = patch.Save(filepath.Join(t.TempDir(), "b.toml"), &patch.Patch{})
	assert.True(t, errors.Is(err, patch.ErrFormat))
	_, err = patch.Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

type call struct {
	kind string
	id   graph.NodeID
}

type builder struct {
	calls []call
	fail  map[graph.NodeID]error
}

func (b *builder) AddModuleWithID(id graph.NodeID, _ string) error {
	b.calls = append(b.calls, call{kind: "add", id: id})
	return b.fail[id]
}

func (b *builder) SetParameter(id graph.NodeID, _ int, _ float32) error {
	b.calls = append(b.calls, call{kind: "set", id: id})
	return nil
}

func (b *builder) Connect(from graph.NodeID, _ int, _ graph.NodeID, _ int) error {
	b.calls = append(b.calls, call{kind: "connect", id: from})
	return b.fail[from]
}

func TestApply(t *testing.T) {
	p := &patch.Patch{
		Version: patch.Version,
		Nodes: []patch.Node{
			{ID: 3, Type: "c", Params: []float32{1}},
			{ID: 1, Type: "a", Params: []float32{1, 2}},
			{ID: 2, Type: "b", Params: []float32{1}},
		},
		Connections: []graph.Connection{{From: 1, To: 3}, {From: 2, To: 3}},
	}
	b := &builder{}
	require.NoError(t, p.Apply(b))
	assert.Equal(t, []call{
		{kind: "add", id: 1},
		{kind: "add", id: 2},
		{kind: "add", id: 3},
		{kind: "set", id: 1},
		{kind: "set", id: 1},
		{kind: "set", id: 2},
		{kind: "set", id: 3},
		{kind: "connect", id: 1},
		{kind: "connect", id: 2},
	}, b.calls)

	// nodes that failed to add get no parameters
	b = &builder{fail: map[graph.NodeID]error{2: graph.ErrNodeExists}}
	err := p.Apply(b)
	require.Error(t, err)
	assert.True(t, errors.Is(err, graph.ErrNodeExists))
	sets := 0
	for _, c := range b.calls {
		if c.kind == "set" {
			sets++
			assert.NotEqual(t, graph.NodeID(2), c.id)
		}
	}
	assert.Equal(t, 3, sets)
}

func TestApplyRejected(t *testing.T) {
	p := &patch.Patch{
		Version: patch.Version,
		Nodes: []patch.Node{
			{ID: 1, Type: mock.PassType},
			{ID: 2, Type: "unknown"},
		},
		Connections: []graph.Connection{{From: 1, To: 1}},
	}
	c := newController(t)
	err := p.Apply(c)
	require.Error(t, err)
	assert.True(t, errors.Is(err, graph.ErrCycle))
	assert.Len(t, c.Snapshot().Nodes, 1)
}
