// Package patch saves graphs to files and rebuilds them through the
// engine commands.
package patch

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/xid"
	yaml "gopkg.in/yaml.v2"

	"github.com/pipelined/modular/graph"
)

// Version of the patch format written by this package.
const Version = 1

var (
	// ErrVersion is returned when a patch was written by an incompatible
	// version.
	ErrVersion = errors.New("unsupported patch version")
	// ErrFormat is returned for unknown file formats.
	ErrFormat = errors.New("unknown patch format")
)

// Format is a serialization format.
type Format int

// Supported formats.
const (
	JSON Format = iota
	YAML
)

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// FormatOf picks a format by file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrFormat, path)
}

// Node is a module instance with its parameter values.
type Node struct {
	ID     graph.NodeID `json:"id" yaml:"id"`
	Type   string       `json:"type" yaml:"type"`
	Params []float32    `json:"params,omitempty" yaml:"params,omitempty"`
}

// Patch is a serializable graph.
type Patch struct {
	ID          string             `json:"id" yaml:"id"`
	Name        string             `json:"name,omitempty" yaml:"name,omitempty"`
	Version     int                `json:"version" yaml:"version"`
	Nodes       []Node             `json:"nodes" yaml:"nodes"`
	Connections []graph.Connection `json:"connections,omitempty" yaml:"connections,omitempty"`
}

// FromSnapshot creates a patch of a graph snapshot.
func FromSnapshot(name string, s graph.Snapshot) *Patch {
	p := Patch{
		ID:          xid.New().String(),
		Name:        name,
		Version:     Version,
		Nodes:       make([]Node, 0, len(s.Nodes)),
		Connections: append([]graph.Connection(nil), s.Connections...),
	}
	for _, n := range s.Nodes {
		p.Nodes = append(p.Nodes, Node{
			ID:     n.ID,
			Type:   n.Type,
			Params: append([]float32(nil), n.Params...),
		})
	}
	return &p
}

// Commands returns the number of commands Apply sends.
func (p *Patch) Commands() int {
	n := len(p.Nodes) + len(p.Connections)
	for _, node := range p.Nodes {
		n += len(node.Params)
	}
	return n
}

// Marshal encodes p.
func Marshal(p *Patch, f Format) ([]byte, error) {
	switch f {
	case JSON:
		return json.MarshalIndent(p, "", "  ")
	case YAML:
		return yaml.Marshal(p)
	}
	return nil, fmt.Errorf("%w: %v", ErrFormat, f)
}

// Unmarshal decodes a patch and checks its version.
func Unmarshal(data []byte, f Format) (*Patch, error) {
	var p Patch
	var err error
	switch f {
	case JSON:
		err = json.Unmarshal(data, &p)
	case YAML:
		err = yaml.UnmarshalStrict(data, &p)
	default:
		return nil, fmt.Errorf("%w: %v", ErrFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %v patch: %w", f, err)
	}
	if p.Version < 1 || p.Version > Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, p.Version)
	}
	return &p, nil
}

// Load reads a patch file. The format follows the extension.
func Load(path string) (*Patch, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data, f)
}

// Save writes a patch file. The format follows the extension.
func Save(path string, p *Patch) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Marshal(p, f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
