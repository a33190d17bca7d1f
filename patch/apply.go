package patch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pipelined/modular/graph"
)

// Builder receives the commands that rebuild a patch. engine.Controller
// implements it.
type Builder interface {
	AddModuleWithID(id graph.NodeID, typeID string) error
	SetParameter(id graph.NodeID, index int, value float32) error
	Connect(from graph.NodeID, fromSlot int, to graph.NodeID, toSlot int) error
}

// Apply replays the patch: nodes in ascending id order, then their
// parameters, then connections. Failed commands don't stop the replay,
// all errors are returned together.
func (p *Patch) Apply(b Builder) error {
	nodes := append([]Node(nil), p.Nodes...)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	var errs applyErrors
	added := make(map[graph.NodeID]bool, len(nodes))
	for _, n := range nodes {
		if err := b.AddModuleWithID(n.ID, n.Type); err != nil {
			errs = append(errs, err)
			continue
		}
		added[n.ID] = true
	}
	for _, n := range nodes {
		if !added[n.ID] {
			continue
		}
		for i, v := range n.Params {
			if err := b.SetParameter(n.ID, i, v); err != nil {
				errs = append(errs, err)
			}
		}
	}
	for _, c := range p.Connections {
		if err := b.Connect(c.From, c.FromSlot, c.To, c.ToSlot); err != nil {
			errs = append(errs, fmt.Errorf("connect %d.%d to %d.%d: %w", c.From, c.FromSlot, c.To, c.ToSlot, err))
		}
	}
	return errs.ret()
}

// applyErrors wraps errors of failed commands.
type applyErrors []error

func (e applyErrors) Error() string {
	s := []string{}
	for _, se := range e {
		s = append(s, se.Error())
	}
	return strings.Join(s, ",")
}

func (e applyErrors) Unwrap() []error {
	return e
}

// ret returns untyped nil if error list is empty.
func (e applyErrors) ret() error {
	if len(e) > 0 {
		return e
	}
	return nil
}
