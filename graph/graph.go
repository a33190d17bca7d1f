/*
Package graph stores the topology of the modular patch: nodes, their
parameter values and the connections between their ports.

A Store is built once with fixed capacities. Every mutation works on
preallocated memory, so the store can be owned by the audio goroutine
and modified between blocks. The control side keeps its own Store as a
shadow to validate mutations before they are sent.
*/
package graph

import (
	"sort"

	"github.com/pipelined/modular/module"
	"github.com/pipelined/modular/signal"
)

// NodeID identifies a node. It is chosen by the control side and never
// reused while the node exists.
type NodeID uint64

// Connection links an output slot of one node to an input slot of
// another.
type Connection struct {
	From     NodeID `json:"from" yaml:"from"`
	FromSlot int    `json:"from_slot" yaml:"from_slot"`
	To       NodeID `json:"to" yaml:"to"`
	ToSlot   int    `json:"to_slot" yaml:"to_slot"`
}

// Limits bound the size of a Store.
type Limits struct {
	MaxNodes   int
	MaxInputs  int
	MaxOutputs int
	MaxParams  int
}

// edge is an incoming connection seen from the destination input.
type edge struct {
	src int // slot of the source node, -1 if unconnected
	out int
}

type node struct {
	used   bool
	id     NodeID
	typeID string
	desc   *module.Descriptor
	params []float32
	inputs []edge
}

// Store is the node arena. Lookups by id scan the slots, which is
// cheap for the few hundred nodes a patch holds.
type Store struct {
	limits Limits
	nodes  []node
	count  int

	dirty bool
	order []int

	// scratch for ordering and cycle detection
	indegree []int
	outStart []int
	outList  []int
	ready    []int
	stack    []int
	seen     []uint32
	epoch    uint32
}

// New allocates a store.
func New(limits Limits) *Store {
	s := &Store{
		limits:   limits,
		nodes:    make([]node, limits.MaxNodes),
		order:    make([]int, 0, limits.MaxNodes),
		indegree: make([]int, limits.MaxNodes),
		outStart: make([]int, limits.MaxNodes+1),
		outList:  make([]int, limits.MaxNodes*limits.MaxInputs),
		ready:    make([]int, 0, limits.MaxNodes),
		stack:    make([]int, 0, limits.MaxNodes),
		seen:     make([]uint32, limits.MaxNodes),
	}
	for i := range s.nodes {
		s.nodes[i].params = make([]float32, 0, limits.MaxParams)
		s.nodes[i].inputs = make([]edge, 0, limits.MaxInputs)
	}
	return s
}

// Limits returns the capacities of the store.
func (s *Store) Limits() Limits {
	return s.limits
}

// Len returns the number of nodes.
func (s *Store) Len() int {
	return s.count
}

// Dirty reports whether the order must be recomputed.
func (s *Store) Dirty() bool {
	return s.dirty
}

// Lookup returns the slot of the node.
func (s *Store) Lookup(id NodeID) (int, bool) {
	for i := range s.nodes {
		if s.nodes[i].used && s.nodes[i].id == id {
			return i, true
		}
	}
	return -1, false
}

// Contains reports whether the node exists.
func (s *Store) Contains(id NodeID) bool {
	_, ok := s.Lookup(id)
	return ok
}

// ID returns the id of the node in slot.
func (s *Store) ID(slot int) NodeID {
	return s.nodes[slot].id
}

// Type returns the module type of the node in slot.
func (s *Store) Type(slot int) string {
	return s.nodes[slot].typeID
}

// Descriptor returns the descriptor of the node in slot.
func (s *Store) Descriptor(slot int) *module.Descriptor {
	return s.nodes[slot].desc
}

// Params returns the parameter values of the node in slot. The slice
// is owned by the store.
func (s *Store) Params(slot int) []float32 {
	return s.nodes[slot].params
}

// Source returns the output feeding input in of the node in slot.
func (s *Store) Source(slot, in int) (src, out int, ok bool) {
	e := s.nodes[slot].inputs[in]
	if e.src < 0 {
		return -1, -1, false
	}
	return e.src, e.out, true
}

// Add inserts a node of module type typeID into the lowest free slot.
// Parameters start at their defaults and inputs unconnected.
func (s *Store) Add(id NodeID, typeID string, desc *module.Descriptor) (int, error) {
	if s.Contains(id) {
		return -1, ErrNodeExists
	}
	if desc.NumInputs() > s.limits.MaxInputs || desc.NumOutputs() > s.limits.MaxOutputs {
		return -1, ErrTooManyPorts
	}
	if len(desc.Params) > s.limits.MaxParams {
		return -1, ErrTooManyParams
	}
	slot := -1
	for i := range s.nodes {
		if !s.nodes[i].used {
			slot = i
			break
		}
	}
	if slot < 0 {
		return -1, ErrFull
	}
	n := &s.nodes[slot]
	n.used = true
	n.id = id
	n.typeID = typeID
	n.desc = desc
	n.params = desc.Defaults(n.params[:cap(n.params)])
	n.inputs = n.inputs[:desc.NumInputs()]
	for i := range n.inputs {
		n.inputs[i] = edge{src: -1, out: -1}
	}
	s.count++
	s.dirty = true
	return slot, nil
}

// Remove deletes the node and every connection touching it.
func (s *Store) Remove(id NodeID) (int, error) {
	slot, ok := s.Lookup(id)
	if !ok {
		return -1, ErrNodeNotFound
	}
	for i := range s.nodes {
		if !s.nodes[i].used {
			continue
		}
		for j, e := range s.nodes[i].inputs {
			if e.src == slot {
				s.nodes[i].inputs[j] = edge{src: -1, out: -1}
			}
		}
	}
	s.free(slot)
	s.count--
	s.dirty = true
	return slot, nil
}

func (s *Store) free(slot int) {
	n := &s.nodes[slot]
	n.used = false
	n.id = 0
	n.typeID = ""
	n.desc = nil
	n.params = n.params[:0]
	n.inputs = n.inputs[:0]
}

// Clear removes all nodes.
func (s *Store) Clear() {
	for i := range s.nodes {
		if s.nodes[i].used {
			s.free(i)
		}
	}
	s.count = 0
	s.order = s.order[:0]
	s.dirty = false
}

// Connect links c.From's output c.FromSlot to c.To's input c.ToSlot.
// An input holds at most one connection: an existing one is replaced
// and replaced is true. The store is unchanged when an error is
// returned.
func (s *Store) Connect(c Connection) (replaced bool, err error) {
	src, ok := s.Lookup(c.From)
	if !ok {
		return false, ErrNodeNotFound
	}
	dst, ok := s.Lookup(c.To)
	if !ok {
		return false, ErrNodeNotFound
	}
	srcPort, ok := s.nodes[src].desc.Port(module.Output, c.FromSlot)
	if !ok {
		return false, ErrInvalidPort
	}
	dstPort, ok := s.nodes[dst].desc.Port(module.Input, c.ToSlot)
	if !ok {
		return false, ErrInvalidPort
	}
	if !signal.CanConnect(srcPort.Type, dstPort.Type) {
		return false, ErrIncompatible
	}
	current := s.nodes[dst].inputs[c.ToSlot]
	if current.src == src && current.out == c.FromSlot {
		return false, nil
	}
	if src == dst || s.reaches(src, dst) {
		return false, ErrCycle
	}
	s.nodes[dst].inputs[c.ToSlot] = edge{src: src, out: c.FromSlot}
	s.dirty = true
	return current.src >= 0, nil
}

// reaches reports whether target is upstream of slot, walking input
// edges backwards.
func (s *Store) reaches(slot, target int) bool {
	s.epoch++
	if s.epoch == 0 {
		for i := range s.seen {
			s.seen[i] = 0
		}
		s.epoch = 1
	}
	stack := append(s.stack[:0], slot)
	s.seen[slot] = s.epoch
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range s.nodes[cur].inputs {
			if e.src < 0 || s.seen[e.src] == s.epoch {
				continue
			}
			if e.src == target {
				s.stack = stack
				return true
			}
			s.seen[e.src] = s.epoch
			stack = append(stack, e.src)
		}
	}
	s.stack = stack
	return false
}

// Disconnect removes the connection of an input or every connection of
// an output. It returns the number of removed connections.
func (s *Store) Disconnect(id NodeID, slot int, dir module.Direction) (int, error) {
	n, ok := s.Lookup(id)
	if !ok {
		return 0, ErrNodeNotFound
	}
	if _, ok := s.nodes[n].desc.Port(dir, slot); !ok {
		return 0, ErrInvalidPort
	}
	removed := 0
	if dir == module.Input {
		if s.nodes[n].inputs[slot].src >= 0 {
			s.nodes[n].inputs[slot] = edge{src: -1, out: -1}
			removed = 1
		}
	} else {
		for i := range s.nodes {
			if !s.nodes[i].used {
				continue
			}
			for j, e := range s.nodes[i].inputs {
				if e.src == n && e.out == slot {
					s.nodes[i].inputs[j] = edge{src: -1, out: -1}
					removed++
				}
			}
		}
	}
	if removed == 0 {
		return 0, ErrNotConnected
	}
	s.dirty = true
	return removed, nil
}

// SetParam stores a clamped parameter value and returns it.
func (s *Store) SetParam(id NodeID, index int, value float32) (float32, error) {
	slot, ok := s.Lookup(id)
	if !ok {
		return 0, ErrNodeNotFound
	}
	n := &s.nodes[slot]
	if index < 0 || index >= len(n.params) {
		return 0, ErrInvalidParam
	}
	v := n.desc.Params[index].Clamp(value)
	n.params[index] = v
	return v, nil
}

// Connections returns all connections ordered by destination.
func (s *Store) Connections() []Connection {
	var conns []Connection
	for i := range s.nodes {
		if !s.nodes[i].used {
			continue
		}
		for j, e := range s.nodes[i].inputs {
			if e.src < 0 {
				continue
			}
			conns = append(conns, Connection{
				From:     s.nodes[e.src].id,
				FromSlot: e.out,
				To:       s.nodes[i].id,
				ToSlot:   j,
			})
		}
	}
	sort.Slice(conns, func(i, j int) bool {
		if conns[i].To != conns[j].To {
			return conns[i].To < conns[j].To
		}
		return conns[i].ToSlot < conns[j].ToSlot
	})
	return conns
}

// IDs returns the ids of all nodes in ascending order.
func (s *Store) IDs() []NodeID {
	ids := make([]NodeID, 0, s.count)
	for i := range s.nodes {
		if s.nodes[i].used {
			ids = append(ids, s.nodes[i].id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
