package graph

// NodeState is the saved state of a node.
type NodeState struct {
	ID     NodeID    `json:"id" yaml:"id"`
	Type   string    `json:"type" yaml:"type"`
	Params []float32 `json:"params,omitempty" yaml:"params,omitempty"`
}

// Snapshot is a copy of the topology and parameter values.
type Snapshot struct {
	Nodes       []NodeState  `json:"nodes" yaml:"nodes"`
	Connections []Connection `json:"connections" yaml:"connections"`
}

// Snapshot copies the store. Nodes are ordered by id.
func (s *Store) Snapshot() Snapshot {
	ids := s.IDs()
	snap := Snapshot{
		Nodes:       make([]NodeState, 0, len(ids)),
		Connections: s.Connections(),
	}
	for _, id := range ids {
		slot, _ := s.Lookup(id)
		n := &s.nodes[slot]
		snap.Nodes = append(snap.Nodes, NodeState{
			ID:     id,
			Type:   n.typeID,
			Params: append([]float32(nil), n.params...),
		})
	}
	return snap
}
