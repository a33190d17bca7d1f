package graph

// Order returns the node slots in processing order: every node comes
// after all nodes feeding it, ties are broken by ascending node id.
// The order is cached until the topology changes. The returned slice
// is owned by the store.
func (s *Store) Order() ([]int, error) {
	if !s.dirty {
		return s.order, nil
	}
	s.buildOutgoing()

	s.ready = s.ready[:0]
	for i := range s.nodes {
		if s.nodes[i].used && s.indegree[i] == 0 {
			s.push(i)
		}
	}
	order := s.order[:0]
	for len(s.ready) > 0 {
		slot := s.pop()
		order = append(order, slot)
		for _, next := range s.outList[s.outStart[slot]:s.outStart[slot+1]] {
			s.indegree[next]--
			if s.indegree[next] == 0 {
				s.push(next)
			}
		}
	}
	s.order = order
	if len(order) != s.count {
		return order, ErrCorrupt
	}
	s.dirty = false
	return order, nil
}

// buildOutgoing fills indegree and a compressed adjacency list of
// outgoing edges per slot.
func (s *Store) buildOutgoing() {
	for i := range s.indegree {
		s.indegree[i] = 0
		s.outStart[i] = 0
	}
	s.outStart[len(s.nodes)] = 0
	for i := range s.nodes {
		for _, e := range s.nodes[i].inputs {
			if e.src >= 0 {
				s.indegree[i]++
				s.outStart[e.src+1]++
			}
		}
	}
	for i := 1; i < len(s.outStart); i++ {
		s.outStart[i] += s.outStart[i-1]
	}
	// stack doubles as the per slot fill cursor
	fill := s.stack[:0]
	for i := 0; i < len(s.nodes); i++ {
		fill = append(fill, s.outStart[i])
	}
	for i := range s.nodes {
		for _, e := range s.nodes[i].inputs {
			if e.src >= 0 {
				s.outList[fill[e.src]] = i
				fill[e.src]++
			}
		}
	}
	s.stack = fill[:0]
}

// push and pop keep ready as a binary min-heap keyed by node id.
func (s *Store) push(slot int) {
	s.ready = append(s.ready, slot)
	i := len(s.ready) - 1
	for i > 0 {
		parent := (i - 1) / 2
		if !s.less(s.ready[i], s.ready[parent]) {
			break
		}
		s.ready[i], s.ready[parent] = s.ready[parent], s.ready[i]
		i = parent
	}
}

func (s *Store) pop() int {
	top := s.ready[0]
	last := len(s.ready) - 1
	s.ready[0] = s.ready[last]
	s.ready = s.ready[:last]
	i := 0
	for {
		smallest := i
		l, r := 2*i+1, 2*i+2
		if l < last && s.less(s.ready[l], s.ready[smallest]) {
			smallest = l
		}
		if r < last && s.less(s.ready[r], s.ready[smallest]) {
			smallest = r
		}
		if smallest == i {
			return top
		}
		s.ready[i], s.ready[smallest] = s.ready[smallest], s.ready[i]
		i = smallest
	}
}

func (s *Store) less(a, b int) bool {
	return s.nodes[a].id < s.nodes[b].id
}
