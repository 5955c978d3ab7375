package graph

// Stats summarizes the shape of a graph.
type Stats struct {
	Nodes      int `json:"nodes"`
	Files      int `json:"files"`
	External   int `json:"external"`
	Unresolved int `json:"unresolved"`
	Edges      int `json:"edges"`
	SelfLoops  int `json:"selfLoops"`
	// Isolated nodes have no edges other than self loops.
	Isolated int `json:"isolated"`
	// EntryPoints are files nothing imports; Leaves import nothing.
	EntryPoints int     `json:"entryPoints"`
	Leaves      int     `json:"leaves"`
	Density     float64 `json:"density"`
	AvgDegree   float64 `json:"avgDegree"`
	Cyclic      bool    `json:"cyclic"`
}

// Stats computes node, edge and degree statistics. Density is the share of
// possible directed edges present, self loops excluded; AvgDegree counts
// both directions.
func (g *Graph) Stats() Stats {
	s := Stats{
		Nodes: len(g.nodes),
		Edges: len(g.edges),
	}
	for i, n := range g.nodes {
		switch {
		case n.External:
			s.External++
		case n.Unresolved:
			s.Unresolved++
		default:
			s.Files++
		}
		in, out := len(g.inEdges[i]), len(g.outEdges[i])
		if in == 0 && out == 0 {
			s.Isolated++
		}
		if n.IsFile() && in == 0 && out > 0 {
			s.EntryPoints++
		}
		if n.IsFile() && out == 0 && in > 0 {
			s.Leaves++
		}
		if _, ok := g.edgeIdx[[2]int{i, i}]; ok {
			s.SelfLoops++
		}
	}

	links := s.Edges - s.SelfLoops
	if s.Nodes > 1 {
		s.Density = float64(links) / float64(s.Nodes*(s.Nodes-1))
	}
	if s.Nodes > 0 {
		s.AvgDegree = 2 * float64(links) / float64(s.Nodes)
	}
	s.Cyclic = HasCycle(g)
	return s
}
