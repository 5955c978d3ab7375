// Package graph holds the directed module graph, its builder and the
// cycle, ordering and ranking algorithms that run over it.
package graph

import (
	"sort"

	"depscope/internal/extract"
)

// ExternalPrefix marks nodes that stand for external packages.
const ExternalPrefix = "ext:"

// Node is a vertex of the module graph.
type Node struct {
	ID         string `json:"id"`
	External   bool   `json:"external,omitempty"`
	Unresolved bool   `json:"unresolved,omitempty"`
}

// IsFile reports whether the node is a scanned source file.
func (n Node) IsFile() bool {
	return !n.External && !n.Unresolved
}

// Edge is a collapsed dependency between two nodes.
type Edge struct {
	From   string               `json:"from"`
	To     string               `json:"to"`
	Kinds  []extract.ImportKind `json:"kinds"`
	Weight int                  `json:"weight"`
}

// Graph is a sparse directed graph with index-based adjacency. Parallel
// edges are collapsed on insertion.
type Graph struct {
	nodes   []Node
	nodeIdx map[string]int

	edges   []Edge
	edgeIdx map[[2]int]int

	// outEdges[i] and inEdges[i] hold neighbour indices, self loops excluded.
	outEdges [][]int
	inEdges  [][]int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodeIdx: make(map[string]int),
		edgeIdx: make(map[[2]int]int),
	}
}

// AddNode adds n if no node with its ID exists and returns the node index.
func (g *Graph) AddNode(n Node) int {
	if idx, ok := g.nodeIdx[n.ID]; ok {
		return idx
	}
	idx := len(g.nodes)
	g.nodes = append(g.nodes, n)
	g.nodeIdx[n.ID] = idx
	g.outEdges = append(g.outEdges, nil)
	g.inEdges = append(g.inEdges, nil)
	return idx
}

// AddEdge records a dependency between two existing nodes. A repeated pair
// sums its weight and unions its kinds. It returns false when either
// endpoint is not in the graph.
func (g *Graph) AddEdge(from, to string, kind extract.ImportKind, weight int) bool {
	var kinds []extract.ImportKind
	if kind != "" {
		kinds = []extract.ImportKind{kind}
	}
	return g.MergeEdge(Edge{From: from, To: to, Kinds: kinds, Weight: weight})
}

// MergeEdge is AddEdge for an already collapsed edge: all of e.Kinds are
// unioned in and e.Weight is added once.
func (g *Graph) MergeEdge(e Edge) bool {
	fi, ok := g.nodeIdx[e.From]
	if !ok {
		return false
	}
	ti, ok := g.nodeIdx[e.To]
	if !ok {
		return false
	}
	if e.Weight < 1 {
		e.Weight = 1
	}

	key := [2]int{fi, ti}
	ei, exists := g.edgeIdx[key]
	if !exists {
		ei = len(g.edges)
		g.edgeIdx[key] = ei
		g.edges = append(g.edges, Edge{From: e.From, To: e.To, Kinds: []extract.ImportKind{}})
		if fi != ti {
			g.outEdges[fi] = append(g.outEdges[fi], ti)
			g.inEdges[ti] = append(g.inEdges[ti], fi)
		}
	}

	stored := &g.edges[ei]
	stored.Weight += e.Weight
	for _, k := range e.Kinds {
		if k != "" && !hasKind(stored.Kinds, k) {
			stored.Kinds = append(stored.Kinds, k)
		}
	}
	sort.Slice(stored.Kinds, func(i, j int) bool { return stored.Kinds[i] < stored.Kinds[j] })
	return true
}

func hasKind(kinds []extract.ImportKind, k extract.ImportKind) bool {
	for _, x := range kinds {
		if x == k {
			return true
		}
	}
	return false
}

// NumNodes returns the number of nodes in the graph.
func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

// NumEdges returns the number of collapsed edges, self loops included.
func (g *Graph) NumEdges() int {
	return len(g.edges)
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// NodeIDs returns the node IDs in insertion order.
func (g *Graph) NodeIDs() []string {
	out := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.ID
	}
	return out
}

// Node looks up a node by ID.
func (g *Graph) Node(id string) (Node, bool) {
	idx, ok := g.nodeIdx[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[idx], true
}

// HasNode checks if a node exists in the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodeIdx[id]
	return ok
}

// Edges returns the edges ordered by source then target node index.
func (g *Graph) Edges() []Edge {
	keys := sortedKeys(g.edgeIdx)
	out := make([]Edge, len(keys))
	for i, k := range keys {
		e := g.edges[g.edgeIdx[k]]
		kinds := make([]extract.ImportKind, len(e.Kinds))
		copy(kinds, e.Kinds)
		e.Kinds = kinds
		out[i] = e
	}
	return out
}

// Edge returns the edge from -> to.
func (g *Graph) Edge(from, to string) (Edge, bool) {
	fi, ok := g.nodeIdx[from]
	if !ok {
		return Edge{}, false
	}
	ti, ok := g.nodeIdx[to]
	if !ok {
		return Edge{}, false
	}
	ei, ok := g.edgeIdx[[2]int{fi, ti}]
	if !ok {
		return Edge{}, false
	}
	return g.edges[ei], true
}

// Successors returns the distinct targets of id, excluding id itself.
func (g *Graph) Successors(id string) []string {
	return g.ids(g.outEdges, id)
}

func (g *Graph) ids(adj [][]int, id string) []string {
	idx, ok := g.nodeIdx[id]
	if !ok {
		return nil
	}
	out := make([]string, len(adj[idx]))
	for i, n := range adj[idx] {
		out[i] = g.nodes[n].ID
	}
	return out
}

// OutDegree is the number of distinct targets of id, self loops excluded.
func (g *Graph) OutDegree(id string) int {
	if idx, ok := g.nodeIdx[id]; ok {
		return len(g.outEdges[idx])
	}
	return 0
}

// InDegree is the number of distinct sources of id, self loops excluded.
func (g *Graph) InDegree(id string) int {
	if idx, ok := g.nodeIdx[id]; ok {
		return len(g.inEdges[idx])
	}
	return 0
}

// HasSelfLoop reports whether id imports itself.
func (g *Graph) HasSelfLoop(id string) bool {
	idx, ok := g.nodeIdx[id]
	if !ok {
		return false
	}
	_, ok = g.edgeIdx[[2]int{idx, idx}]
	return ok
}

// FileCount is the number of nodes that are scanned files.
func (g *Graph) FileCount() int {
	n := 0
	for _, node := range g.nodes {
		if node.IsFile() {
			n++
		}
	}
	return n
}

// Condense maps every node to a group and returns the graph of groups.
// Edges inside a group are dropped and edges between the same pair of
// groups are collapsed. Nodes mapped to "" are left out.
func (g *Graph) Condense(groupOf func(Node) string) *Graph {
	groupIDs := make([]string, len(g.nodes))
	var names []string
	seen := make(map[string]bool)
	for i, n := range g.nodes {
		name := groupOf(n)
		groupIDs[i] = name
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := New()
	for _, name := range names {
		out.AddNode(Node{ID: name})
	}
	for _, k := range sortedKeys(g.edgeIdx) {
		from, to := groupIDs[k[0]], groupIDs[k[1]]
		if from == "" || to == "" || from == to {
			continue
		}
		e := g.edges[g.edgeIdx[k]]
		out.MergeEdge(Edge{From: from, To: to, Kinds: e.Kinds, Weight: e.Weight})
	}
	return out
}

func sortedKeys(m map[[2]int]int) [][2]int {
	keys := make([][2]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	return keys
}
