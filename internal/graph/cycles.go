package graph

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Severity ranks how damaging a cycle is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities lists the levels from most to least severe.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

// Link is one edge of a cycle.
type Link struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Weight int    `json:"weight"`
}

// Cycle is a strongly connected component with at least two members.
type Cycle struct {
	Nodes         []string `json:"nodes"`
	Length        int      `json:"length"`
	Severity      Severity `json:"severity"`
	AffectedNodes int      `json:"affectedNodes"`
	Description   string   `json:"description"`
	Suggestions   []string `json:"suggestions"`
	WeakestLink   *Link    `json:"weakestLink,omitempty"`
}

// CycleOptions configures FindCycles.
type CycleOptions struct {
	// MaxCycles caps the number of cycles returned after sorting. 0 means
	// no limit.
	MaxCycles int
}

var genericSuggestions = []string{
	"Extract the code both sides need into a shared module that neither imports back",
	"Pass collaborators in through dependency injection instead of importing them",
	"Depend on an interface or protocol module rather than the concrete implementation",
	"Review the module boundaries of the cycle members for misplaced responsibilities",
}

// orderBudget bounds the search for a simple circuit through a component.
const orderBudget = 10000

// FindCycles reports every strongly connected component of g with two or
// more members, sorted by severity (critical first). Direct self imports
// are never cycles.
func FindCycles(g *Graph, opts CycleOptions) []Cycle {
	cycles := []Cycle{}
	for _, comp := range g.stronglyConnected() {
		if len(comp) < 2 {
			continue
		}
		cycles = append(cycles, g.newCycle(comp))
	}

	sort.SliceStable(cycles, func(i, j int) bool {
		return cycles[i].Severity.rank() > cycles[j].Severity.rank()
	})
	if opts.MaxCycles > 0 && len(cycles) > opts.MaxCycles {
		cycles = cycles[:opts.MaxCycles]
	}
	return cycles
}

// HasCycle reports whether g has a strongly connected component of two or
// more nodes.
func HasCycle(g *Graph) bool {
	for _, comp := range g.stronglyConnected() {
		if len(comp) > 1 {
			return true
		}
	}
	return false
}

// IsDAG reports whether g is acyclic, ignoring self loops.
func IsDAG(g *Graph) bool {
	return !HasCycle(g)
}

// ErrCyclic is returned by TopologicalOrder for graphs with a cycle.
var ErrCyclic = errors.New("graph contains a dependency cycle")

// TopologicalOrder lists nodes so that every dependency comes before its
// importers. Ties are broken by node order, so the result is stable.
func TopologicalOrder(g *Graph) ([]string, error) {
	n := len(g.nodes)
	pending := make([]int, n)
	for v := 0; v < n; v++ {
		pending[v] = len(g.outEdges[v])
	}

	var ready []int
	for v := 0; v < n; v++ {
		if pending[v] == 0 {
			ready = append(ready, v)
		}
	}

	order := make([]string, 0, n)
	for len(ready) > 0 {
		sort.Ints(ready)
		v := ready[0]
		ready = ready[1:]
		order = append(order, g.nodes[v].ID)
		for _, importer := range g.inEdges[v] {
			pending[importer]--
			if pending[importer] == 0 {
				ready = append(ready, importer)
			}
		}
	}
	if len(order) != n {
		return nil, ErrCyclic
	}
	return order, nil
}

func (g *Graph) newCycle(comp []int) Cycle {
	members := make(map[int]bool, len(comp))
	for _, v := range comp {
		members[v] = true
	}
	order := g.cycleOrder(comp, members)

	affected := make(map[int]bool)
	for _, v := range comp {
		for _, p := range g.inEdges[v] {
			if !members[p] {
				affected[p] = true
			}
		}
	}

	ids := make([]string, len(order))
	for i, v := range order {
		ids[i] = g.nodes[v].ID
	}

	c := Cycle{
		Nodes:         ids,
		Length:        len(ids),
		AffectedNodes: len(affected),
		Severity:      severityFor(len(ids), len(affected)),
		WeakestLink:   g.weakestLink(order, members),
	}
	c.Description = fmt.Sprintf("Circular dependency between %d modules: %s -> %s",
		c.Length, strings.Join(ids, " -> "), ids[0])
	if c.AffectedNodes > 0 {
		c.Description += fmt.Sprintf(" (%d dependent modules outside the cycle)", c.AffectedNodes)
	}

	if c.WeakestLink != nil {
		c.Suggestions = append(c.Suggestions, fmt.Sprintf(
			"Break the weakest link %s -> %s (weight %d) by moving what it imports or inverting the dependency",
			c.WeakestLink.From, c.WeakestLink.To, c.WeakestLink.Weight))
	}
	c.Suggestions = append(c.Suggestions, genericSuggestions...)
	return c
}

func severityFor(length, affected int) Severity {
	switch {
	case length >= 5 || affected >= 10:
		return SeverityCritical
	case length >= 4 || affected >= 5:
		return SeverityHigh
	case length >= 3 || affected >= 2:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// cycleOrder starts at the member with the lowest ID and looks for a
// simple circuit through every member, preferring lower IDs. When none is
// found within the budget it falls back to depth-first discovery order
// inside the component.
func (g *Graph) cycleOrder(comp []int, members map[int]bool) []int {
	start := comp[0]
	for _, v := range comp[1:] {
		if g.nodes[v].ID < g.nodes[start].ID {
			start = v
		}
	}

	succ := func(v int) []int {
		var out []int
		for _, w := range g.outEdges[v] {
			if members[w] {
				out = append(out, w)
			}
		}
		sort.Slice(out, func(i, j int) bool { return g.nodes[out[i]].ID < g.nodes[out[j]].ID })
		return out
	}

	path := []int{start}
	onPath := map[int]bool{start: true}
	steps := 0
	var search func(v int) bool
	search = func(v int) bool {
		if len(path) == len(comp) {
			_, ok := g.edgeIdx[[2]int{v, start}]
			return ok
		}
		for _, w := range succ(v) {
			if onPath[w] {
				continue
			}
			if steps++; steps > orderBudget {
				return false
			}
			path = append(path, w)
			onPath[w] = true
			if search(w) {
				return true
			}
			path = path[:len(path)-1]
			onPath[w] = false
		}
		return false
	}
	if search(start) {
		return path
	}

	order := make([]int, 0, len(comp))
	seen := map[int]bool{}
	stack := []int{start}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[v] {
			continue
		}
		seen[v] = true
		order = append(order, v)
		next := succ(v)
		for i := len(next) - 1; i >= 0; i-- {
			if !seen[next[i]] {
				stack = append(stack, next[i])
			}
		}
	}
	return order
}

// weakestLink picks the lowest-weight edge between consecutive members of
// order, wrapping around. Ties go to the earliest edge. When consecutive
// members are not directly linked, any edge inside the component is used.
func (g *Graph) weakestLink(order []int, members map[int]bool) *Link {
	var best *Link
	consider := func(from, to int) {
		ei, ok := g.edgeIdx[[2]int{from, to}]
		if !ok {
			return
		}
		e := g.edges[ei]
		if best == nil || e.Weight < best.Weight {
			best = &Link{From: e.From, To: e.To, Weight: e.Weight}
		}
	}

	for i, v := range order {
		consider(v, order[(i+1)%len(order)])
	}
	if best != nil {
		return best
	}
	for _, v := range order {
		for _, w := range g.outEdges[v] {
			if members[w] {
				consider(v, w)
			}
		}
	}
	return best
}
