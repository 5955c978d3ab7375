package graph

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

func TestFindCycles_ThreeNodeCycle(t *testing.T) {
	g := newTestGraph(
		[]string{"A", "B", "C"},
		[][2]string{{"A", "B"}, {"B", "C"}, {"C", "A"}},
	)

	cycles := FindCycles(g, CycleOptions{})
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(cycles))
	}
	c := cycles[0]
	if c.Length != 3 || c.Severity != SeverityMedium || c.AffectedNodes != 0 {
		t.Errorf("cycle = %+v, want length 3 medium with 0 affected", c)
	}
	if strings.Join(c.Nodes, ",") != "A,B,C" {
		t.Errorf("Nodes = %v, want [A B C]", c.Nodes)
	}
	if len(c.Suggestions) != 5 {
		t.Errorf("expected weakest link + 4 generic suggestions, got %d", len(c.Suggestions))
	}
	if !strings.Contains(c.Description, "A -> B -> C -> A") {
		t.Errorf("Description = %q", c.Description)
	}
}

func TestFindCycles_TwoNodeAndSelfImport(t *testing.T) {
	g := newTestGraph(
		[]string{"A", "B", "S"},
		[][2]string{{"A", "B"}, {"B", "A"}, {"S", "S"}},
	)

	cycles := FindCycles(g, CycleOptions{})
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d: %+v", len(cycles), cycles)
	}
	if cycles[0].Length != 2 || cycles[0].Severity != SeverityLow {
		t.Errorf("cycle = %+v, want length 2 low", cycles[0])
	}

	self := newTestGraph([]string{"S"}, [][2]string{{"S", "S"}})
	if HasCycle(self) || !IsDAG(self) {
		t.Error("a direct self import is not a cycle")
	}
	if got := FindCycles(self, CycleOptions{}); len(got) != 0 {
		t.Errorf("FindCycles(self) = %v", got)
	}
}

func TestFindCycles_Empty(t *testing.T) {
	if got := FindCycles(New(), CycleOptions{}); got == nil || len(got) != 0 {
		t.Errorf("FindCycles(empty) = %v, want empty non-nil", got)
	}
	g := newTestGraph([]string{"a", "b"}, nil)
	if got := FindCycles(g, CycleOptions{}); len(got) != 0 {
		t.Errorf("FindCycles(no edges) = %v", got)
	}
}

func TestSeverityFor(t *testing.T) {
	tests := []struct {
		length, affected int
		want             Severity
	}{
		{2, 0, SeverityLow},
		{2, 1, SeverityLow},
		{2, 2, SeverityMedium},
		{3, 0, SeverityMedium},
		{4, 0, SeverityHigh},
		{2, 5, SeverityHigh},
		{5, 0, SeverityCritical},
		{2, 10, SeverityCritical},
	}
	for _, tt := range tests {
		if got := severityFor(tt.length, tt.affected); got != tt.want {
			t.Errorf("severityFor(%d, %d) = %s, want %s", tt.length, tt.affected, got, tt.want)
		}
	}
}

func TestFindCycles_AffectedNodesAndSorting(t *testing.T) {
	// Low cycle x<->y first in node order, high cycle p<->q with five
	// dependents.
	nodes := []string{"a1", "a2", "a3", "a4", "a5", "p", "q", "x", "y"}
	edges := [][2]string{{"x", "y"}, {"y", "x"}, {"p", "q"}, {"q", "p"}}
	for _, a := range []string{"a1", "a2", "a3", "a4", "a5"} {
		edges = append(edges, [2]string{a, "p"})
	}
	g := newTestGraph(nodes, edges)

	cycles := FindCycles(g, CycleOptions{})
	if len(cycles) != 2 {
		t.Fatalf("expected 2 cycles, got %d", len(cycles))
	}
	if cycles[0].Severity != SeverityHigh || cycles[0].AffectedNodes != 5 {
		t.Errorf("first cycle = %+v, want high with 5 affected", cycles[0])
	}
	if cycles[1].Severity != SeverityLow {
		t.Errorf("second cycle severity = %s, want low", cycles[1].Severity)
	}

	capped := FindCycles(g, CycleOptions{MaxCycles: 1})
	if len(capped) != 1 || capped[0].Severity != SeverityHigh {
		t.Errorf("MaxCycles should keep the most severe cycle, got %+v", capped)
	}
}

func TestFindCycles_WeakestLink(t *testing.T) {
	deps := []resolveDep{
		{"a", "b", 5},
		{"b", "c", 1},
		{"c", "a", 3},
	}
	g := buildWeighted([]string{"a", "b", "c"}, deps)

	c := FindCycles(g, CycleOptions{})[0]
	if c.WeakestLink == nil || c.WeakestLink.From != "b" || c.WeakestLink.To != "c" || c.WeakestLink.Weight != 1 {
		t.Errorf("WeakestLink = %+v, want b -> c weight 1", c.WeakestLink)
	}
	if !strings.Contains(c.Suggestions[0], "b -> c") {
		t.Errorf("first suggestion should name the weakest link, got %q", c.Suggestions[0])
	}
}

func TestTopologicalOrder(t *testing.T) {
	g := newTestGraph(
		[]string{"app", "db", "models", "util"},
		[][2]string{{"app", "models"}, {"models", "db"}, {"app", "util"}, {"db", "util"}, {"util", "util"}},
	)
	order, err := TopologicalOrder(g)
	if err != nil {
		t.Fatalf("TopologicalOrder() error = %v", err)
	}
	pos := map[string]int{}
	for i, id := range order {
		pos[id] = i
	}
	for _, e := range g.Edges() {
		if e.From != e.To && pos[e.To] > pos[e.From] {
			t.Errorf("%s must come before its importer %s: %v", e.To, e.From, order)
		}
	}

	cyclic := newTestGraph([]string{"a", "b"}, [][2]string{{"a", "b"}, {"b", "a"}})
	if _, err := TopologicalOrder(cyclic); err != ErrCyclic {
		t.Errorf("expected ErrCyclic, got %v", err)
	}
}

func TestStronglyConnected_DeepChain(t *testing.T) {
	// A 100k-node ring walks the explicit frame stack to full depth.
	const n = 100000
	nodes := make([]string, n)
	edges := make([][2]string, n)
	for i := 0; i < n; i++ {
		nodes[i] = fmt.Sprintf("n%06d", i)
	}
	for i := 0; i < n; i++ {
		edges[i] = [2]string{nodes[i], nodes[(i+1)%n]}
	}
	g := newTestGraph(nodes, edges)

	sccs := StronglyConnected(g)
	if len(sccs) != 1 || len(sccs[0]) != n {
		t.Fatalf("expected one component of %d nodes, got %d components", n, len(sccs))
	}
}

// TestStronglyConnected_MatchesGonum cross-checks the iterative Tarjan
// against gonum on random graphs.
func TestStronglyConnected_MatchesGonum(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		n := 1 + rng.Intn(40)
		m := rng.Intn(n * 3)

		nodes := make([]string, n)
		for i := range nodes {
			nodes[i] = fmt.Sprintf("f%02d", i)
		}
		var edges [][2]string
		for i := 0; i < m; i++ {
			edges = append(edges, [2]string{nodes[rng.Intn(n)], nodes[rng.Intn(n)]})
		}

		g := newTestGraph(nodes, edges)
		got := canonical(StronglyConnected(g))
		want := canonical(gonumSCC(nodes, edges))
		if got != want {
			t.Fatalf("round %d: components differ\n got: %s\nwant: %s", round, got, want)
		}

		hasMulti := strings.Contains(want, ",")
		if HasCycle(g) != hasMulti || IsDAG(g) == hasMulti {
			t.Fatalf("round %d: HasCycle=%v IsDAG=%v but gonum multi-node SCC=%v", round, HasCycle(g), IsDAG(g), hasMulti)
		}
		if (len(FindCycles(g, CycleOptions{})) > 0) != HasCycle(g) {
			t.Fatalf("round %d: FindCycles disagrees with HasCycle", round)
		}
		for _, c := range FindCycles(g, CycleOptions{}) {
			assertMutuallyReachable(t, g, c.Nodes)
		}
	}
}

func gonumSCC(nodes []string, edges [][2]string) [][]string {
	dg := simple.NewDirectedGraph()
	idOf := map[string]int64{}
	for i, n := range nodes {
		idOf[n] = int64(i)
		dg.AddNode(simple.Node(int64(i)))
	}
	for _, e := range edges {
		if e[0] == e[1] {
			continue
		}
		dg.SetEdge(simple.Edge{F: simple.Node(idOf[e[0]]), T: simple.Node(idOf[e[1]])})
	}
	var out [][]string
	for _, comp := range topo.TarjanSCC(dg) {
		var ids []string
		for _, node := range comp {
			ids = append(ids, nodes[node.ID()])
		}
		sort.Strings(ids)
		out = append(out, ids)
	}
	return out
}

func canonical(sccs [][]string) string {
	parts := make([]string, len(sccs))
	for i, comp := range sccs {
		c := append([]string(nil), comp...)
		sort.Strings(c)
		parts[i] = strings.Join(c, ",")
	}
	sort.Strings(parts)
	return strings.Join(parts, " | ")
}

func assertMutuallyReachable(t *testing.T, g *Graph, members []string) {
	t.Helper()
	for _, from := range members {
		reach := map[string]bool{}
		stack := []string{from}
		for len(stack) > 0 {
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, w := range g.Successors(v) {
				if !reach[w] {
					reach[w] = true
					stack = append(stack, w)
				}
			}
		}
		for _, to := range members {
			if !reach[to] {
				t.Fatalf("%s cannot reach %s in cycle %v", from, to, members)
			}
		}
	}
}

type resolveDep struct {
	from, to string
	weight   int
}

func buildWeighted(nodes []string, deps []resolveDep) *Graph {
	g := New()
	for _, n := range nodes {
		g.AddNode(Node{ID: n})
	}
	for _, d := range deps {
		g.AddEdge(d.from, d.to, "import", d.weight)
	}
	return g
}
