package metrics

import (
	"depscope/internal/graph"
	"depscope/internal/grouping"
)

// GroupMetrics scores how tightly a group hangs together and how much it
// leans on the rest of the project.
type GroupMetrics struct {
	Name          string   `json:"name"`
	Members       []string `json:"members"`
	Size          int      `json:"size"`
	InternalEdges int      `json:"internalEdges"`
	ExternalEdges int      `json:"externalEdges"`
	Cohesion      float64  `json:"cohesion"`
	Coupling      float64  `json:"coupling"`
	Level         string   `json:"level"`
}

// ForGroups computes cohesion and coupling for each group. Only edges
// between file nodes count and self imports are ignored.
//
// cohesion = internal / (n*(n-1)) for n > 1, else 1
// coupling = crossing / (n*m + 1), m = files outside the group
func ForGroups(g *graph.Graph, groups []grouping.Group) []GroupMetrics {
	groupOf := grouping.Index(groups)
	files := g.FileCount()

	internal := make(map[string]int)
	crossing := make(map[string]int)
	for _, e := range g.Edges() {
		if e.From == e.To || !isFile(g, e.From) || !isFile(g, e.To) {
			continue
		}
		from, okFrom := groupOf[e.From]
		to, okTo := groupOf[e.To]
		switch {
		case okFrom && okTo && from == to:
			internal[from]++
		default:
			if okFrom {
				crossing[from]++
			}
			if okTo {
				crossing[to]++
			}
		}
	}

	out := make([]GroupMetrics, 0, len(groups))
	for _, grp := range groups {
		n := len(grp.Members)
		m := files - n
		if m < 0 {
			m = 0
		}
		gm := GroupMetrics{
			Name:          grp.Name,
			Members:       grp.Members,
			Size:          n,
			InternalEdges: internal[grp.Name],
			ExternalEdges: crossing[grp.Name],
			Cohesion:      1,
		}
		// Single-member groups keep cohesion 1 and coupling 0.
		if n > 1 {
			gm.Cohesion = clamp01(float64(gm.InternalEdges) / float64(n*(n-1)))
			gm.Coupling = clamp01(float64(gm.ExternalEdges) / float64(n*m+1))
		}
		gm.Level = Level(gm.Cohesion, gm.Coupling)
		out = append(out, gm)
	}
	return out
}

func isFile(g *graph.Graph, id string) bool {
	n, ok := g.Node(id)
	return ok && n.IsFile()
}

// Level labels a group: "high" when cohesion clearly beats coupling,
// "low" when coupling dominates, else "medium".
func Level(cohesion, coupling float64) string {
	switch {
	case cohesion >= 0.5 && coupling <= 0.1:
		return "high"
	case coupling > cohesion:
		return "low"
	default:
		return "medium"
	}
}
