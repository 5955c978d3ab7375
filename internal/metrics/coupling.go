// Package metrics computes coupling per module and cohesion per module
// group over the dependency graph.
package metrics

import (
	"math"
	"regexp"

	"depscope/internal/graph"
)

// Coupling holds the Martin metrics of one module.
type Coupling struct {
	Node string `json:"node"`
	// Afferent is the number of distinct modules importing this one.
	Afferent int `json:"afferent"`
	// Efferent is the number of distinct modules this one imports.
	Efferent     int     `json:"efferent"`
	Instability  float64 `json:"instability"`
	Abstractness float64 `json:"abstractness"`
	Distance     float64 `json:"distance"`
}

var abstractRe = regexp.MustCompile(`(?i)(interface|abstract|types?|contract|protocol)|\.d\.ts$`)

// IsAbstract reports whether a path looks like it holds abstractions only.
func IsAbstract(path string) bool {
	return abstractRe.MatchString(path)
}

// NodeCoupling computes the metrics of one node. Self imports do not
// count.
func NodeCoupling(g *graph.Graph, id string) Coupling {
	c := Coupling{
		Node:     id,
		Afferent: g.InDegree(id),
		Efferent: g.OutDegree(id),
	}
	if total := c.Afferent + c.Efferent; total > 0 {
		c.Instability = float64(c.Efferent) / float64(total)
	}
	if IsAbstract(id) {
		c.Abstractness = 1
	}
	c.Distance = clamp01(math.Abs(c.Abstractness + c.Instability - 1))
	return c
}

// ForGraph computes coupling for every file node, in node order.
func ForGraph(g *graph.Graph) []Coupling {
	out := []Coupling{}
	for _, n := range g.Nodes() {
		if n.IsFile() {
			out = append(out, NodeCoupling(g, n.ID))
		}
	}
	return out
}

// Summary aggregates coupling over all modules.
type Summary struct {
	Modules        int     `json:"modules"`
	AvgInstability float64 `json:"avgInstability"`
	AvgDistance    float64 `json:"avgDistance"`
	// Stable modules have instability <= 0.2 and unstable ones >= 0.8,
	// counting only modules with edges.
	Stable   int `json:"stable"`
	Unstable int `json:"unstable"`
	// MostDepended is the module with the highest afferent coupling.
	MostDepended string `json:"mostDepended,omitempty"`
	// MostDependent is the module with the highest efferent coupling.
	MostDependent string `json:"mostDependent,omitempty"`
}

// Summarize aggregates the per-module metrics. Ties keep the first module.
func Summarize(cs []Coupling) Summary {
	s := Summary{Modules: len(cs)}
	if len(cs) == 0 {
		return s
	}
	maxCa, maxCe := 0, 0
	for _, c := range cs {
		s.AvgInstability += c.Instability
		s.AvgDistance += c.Distance
		if c.Afferent+c.Efferent > 0 {
			switch {
			case c.Instability <= 0.2:
				s.Stable++
			case c.Instability >= 0.8:
				s.Unstable++
			}
		}
		if c.Afferent > maxCa {
			maxCa, s.MostDepended = c.Afferent, c.Node
		}
		if c.Efferent > maxCe {
			maxCe, s.MostDependent = c.Efferent, c.Node
		}
	}
	s.AvgInstability /= float64(len(cs))
	s.AvgDistance /= float64(len(cs))
	return s
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
