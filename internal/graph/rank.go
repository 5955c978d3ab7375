package graph

import (
	"math"
	"sort"
)

// RankOptions configures Rank.
type RankOptions struct {
	// Damping is the probability of following an edge vs teleporting (default: 0.85)
	Damping float64

	// MaxIterations is the maximum number of power iterations (default: 50)
	MaxIterations int

	// Tolerance for convergence detection (default: 1e-6)
	Tolerance float64

	// TopK is the number of top results to return (default: 10)
	TopK int
}

// DefaultRankOptions returns sensible defaults for Rank.
func DefaultRankOptions() RankOptions {
	return RankOptions{
		Damping:       0.85,
		MaxIterations: 50,
		Tolerance:     1e-6,
		TopK:          10,
	}
}

// Ranked is one module with its centrality score.
type Ranked struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
	// Dependents is the number of modules importing this one.
	Dependents int `json:"dependents"`
}

// Rank scores file nodes by PageRank over import edges, weighted by edge
// weight, so that heavily and transitively imported modules score highest.
// External and unresolved nodes are ignored.
func (g *Graph) Rank(opts RankOptions) []Ranked {
	def := DefaultRankOptions()
	if opts.Damping <= 0 || opts.Damping >= 1 {
		opts.Damping = def.Damping
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = def.MaxIterations
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = def.Tolerance
	}
	if opts.TopK <= 0 {
		opts.TopK = def.TopK
	}

	var files []int
	for i, n := range g.nodes {
		if n.IsFile() {
			files = append(files, i)
		}
	}
	if len(files) == 0 {
		return []Ranked{}
	}

	n := len(g.nodes)
	outWeight := make([]float64, n)
	for _, v := range files {
		for _, w := range g.outEdges[v] {
			if g.nodes[w].IsFile() {
				outWeight[v] += float64(g.edges[g.edgeIdx[[2]int{v, w}]].Weight)
			}
		}
	}

	base := 1.0 / float64(len(files))
	scores := make([]float64, n)
	for _, v := range files {
		scores[v] = base
	}
	next := make([]float64, n)

	for iter := 0; iter < opts.MaxIterations; iter++ {
		// Mass of modules without file imports is spread evenly.
		dangling := 0.0
		for _, v := range files {
			if outWeight[v] == 0 {
				dangling += scores[v]
			}
		}
		teleport := (1-opts.Damping)*base + opts.Damping*dangling*base
		for _, v := range files {
			next[v] = teleport
		}
		for _, v := range files {
			if outWeight[v] == 0 {
				continue
			}
			for _, w := range g.outEdges[v] {
				if !g.nodes[w].IsFile() {
					continue
				}
				weight := float64(g.edges[g.edgeIdx[[2]int{v, w}]].Weight)
				next[w] += opts.Damping * scores[v] * weight / outWeight[v]
			}
		}

		diff := 0.0
		for _, v := range files {
			diff += math.Abs(next[v] - scores[v])
		}
		scores, next = next, scores
		if diff < opts.Tolerance {
			break
		}
	}

	out := make([]Ranked, 0, len(files))
	for _, v := range files {
		out = append(out, Ranked{
			ID:         g.nodes[v].ID,
			Score:      scores[v],
			Dependents: len(g.inEdges[v]),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > opts.TopK {
		out = out[:opts.TopK]
	}
	return out
}
