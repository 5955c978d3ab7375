package graph

import "sort"

type tarjanFrame struct {
	v    int
	next int
}

// stronglyConnected runs Tarjan's algorithm with an explicit frame stack
// and returns the components as node indices, in the order they complete.
func (g *Graph) stronglyConnected() [][]int {
	n := len(g.nodes)
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}

	var (
		counter int
		stack   []int
		frames  []tarjanFrame
		sccs    [][]int
	)

	visit := func(v int) {
		index[v] = counter
		low[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true
		frames = append(frames, tarjanFrame{v: v})
	}

	for s := 0; s < n; s++ {
		if index[s] != -1 {
			continue
		}
		visit(s)

		for len(frames) > 0 {
			top := len(frames) - 1
			v := frames[top].v
			if succ := g.outEdges[v]; frames[top].next < len(succ) {
				w := succ[frames[top].next]
				frames[top].next++
				if index[w] == -1 {
					visit(w)
				} else if onStack[w] && index[w] < low[v] {
					low[v] = index[w]
				}
				continue
			}

			frames = frames[:top]
			if top > 0 {
				parent := frames[top-1].v
				if low[v] < low[parent] {
					low[parent] = low[v]
				}
			}

			if low[v] == index[v] {
				var comp []int
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					comp = append(comp, w)
					if w == v {
						break
					}
				}
				sccs = append(sccs, comp)
			}
		}
	}
	return sccs
}

// StronglyConnected returns every strongly connected component of g,
// singletons included, with members sorted by ID. Self loops do not
// connect a node to itself.
func StronglyConnected(g *Graph) [][]string {
	sccs := g.stronglyConnected()
	out := make([][]string, len(sccs))
	for i, comp := range sccs {
		ids := make([]string, len(comp))
		for j, v := range comp {
			ids[j] = g.nodes[v].ID
		}
		sort.Strings(ids)
		out[i] = ids
	}
	return out
}
