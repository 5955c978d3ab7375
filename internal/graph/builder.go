package graph

import (
	"sort"

	"depscope/internal/resolve"
)

// BuildOptions controls which non-file nodes the builder adds.
type BuildOptions struct {
	// IncludeExternal adds one ext:<package> node per external package.
	IncludeExternal bool
	// IncludeUnresolved adds nodes for internal imports that matched no file.
	IncludeUnresolved bool
}

// Build creates the module graph. The node set starts as exactly files,
// sorted by path; only internal dependencies whose target is in files
// become file-to-file edges. Builtin dependencies are ignored.
func Build(files []string, deps []resolve.Dependency, opts BuildOptions) *Graph {
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)

	g := New()
	for _, f := range sorted {
		g.AddNode(Node{ID: f})
	}

	// Extra nodes go after the files, in sorted order, so that file
	// indices do not depend on dependency order.
	extra := make(map[string]Node)
	targets := make([]string, len(deps))
	for i, d := range deps {
		if !g.HasNode(d.Source) {
			continue
		}
		switch {
		case d.Kind == resolve.Internal && d.Resolved:
			targets[i] = d.Target
		case d.Kind == resolve.Internal && opts.IncludeUnresolved:
			if !g.HasNode(d.Target) {
				extra[d.Target] = Node{ID: d.Target, Unresolved: true}
			}
			targets[i] = d.Target
		case d.Kind == resolve.External && opts.IncludeExternal:
			id := ExternalPrefix + d.Target
			extra[id] = Node{ID: id, External: true}
			targets[i] = id
		}
	}

	ids := make([]string, 0, len(extra))
	for id := range extra {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		g.AddNode(extra[id])
	}

	for i, d := range deps {
		if targets[i] == "" {
			continue
		}
		// Resolved targets outside the file set (excluded or filtered
		// files) are dropped here.
		g.AddEdge(d.Source, targets[i], d.EdgeKind, d.Weight)
	}
	return g
}
