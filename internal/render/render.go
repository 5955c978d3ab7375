// Package render serializes module graphs as Mermaid, Graphviz DOT or JSON.
package render

import (
	"fmt"
	"strings"

	"depscope/internal/graph"
)

// Format is a graph text format.
type Format string

const (
	FormatMermaid Format = "mermaid"
	FormatDOT     Format = "dot"
	FormatJSON    Format = "json"
)

// ParseFormat parses a format name; "" means mermaid.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatMermaid:
		return FormatMermaid, nil
	case FormatDOT, "graphviz":
		return FormatDOT, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown graph format %q (want mermaid, dot or json)", s)
}

// Options adjusts diagram output. JSON ignores it.
type Options struct {
	// Highlight marks nodes, typically cycle members.
	Highlight []string
	// Direction is the Mermaid flow direction (default LR).
	Direction string
}

// Render writes g in the given format.
func Render(g *graph.Graph, format Format, opts Options) (string, error) {
	switch format {
	case FormatMermaid, "":
		return mermaid(g, opts), nil
	case FormatDOT:
		return dot(g, opts), nil
	case FormatJSON:
		return JSON(g)
	}
	return "", fmt.Errorf("unknown graph format %q", format)
}

// Mermaid renders g as a Mermaid flowchart.
func Mermaid(g *graph.Graph) string {
	return mermaid(g, Options{})
}

// DOT renders g as a Graphviz digraph.
func DOT(g *graph.Graph) string {
	return dot(g, Options{})
}

// nodeIDs assigns n0, n1, ... in node order so ids never depend on path
// characters.
func nodeIDs(g *graph.Graph) map[string]string {
	ids := make(map[string]string, g.NumNodes())
	for i, id := range g.NodeIDs() {
		ids[id] = fmt.Sprintf("n%d", i)
	}
	return ids
}

func highlightSet(opts Options) map[string]bool {
	set := make(map[string]bool, len(opts.Highlight))
	for _, id := range opts.Highlight {
		set[id] = true
	}
	return set
}

// edgeLabel lists non-default kinds and the weight when above 1.
func edgeLabel(e graph.Edge) string {
	var parts []string
	for _, k := range e.Kinds {
		if k != "import" {
			parts = append(parts, string(k))
		}
	}
	if e.Weight > 1 {
		parts = append(parts, fmt.Sprintf("%d", e.Weight))
	}
	return strings.Join(parts, " ")
}

func mermaid(g *graph.Graph, opts Options) string {
	dir := opts.Direction
	if dir == "" {
		dir = "LR"
	}
	ids := nodeIDs(g)
	hl := highlightSet(opts)

	var b strings.Builder
	fmt.Fprintf(&b, "flowchart %s\n", dir)

	var external, unresolved, cyclic []string
	for _, n := range g.Nodes() {
		id := ids[n.ID]
		label := escapeMermaid(n.ID)
		switch {
		case n.External:
			fmt.Fprintf(&b, "  %s([\"%s\"])\n", id, escapeMermaid(strings.TrimPrefix(n.ID, graph.ExternalPrefix)))
			external = append(external, id)
		case n.Unresolved:
			fmt.Fprintf(&b, "  %s{{\"%s\"}}\n", id, label)
			unresolved = append(unresolved, id)
		default:
			fmt.Fprintf(&b, "  %s[\"%s\"]\n", id, label)
		}
		if hl[n.ID] {
			cyclic = append(cyclic, id)
		}
	}

	for _, e := range g.Edges() {
		arrow := "-->"
		for _, k := range e.Kinds {
			if k == "dynamic-import" {
				arrow = "-.->"
			}
		}
		if label := edgeLabel(e); label != "" {
			fmt.Fprintf(&b, "  %s %s|%s| %s\n", ids[e.From], arrow, escapeMermaid(label), ids[e.To])
		} else {
			fmt.Fprintf(&b, "  %s %s %s\n", ids[e.From], arrow, ids[e.To])
		}
	}

	writeClass := func(name, style string, members []string) {
		if len(members) == 0 {
			return
		}
		fmt.Fprintf(&b, "  classDef %s %s;\n", name, style)
		fmt.Fprintf(&b, "  class %s %s;\n", strings.Join(members, ","), name)
	}
	writeClass("external", "fill:#f4f4f4,stroke:#999999,stroke-dasharray:3 3", external)
	writeClass("unresolved", "fill:#fff4e5,stroke:#cc8800", unresolved)
	writeClass("cycle", "fill:#ffe5e5,stroke:#cc0000,stroke-width:2px", cyclic)
	return b.String()
}

func escapeMermaid(s string) string {
	return strings.NewReplacer(`"`, "#quot;", "<", "#lt;", ">", "#gt;").Replace(s)
}

func dot(g *graph.Graph, opts Options) string {
	hl := highlightSet(opts)

	var b strings.Builder
	b.WriteString("digraph dependencies {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, fontname=\"Helvetica\"];\n")

	for _, n := range g.Nodes() {
		var attrs []string
		switch {
		case n.External:
			attrs = append(attrs, "shape=ellipse", "style=dashed")
		case n.Unresolved:
			attrs = append(attrs, "shape=hexagon", "color=orange")
		}
		if hl[n.ID] {
			attrs = append(attrs, "color=red", "penwidth=2")
		}
		if len(attrs) > 0 {
			fmt.Fprintf(&b, "  %s [%s];\n", quoteDOT(n.ID), strings.Join(attrs, ", "))
		} else {
			fmt.Fprintf(&b, "  %s;\n", quoteDOT(n.ID))
		}
	}

	for _, e := range g.Edges() {
		attrs := []string{fmt.Sprintf("weight=%d", e.Weight)}
		if label := edgeLabel(e); label != "" {
			attrs = append(attrs, "label="+quoteDOT(label))
		}
		for _, k := range e.Kinds {
			if k == "dynamic-import" {
				attrs = append(attrs, "style=dashed")
			}
		}
		fmt.Fprintf(&b, "  %s -> %s [%s];\n", quoteDOT(e.From), quoteDOT(e.To), strings.Join(attrs, ", "))
	}
	b.WriteString("}\n")
	return b.String()
}

func quoteDOT(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}
