package render

import (
	"strings"
	"testing"

	"depscope/internal/extract"
	"depscope/internal/graph"
	"depscope/internal/resolve"
)

func sampleGraph() *graph.Graph {
	files := []string{"src/a.ts", "src/b.ts", "src/c\"q.ts", "src/isolated.ts"}
	deps := []resolve.Dependency{
		{Source: "src/a.ts", Target: "src/b.ts", Kind: resolve.Internal, EdgeKind: extract.KindImport, Weight: 2, Resolved: true},
		{Source: "src/b.ts", Target: "src/a.ts", Kind: resolve.Internal, EdgeKind: extract.KindDynamicImport, Weight: 1, Resolved: true},
		{Source: "src/b.ts", Target: "src/c\"q.ts", Kind: resolve.Internal, EdgeKind: extract.KindReExport, Weight: 1, Resolved: true},
		{Source: "src/a.ts", Target: "react", Kind: resolve.External, EdgeKind: extract.KindImport, Weight: 1},
	}
	return graph.Build(files, deps, graph.BuildOptions{IncludeExternal: true})
}

func TestJSON_RoundTrip(t *testing.T) {
	g := sampleGraph()

	text, err := JSON(g)
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}
	doc, err := ParseJSON([]byte(text))
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	if len(doc.Nodes) != g.NumNodes() || len(doc.Edges) != g.NumEdges() {
		t.Errorf("round trip counts nodes=%d edges=%d, want %d %d", len(doc.Nodes), len(doc.Edges), g.NumNodes(), g.NumEdges())
	}

	back := doc.Graph()
	if back.NumNodes() != g.NumNodes() || back.NumEdges() != g.NumEdges() {
		t.Errorf("rebuilt graph counts differ")
	}
	e, ok := back.Edge("src/a.ts", "src/b.ts")
	if !ok || e.Weight != 2 {
		t.Errorf("rebuilt edge = %+v, want weight 2", e)
	}
	if n, _ := back.Node("ext:react"); !n.External {
		t.Error("external flag lost in round trip")
	}
}

func TestJSON_NodeCountEqualsFiles(t *testing.T) {
	files := []string{"a.py", "b.py", "pkg/c.py"}
	g := graph.Build(files, nil, graph.BuildOptions{})
	text, err := JSON(g)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := ParseJSON([]byte(text))
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Nodes) != len(files) {
		t.Errorf("nodes = %d, want %d", len(doc.Nodes), len(files))
	}
	if doc.Edges == nil {
		t.Error("edges should encode as an empty array")
	}
}

func TestParseJSON_Invalid(t *testing.T) {
	tests := map[string]string{
		"syntax":       `{"nodes": [`,
		"unknown node": `{"nodes":[{"id":"a"}],"edges":[{"from":"a","to":"b","kinds":[],"weight":1}]}`,
		"empty id":     `{"nodes":[{"id":""}],"edges":[]}`,
	}
	for name, input := range tests {
		if _, err := ParseJSON([]byte(input)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestMermaid(t *testing.T) {
	out := Mermaid(sampleGraph())

	if !strings.HasPrefix(out, "flowchart LR\n") {
		t.Errorf("unexpected header: %q", out[:20])
	}
	for _, want := range []string{
		`n0["src/a.ts"]`,
		`n2["src/c#quot;q.ts"]`,
		`n3["src/isolated.ts"]`,
		`n4(["react"])`,
		"n0 -->|2| n1",
		"n1 -.->|dynamic-import| n0",
		"n1 -->|re-export| n2",
		"n0 --> n4",
		"class n4 external;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestDOT(t *testing.T) {
	out, err := Render(sampleGraph(), FormatDOT, Options{Highlight: []string{"src/a.ts"}})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"digraph dependencies {",
		`"src/a.ts" [color=red, penwidth=2];`,
		`"src/c\"q.ts";`,
		`"src/isolated.ts";`,
		`"ext:react" [shape=ellipse, style=dashed];`,
		`"src/a.ts" -> "src/b.ts" [weight=2, label="2"];`,
		`"src/b.ts" -> "src/a.ts" [weight=1, label="dynamic-import", style=dashed];`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Count(out, " -> ") != 4 {
		t.Errorf("expected 4 edges in DOT output")
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{"": FormatMermaid, "DOT": FormatDOT, "graphviz": FormatDOT, "json": FormatJSON}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("svg"); err == nil {
		t.Error("expected error for svg")
	}
}

func TestRender_EmptyGraph(t *testing.T) {
	for _, f := range []Format{FormatMermaid, FormatDOT, FormatJSON} {
		if _, err := Render(graph.New(), f, Options{}); err != nil {
			t.Errorf("Render(empty, %s) error = %v", f, err)
		}
	}
}
