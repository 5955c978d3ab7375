package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"depscope/internal/analysis"
	"depscope/internal/complexity"
	"depscope/internal/extract"
	"depscope/internal/graph"
	"depscope/internal/render"
)

func testSnapshot(id string) *Snapshot {
	g := graph.New()
	g.AddNode(graph.Node{ID: "a.py"})
	g.AddNode(graph.Node{ID: "b.py"})
	g.AddNode(graph.Node{ID: "ext:requests", External: true})
	g.AddEdge("a.py", "b.py", extract.KindImport, 2)
	g.AddEdge("b.py", "a.py", extract.KindImport, 1)
	g.AddEdge("a.py", "ext:requests", extract.KindImport, 1)

	return &Snapshot{
		Version:   SnapshotVersion,
		ScanID:    id,
		Root:      "/src/project",
		Language:  "python",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Graph:     render.NewDocument(g),
		Cycles:    graph.FindCycles(g, graph.CycleOptions{}),
		Complexity: []complexity.FileComplexity{
			{
				Path: "a.py", Language: "python", Total: 12, Max: 11, Average: 6, LinesOfCode: 40, MaintainabilityIndex: 55.5,
				Functions: []complexity.FunctionComplexity{
					{Name: "route", StartLine: 3, EndLine: 30, Cyclomatic: 11},
					{Name: "helper", StartLine: 32, EndLine: 35, Cyclomatic: 1},
				},
			},
			{Path: "b.py", Language: "python", Total: 1, Average: 1, LinesOfCode: 2, MaintainabilityIndex: 100},
		},
		Diagnostics: []analysis.Diagnostic{},
	}
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"out/deps.db", FormatSQLite, false},
		{"deps.sqlite", FormatSQLite, false},
		{"deps.SQLITE3", FormatSQLite, false},
		{"deps.json.zst", FormatZstd, false},
		{"deps.json", "", true},
		{"deps", "", true},
	}
	for _, tt := range tests {
		got, err := FormatFor(tt.path)
		if (err != nil) != tt.wantErr {
			t.Fatalf("FormatFor(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("FormatFor(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestSnapshot_ZstdRoundTrip(t *testing.T) {
	snap := testSnapshot("scan-1")

	var buf bytes.Buffer
	if err := WriteSnapshot(&buf, snap); err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}
	got, err := ReadSnapshot(&buf)
	if err != nil {
		t.Fatalf("ReadSnapshot() error = %v", err)
	}
	if !reflect.DeepEqual(got, snap) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, snap)
	}

	if _, err := ReadSnapshot(bytes.NewReader([]byte("not zstd"))); err == nil {
		t.Error("ReadSnapshot(garbage) should fail")
	}
}

func TestExport_ZstdFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deps.json.zst")
	if err := Export(context.Background(), path, testSnapshot("scan-1"), nil); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	snap, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(snap.Graph.Nodes) != 3 || len(snap.Cycles) != 1 {
		t.Errorf("snapshot has %d nodes and %d cycles, want 3 and 1", len(snap.Graph.Nodes), len(snap.Cycles))
	}
}

func TestDB_SaveAndQuery(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "deps.db")

	db, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	snap := testSnapshot("scan-1")
	if err := db.Save(ctx, snap); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	// Saving the same scan again replaces it.
	if err := db.Save(ctx, snap); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	scans, err := db.Scans(ctx)
	if err != nil {
		t.Fatalf("Scans() error = %v", err)
	}
	if len(scans) != 1 {
		t.Fatalf("got %d scans, want 1", len(scans))
	}
	want := ScanRecord{
		ID: "scan-1", Root: "/src/project", Language: "python",
		CreatedAt: snap.CreatedAt, Files: 2, Edges: 3, Cycles: 1,
	}
	if !reflect.DeepEqual(scans[0], want) {
		t.Errorf("scan = %+v, want %+v", scans[0], want)
	}

	edges, err := db.Edges(ctx, "scan-1")
	if err != nil {
		t.Fatalf("Edges() error = %v", err)
	}
	if len(edges) != 3 {
		t.Fatalf("got %d edges, want 3", len(edges))
	}
	if edges[0].From != "a.py" || edges[0].To != "b.py" || edges[0].Weight != 2 {
		t.Errorf("first edge = %+v", edges[0])
	}
	if !reflect.DeepEqual(edges[0].Kinds, []extract.ImportKind{extract.KindImport}) {
		t.Errorf("kinds = %v", edges[0].Kinds)
	}

	hot, err := db.Hotspots(ctx, "scan-1", 10)
	if err != nil {
		t.Fatalf("Hotspots() error = %v", err)
	}
	if len(hot) != 1 || hot[0].Name != "route" || hot[0].Cyclomatic != 11 {
		t.Errorf("hotspots = %+v", hot)
	}
}

func TestOpen_ReopensExistingDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "deps.sqlite")

	if err := Export(ctx, path, testSnapshot("scan-1"), nil); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if err := Export(ctx, path, testSnapshot("scan-2"), nil); err != nil {
		t.Fatalf("second Export() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database missing: %v", err)
	}

	db, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()
	scans, err := db.Scans(ctx)
	if err != nil {
		t.Fatalf("Scans() error = %v", err)
	}
	if len(scans) != 2 {
		t.Errorf("got %d scans, want 2", len(scans))
	}
}

func TestExport_UnknownExtension(t *testing.T) {
	err := Export(context.Background(), filepath.Join(t.TempDir(), "deps.txt"), testSnapshot("x"), nil)
	if err == nil {
		t.Fatal("Export() should reject unknown extensions")
	}
}
