package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCanonicalizePath(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "src", "app")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(sub, "main.ts")
	if err := os.WriteFile(file, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := CanonicalizePath(file, root)
	if err != nil {
		t.Fatalf("CanonicalizePath failed: %v", err)
	}
	if got != "src/app/main.ts" {
		t.Errorf("CanonicalizePath = %q, want %q", got, "src/app/main.ts")
	}

	// Missing files are still made relative
	got, err = CanonicalizePath(filepath.Join(root, "missing.ts"), root)
	if err != nil {
		t.Fatalf("CanonicalizePath(missing) failed: %v", err)
	}
	if got != "missing.ts" {
		t.Errorf("CanonicalizePath(missing) = %q", got)
	}
}

func TestIsWithinRepo(t *testing.T) {
	root := t.TempDir()
	if !IsWithinRepo(filepath.Join(root, "a", "b.py"), root) {
		t.Error("expected nested path to be within repo")
	}
	if IsWithinRepo(filepath.Dir(root), root) {
		t.Error("expected parent directory to be outside repo")
	}
}

func TestDirOfAndSegments(t *testing.T) {
	tests := []struct {
		path     string
		dir      string
		segments int
	}{
		{"main.ts", "", 0},
		{"src/main.ts", "src", 1},
		{"src/app/ui/button.tsx", "src/app/ui", 3},
	}

	for _, tt := range tests {
		if got := DirOf(tt.path); got != tt.dir {
			t.Errorf("DirOf(%q) = %q, want %q", tt.path, got, tt.dir)
		}
		if got := len(Segments(tt.path)); got != tt.segments {
			t.Errorf("len(Segments(%q)) = %d, want %d", tt.path, got, tt.segments)
		}
	}
}

func TestJoinRepoPath(t *testing.T) {
	got := JoinRepoPath("/repo", "src/a.ts")
	want := filepath.Join("/repo", "src", "a.ts")
	if got != want {
		t.Errorf("JoinRepoPath = %q, want %q", got, want)
	}
}

func TestTrimExt(t *testing.T) {
	if got := TrimExt("src/types.d.ts"); got != "src/types.d" {
		t.Errorf("TrimExt = %q", got)
	}
	if got := TrimExt("a/b.py"); got != "a/b" {
		t.Errorf("TrimExt = %q", got)
	}
}
