package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"depscope/internal/errors"
	"depscope/internal/lang"
)

func TestSet_For(t *testing.T) {
	s := NewSet(nil)
	tests := []struct {
		rel  string
		want lang.Language
		ok   bool
	}{
		{"a.ts", lang.TypeScript, true},
		{"a.jsx", lang.JavaScript, true},
		{"a.py", lang.Python, true},
		{"a.rb", "", false},
	}
	for _, tt := range tests {
		_, got, err := s.For(tt.rel)
		if (err == nil) != tt.ok {
			t.Errorf("For(%q) err = %v", tt.rel, err)
		}
		if got != tt.want {
			t.Errorf("For(%q) = %q, want %q", tt.rel, got, tt.want)
		}
	}
}

func TestSet_ExtractWithCache(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "pkg"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "pkg", "m.py"), []byte("import os\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cache, err := NewCache(8)
	if err != nil {
		t.Fatal(err)
	}
	s := NewSet(cache)

	first, err := s.Extract(context.Background(), root, "pkg/m.py")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if first.Module.Path != "pkg/m.py" || first.Module.Size != int64(len("import os\n")) {
		t.Errorf("module = %+v", first.Module)
	}
	if cache.Len() != 1 {
		t.Errorf("cache len = %d, want 1", cache.Len())
	}

	second, err := s.Extract(context.Background(), root, "pkg/m.py")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("expected cached result to be reused")
	}
}

func TestSet_ExtractFromAnotherRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "pkg"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "pkg", "m.py"), []byte("import os\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cache, err := NewCache(8)
	if err != nil {
		t.Fatal(err)
	}
	s := NewSet(cache)

	inner, err := s.Extract(context.Background(), filepath.Join(root, "pkg"), "m.py")
	if err != nil {
		t.Fatal(err)
	}
	outer, err := s.Extract(context.Background(), root, "pkg/m.py")
	if err != nil {
		t.Fatal(err)
	}
	if inner.Module.Path != "m.py" || outer.Module.Path != "pkg/m.py" {
		t.Errorf("module paths = %q, %q, want m.py, pkg/m.py", inner.Module.Path, outer.Module.Path)
	}
	if outer.Complexity.Path != "pkg/m.py" {
		t.Errorf("complexity path = %q, want pkg/m.py", outer.Complexity.Path)
	}
}

func TestSet_ExtractMissingFile(t *testing.T) {
	_, err := NewSet(nil).Extract(context.Background(), t.TempDir(), "nope.py")
	if !errors.IsFileParse(err) {
		t.Errorf("expected FILE_PARSE_ERROR, got %v", err)
	}
}

func TestCache_Nil(t *testing.T) {
	var c *Cache
	if _, ok := c.Get("x", "x", nil); ok {
		t.Error("nil cache should miss")
	}
	c.Put("x", "x", nil, &FileResult{})
	if c.Len() != 0 {
		t.Error("nil cache should stay empty")
	}
}
