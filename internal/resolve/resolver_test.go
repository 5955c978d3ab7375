package resolve

import (
	"os"
	"path/filepath"
	"testing"

	"depscope/internal/extract"
	"depscope/internal/lang"
)

func touch(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		full := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func imp(spec string) extract.Import {
	return extract.Import{Specifier: spec, Kind: extract.KindImport, Names: 1, Line: 1}
}

func TestClassify_ECMAScript(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"src/app.ts",
		"src/util.ts",
		"src/components/index.tsx",
		"src/esm/helper.ts",
		"src/data.json",
		"src/legacy.js",
		"lib/shared.ts",
	)
	r := New(root, lang.TypeScript, Options{})

	tests := []struct {
		spec       string
		wantKind   Kind
		wantTarget string
		resolved   bool
	}{
		{"fs", Builtin, "fs", true},
		{"node:path", Builtin, "path", true},
		{"fs/promises", Builtin, "fs", true},
		{"react", External, "react", true},
		{"@scope/pkg/deep/file", External, "@scope/pkg", true},
		{"lodash/get", External, "lodash", true},
		{"./util", Internal, "src/util.ts", true},
		{"./components", Internal, "src/components/index.tsx", true},
		{"./esm/helper.js", Internal, "src/esm/helper.ts", true},
		{"./data.json", Internal, "src/data.json", true},
		{"./legacy", Internal, "src/legacy.js", true},
		{"../lib/shared", Internal, "lib/shared.ts", true},
		{"/lib/shared", Internal, "lib/shared.ts", true},
		{"./missing", Internal, "src/missing", false},
		{"../../outside", Internal, "../outside", false},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			dep := r.Classify(imp(tt.spec), "src/app.ts")
			if dep.Kind != tt.wantKind || dep.Target != tt.wantTarget || dep.Resolved != tt.resolved {
				t.Errorf("Classify(%q) = {%s %s resolved=%v}, want {%s %s resolved=%v}",
					tt.spec, dep.Kind, dep.Target, dep.Resolved, tt.wantKind, tt.wantTarget, tt.resolved)
			}
			if dep.Source != "src/app.ts" || dep.Weight != 1 {
				t.Errorf("unexpected source/weight: %+v", dep)
			}
		})
	}
}

func TestClassify_IncludeExternalUnresolved(t *testing.T) {
	r := New(t.TempDir(), lang.JavaScript, Options{IncludeExternal: true})
	dep := r.Classify(imp("./nowhere"), "index.js")
	if dep.Kind != External || dep.Target != "./nowhere" {
		t.Errorf("unresolved relative with IncludeExternal = %+v", dep)
	}
}

func TestClassify_Python(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"app/__init__.py",
		"app/main.py",
		"app/models.py",
		"app/services/__init__.py",
		"app/services/billing.py",
		"shared/util.py",
	)
	r := New(root, lang.Python, Options{})

	tests := []struct {
		spec       string
		from       string
		wantKind   Kind
		wantTarget string
		resolved   bool
	}{
		{"os", "app/main.py", Builtin, "os", true},
		{"os.path", "app/main.py", Builtin, "os", true},
		{"requests", "app/main.py", External, "requests", true},
		{"numpy.linalg", "app/main.py", External, "numpy", true},
		{".models", "app/main.py", Internal, "app/models.py", true},
		{".services.billing", "app/main.py", Internal, "app/services/billing.py", true},
		{".services", "app/main.py", Internal, "app/services/__init__.py", true},
		{".Helper", "app/main.py", Internal, "app/__init__.py", true},
		{"..models", "app/services/billing.py", Internal, "app/models.py", true},
		{".", "app/services/billing.py", Internal, "app/services/__init__.py", true},
		{"shared.util", "app/main.py", Internal, "shared/util.py", true},
		{"app.models.Model", "shared/util.py", Internal, "app/models.py", true},
		{"app", "shared/util.py", Internal, "app/__init__.py", true},
		{"...too.far", "app/main.py", Internal, "...too.far", false},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			dep := r.Classify(imp(tt.spec), tt.from)
			if dep.Kind != tt.wantKind || dep.Target != tt.wantTarget || dep.Resolved != tt.resolved {
				t.Errorf("Classify(%q from %s) = {%s %s resolved=%v}, want {%s %s resolved=%v}",
					tt.spec, tt.from, dep.Kind, dep.Target, dep.Resolved, tt.wantKind, tt.wantTarget, tt.resolved)
			}
		})
	}
}

func TestClassifyAll_Weights(t *testing.T) {
	r := New(t.TempDir(), lang.JavaScript, Options{})
	deps := r.ClassifyAll(extract.ModuleInfo{
		Path: "a.js",
		Imports: []extract.Import{
			{Specifier: "react", Kind: extract.KindImport, Names: 3},
			{Specifier: "./side-effect", Kind: extract.KindImport, Names: 0},
		},
	})
	if len(deps) != 2 {
		t.Fatalf("got %d deps", len(deps))
	}
	if deps[0].Weight != 3 || deps[1].Weight != 1 {
		t.Errorf("weights = %d, %d; want 3, 1", deps[0].Weight, deps[1].Weight)
	}
}

func TestPackageName(t *testing.T) {
	tests := map[string]string{
		"react":             "react",
		"react-dom/client":  "react-dom",
		"@babel/core":       "@babel/core",
		"@babel/core/lib/x": "@babel/core",
		"@weird":            "@weird",
	}
	for in, want := range tests {
		if got := PackageName(in); got != want {
			t.Errorf("PackageName(%q) = %q, want %q", in, got, want)
		}
	}
}
