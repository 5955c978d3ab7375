// Package resolve classifies raw imports as builtin, internal or external
// and maps internal ones to files inside the project.
package resolve

import (
	"os"
	"path"
	"strings"
	"sync"

	"depscope/internal/extract"
	"depscope/internal/lang"
	"depscope/internal/paths"
)

// Kind is the classification of a dependency.
type Kind string

const (
	Internal Kind = "internal"
	External Kind = "external"
	Builtin  Kind = "builtin"
)

// Dependency is a classified import.
type Dependency struct {
	Source    string             `json:"source"`
	Target    string             `json:"target"`
	Specifier string             `json:"specifier"`
	Kind      Kind               `json:"kind"`
	EdgeKind  extract.ImportKind `json:"edgeKind"`
	Weight    int                `json:"weight"`
	Line      int                `json:"line"`
	// Resolved is false for internal imports that matched no file; Target is
	// then a best-effort path.
	Resolved bool `json:"resolved"`
}

// Options configures a Resolver.
type Options struct {
	// IncludeExternal reports unresolved relative imports as external
	// instead of unresolved internal ones.
	IncludeExternal bool
}

// strategy is the per-language half of resolution, chosen once per scan.
type strategy interface {
	builtin(spec string) (string, bool)
	relative(spec string) bool
	resolveRelative(r *Resolver, spec, from string) (target string, ok bool)
	resolvePackage(r *Resolver, spec string) (target string, internal bool)
}

// Resolver classifies imports for one project root. Safe for concurrent use.
type Resolver struct {
	root     string
	language lang.Language
	strat    strategy
	opts     Options

	mu    sync.Mutex
	files map[string]bool
}

// New creates a resolver for root using the strategy of language.
func New(root string, language lang.Language, opts Options) *Resolver {
	r := &Resolver{
		root:     root,
		language: language,
		opts:     opts,
		files:    make(map[string]bool),
	}
	switch language {
	case lang.Python:
		r.strat = pythonStrategy{}
	case lang.JavaScript:
		r.strat = ecmaStrategy{exts: lang.JavaScript.ResolveExtensions()}
	default:
		r.strat = ecmaStrategy{exts: lang.TypeScript.ResolveExtensions()}
	}
	return r
}

// Classify turns one raw import of file from (repo-relative) into a
// Dependency.
func (r *Resolver) Classify(imp extract.Import, from string) Dependency {
	dep := Dependency{
		Source:    from,
		Specifier: imp.Specifier,
		EdgeKind:  imp.Kind,
		Weight:    max(imp.Names, 1),
		Line:      imp.Line,
		Resolved:  true,
	}

	if name, ok := r.strat.builtin(imp.Specifier); ok {
		dep.Kind, dep.Target = Builtin, name
		return dep
	}

	if r.strat.relative(imp.Specifier) {
		target, ok := r.strat.resolveRelative(r, imp.Specifier, from)
		switch {
		case ok:
			dep.Kind, dep.Target = Internal, target
		case r.opts.IncludeExternal:
			dep.Kind, dep.Target = External, imp.Specifier
		default:
			dep.Kind, dep.Target, dep.Resolved = Internal, target, false
		}
		return dep
	}

	target, internal := r.strat.resolvePackage(r, imp.Specifier)
	if internal {
		dep.Kind = Internal
	} else {
		dep.Kind = External
	}
	dep.Target = target
	return dep
}

// ClassifyAll classifies every import of a module.
func (r *Resolver) ClassifyAll(m extract.ModuleInfo) []Dependency {
	deps := make([]Dependency, 0, len(m.Imports))
	for _, imp := range m.Imports {
		deps = append(deps, r.Classify(imp, m.Path))
	}
	return deps
}

// isFile reports whether the repo-relative path is an existing regular
// file. Results are memoized.
func (r *Resolver) isFile(rel string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ok, seen := r.files[rel]; seen {
		return ok
	}
	info, err := os.Stat(paths.JoinRepoPath(r.root, rel))
	ok := err == nil && info.Mode().IsRegular()
	r.files[rel] = ok
	return ok
}

// firstFile returns the first candidate that exists.
func (r *Resolver) firstFile(candidates []string) (string, bool) {
	for _, c := range candidates {
		if r.isFile(c) {
			return c, true
		}
	}
	return "", false
}

// clean normalizes a joined repo-relative path and rejects paths that
// leave the root.
func clean(p string) (string, bool) {
	p = path.Clean(paths.NormalizePath(p))
	if p == ".." || strings.HasPrefix(p, "../") || path.IsAbs(p) {
		return p, false
	}
	return p, true
}

func fromDir(from string) string {
	dir := path.Dir(paths.NormalizePath(from))
	if dir == "." {
		return ""
	}
	return dir
}

// ecmaStrategy resolves TypeScript and JavaScript specifiers.
type ecmaStrategy struct {
	exts []string
}

func (ecmaStrategy) builtin(spec string) (string, bool) {
	return nodeBuiltin(spec)
}

func (ecmaStrategy) relative(spec string) bool {
	return spec == "." || spec == ".." ||
		strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") ||
		strings.HasPrefix(spec, "/")
}

var jsToTS = map[string][]string{
	".js":  {".ts", ".tsx", ".jsx"},
	".jsx": {".tsx"},
	".mjs": {".mts"},
	".cjs": {".cts"},
}

func (s ecmaStrategy) resolveRelative(r *Resolver, spec, from string) (string, bool) {
	var joined string
	if strings.HasPrefix(spec, "/") {
		joined = strings.TrimPrefix(spec, "/")
	} else {
		joined = path.Join(fromDir(from), spec)
	}
	base, ok := clean(joined)
	if !ok {
		return base, false
	}

	candidates := []string{base}
	ext := path.Ext(base)
	if alts, ok := jsToTS[ext]; ok {
		stem := paths.TrimExt(base)
		for _, alt := range alts {
			candidates = append(candidates, stem+alt)
		}
	}
	for _, e := range s.exts {
		candidates = append(candidates, base+e)
	}
	for _, e := range s.exts {
		candidates = append(candidates, path.Join(base, "index"+e))
	}
	if target, ok := r.firstFile(candidates); ok {
		return target, true
	}
	return base, false
}

func (ecmaStrategy) resolvePackage(_ *Resolver, spec string) (string, bool) {
	return PackageName(spec), false
}

// pythonStrategy resolves dotted module paths.
type pythonStrategy struct{}

func (pythonStrategy) builtin(spec string) (string, bool) {
	return pythonBuiltin(spec)
}

func (pythonStrategy) relative(spec string) bool {
	return strings.HasPrefix(spec, ".")
}

func (pythonStrategy) resolveRelative(r *Resolver, spec, from string) (string, bool) {
	rest := strings.TrimLeft(spec, ".")
	dots := len(spec) - len(rest)

	dir := fromDir(from)
	for i := 1; i < dots; i++ {
		if dir == "" {
			return spec, false
		}
		dir = fromDir(dir)
	}

	var segments []string
	if rest != "" {
		segments = strings.Split(rest, ".")
	}
	// A trailing segment may name a symbol rather than a module, so fall
	// back to the enclosing package.
	for n := len(segments); n >= 1; n-- {
		base := path.Join(append([]string{dir}, segments[:n]...)...)
		if target, ok := r.firstFile(pythonCandidates(base)); ok {
			return target, true
		}
	}
	if init := path.Join(dir, "__init__.py"); r.isFile(init) {
		return init, true
	}
	best := path.Join(append([]string{dir}, segments...)...)
	return best, false
}

func pythonCandidates(base string) []string {
	var out []string
	if base != "" && base != "." {
		for _, e := range lang.Python.ResolveExtensions() {
			out = append(out, base+e)
		}
	}
	return append(out, path.Join(base, "__init__.py"))
}

// resolvePackage probes absolute imports against the project root
// (a/b.py, a/b/__init__.py, then a.py) before treating them as external.
func (pythonStrategy) resolvePackage(r *Resolver, spec string) (string, bool) {
	segments := strings.Split(spec, ".")
	for n := len(segments); n >= 1; n-- {
		base := strings.Join(segments[:n], "/")
		if target, ok := r.firstFile(pythonCandidates(base)); ok {
			return target, true
		}
	}
	return segments[0], false
}

// Root returns the absolute project root.
func (r *Resolver) Root() string {
	return r.root
}

// Language returns the language whose strategy is in use.
func (r *Resolver) Language() lang.Language {
	return r.language
}
