// Package manifest reads declared dependencies from package manifests.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Kind names a manifest format.
type Kind string

const (
	PackageJSON  Kind = "package.json"
	PyProject    Kind = "pyproject.toml"
	Pipfile      Kind = "Pipfile"
	Requirements Kind = "requirements.txt"
)

// Scope distinguishes runtime from development dependencies.
type Scope string

const (
	ScopeRuntime  Scope = "runtime"
	ScopeDev      Scope = "dev"
	ScopePeer     Scope = "peer"
	ScopeOptional Scope = "optional"
)

// Dependency is one declared external package.
type Dependency struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Scope   Scope  `json:"scope"`
	Source  Kind   `json:"source"`
}

// Manifest is one parsed manifest file.
type Manifest struct {
	Path         string       `json:"path"`
	Kind         Kind         `json:"kind"`
	Name         string       `json:"name,omitempty"`
	Dependencies []Dependency `json:"dependencies"`
}

var parsers = []struct {
	kind  Kind
	parse func([]byte) (*Manifest, error)
}{
	{PackageJSON, parsePackageJSON},
	{PyProject, parsePyProject},
	{Pipfile, parsePipfile},
	{Requirements, parseRequirements},
}

// Load parses every manifest present directly in dir. Missing files are
// skipped; malformed ones are returned as errors alongside the manifests
// that did parse.
func Load(dir string) ([]Manifest, error) {
	var (
		out  []Manifest
		errs []string
	)
	for _, p := range parsers {
		path := filepath.Join(dir, string(p.kind))
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		m, err := p.parse(data)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", p.kind, err))
			continue
		}
		m.Path = string(p.kind)
		m.Kind = p.kind
		sortDeps(m.Dependencies)
		out = append(out, *m)
	}
	if len(errs) > 0 {
		return out, fmt.Errorf("manifest errors: %s", strings.Join(errs, "; "))
	}
	return out, nil
}

// Index maps normalized package names to their first declaration.
type Index map[string]Dependency

// NewIndex indexes the dependencies of manifests in order.
func NewIndex(manifests []Manifest) Index {
	idx := make(Index)
	for _, m := range manifests {
		for _, d := range m.Dependencies {
			key := NormalizeName(d.Name)
			if _, ok := idx[key]; !ok {
				idx[key] = d
			}
		}
	}
	return idx
}

// Lookup finds the declaration of an imported package name.
func (idx Index) Lookup(name string) (Dependency, bool) {
	d, ok := idx[NormalizeName(name)]
	return d, ok
}

// NormalizeName folds case and treats '-', '_' and '.' alike, so that the
// distribution "typing-extensions" matches the import "typing_extensions".
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("-", "_", ".", "_").Replace(name)
}

func sortDeps(deps []Dependency) {
	sort.SliceStable(deps, func(i, j int) bool {
		if deps[i].Scope != deps[j].Scope {
			return scopeRank(deps[i].Scope) < scopeRank(deps[j].Scope)
		}
		return deps[i].Name < deps[j].Name
	})
}

func scopeRank(s Scope) int {
	switch s {
	case ScopeRuntime:
		return 0
	case ScopePeer:
		return 1
	case ScopeOptional:
		return 2
	default:
		return 3
	}
}
