// Package extract reads source files and reports their imports, exports
// and per-function complexity.
package extract

import (
	"sort"

	"depscope/internal/complexity"
	"depscope/internal/lang"
)

// ImportKind distinguishes how a dependency was declared.
type ImportKind string

const (
	KindImport        ImportKind = "import"
	KindReExport      ImportKind = "re-export"
	KindDynamicImport ImportKind = "dynamic-import"
	KindRequire       ImportKind = "require"
)

// Import is one raw import statement, before classification.
type Import struct {
	// Specifier is the module string as written, e.g. "./util", "react",
	// "..pkg.mod".
	Specifier string     `json:"specifier"`
	Kind      ImportKind `json:"kind"`
	// Names is the number of bindings imported, at least 1. Side-effect
	// imports count as 1.
	Names int `json:"names"`
	// Line is the 1-based line of the first occurrence.
	Line int `json:"line"`
}

// ModuleInfo describes one source file.
type ModuleInfo struct {
	Path     string        `json:"path"`
	Language lang.Language `json:"language"`
	Imports  []Import      `json:"imports"`
	Exports  []string      `json:"exports"`
	Size     int64         `json:"size"`
	Lines    int           `json:"lines"`
}

// FileResult is the output of one extraction.
type FileResult struct {
	Module     ModuleInfo                `json:"module"`
	Complexity complexity.FileComplexity `json:"complexity"`
}

// collector accumulates imports and exports while an extractor walks a file.
type collector struct {
	imports []Import
	index   map[importKey]int
	exports map[string]bool
}

type importKey struct {
	spec string
	kind ImportKind
}

func newCollector() *collector {
	return &collector{
		index:   make(map[importKey]int),
		exports: make(map[string]bool),
	}
}

// addImport records an import. Repeated (specifier, kind) pairs are merged
// and their binding counts summed.
func (c *collector) addImport(spec string, kind ImportKind, names, line int) {
	if spec == "" {
		return
	}
	if names < 1 {
		names = 1
	}
	key := importKey{spec, kind}
	if i, ok := c.index[key]; ok {
		c.imports[i].Names += names
		return
	}
	c.index[key] = len(c.imports)
	c.imports = append(c.imports, Import{Specifier: spec, Kind: kind, Names: names, Line: line})
}

func (c *collector) addExport(name string) {
	if name != "" {
		c.exports[name] = true
	}
}

func (c *collector) sortedExports() []string {
	out := make([]string, 0, len(c.exports))
	for name := range c.exports {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (c *collector) importList() []Import {
	if c.imports == nil {
		return []Import{}
	}
	return c.imports
}

func countLines(src []byte) int {
	if len(src) == 0 {
		return 0
	}
	n := 0
	for _, b := range src {
		if b == '\n' {
			n++
		}
	}
	if src[len(src)-1] != '\n' {
		n++
	}
	return n
}
