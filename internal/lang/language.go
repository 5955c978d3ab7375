// Package lang defines the source languages the engine understands and how
// a project's language is chosen.
package lang

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Language is the tagged union of supported source languages.
type Language string

const (
	TypeScript Language = "typescript"
	JavaScript Language = "javascript"
	Python     Language = "python"

	// Auto asks Detect to choose a language from the project layout.
	Auto Language = "auto"
)

// Parse converts a user-supplied language name. The empty string means Auto.
func Parse(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "typescript", "ts":
		return TypeScript, nil
	case "javascript", "js":
		return JavaScript, nil
	case "python", "py":
		return Python, nil
	default:
		return "", fmt.Errorf("unsupported language %q (want typescript, javascript, python or auto)", s)
	}
}

// IsECMAScript reports whether the language is parsed by the tree-sitter
// ECMAScript extractor.
func (l Language) IsECMAScript() bool {
	return l == TypeScript || l == JavaScript
}

// Extensions returns the source extensions scanned for a project language.
// TypeScript projects routinely mix in JavaScript files, so they scan both.
func (l Language) Extensions() []string {
	switch l {
	case TypeScript:
		return []string{".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs"}
	case JavaScript:
		return []string{".js", ".jsx", ".mjs", ".cjs"}
	case Python:
		return []string{".py", ".pyw"}
	default:
		return nil
	}
}

// ResolveExtensions is the ordered probe list used when an import omits its
// extension.
func (l Language) ResolveExtensions() []string {
	switch l {
	case TypeScript:
		return []string{".ts", ".tsx", ".d.ts", ".js", ".jsx", ".mjs", ".cjs", ".json"}
	case JavaScript:
		return []string{".js", ".jsx", ".mjs", ".cjs", ".json"}
	case Python:
		return []string{".py", ".pyw"}
	default:
		return nil
	}
}

// FromExtension returns the language of a single file, independent of the
// project language. TypeScript grammar is used for .ts variants only.
func FromExtension(ext string) (Language, bool) {
	switch strings.ToLower(ext) {
	case ".ts", ".tsx", ".mts", ".cts":
		return TypeScript, true
	case ".js", ".jsx", ".mjs", ".cjs":
		return JavaScript, true
	case ".py", ".pyw":
		return Python, true
	default:
		return "", false
	}
}

// FromPath is FromExtension applied to a file path.
func FromPath(path string) (Language, bool) {
	return FromExtension(filepath.Ext(path))
}

// configMarkers are checked in order; the first one present wins.
var configMarkers = []struct {
	file string
	lang Language
}{
	{"tsconfig.json", TypeScript},
	{"jsconfig.json", JavaScript},
	{"pyproject.toml", Python},
	{"setup.py", Python},
	{"setup.cfg", Python},
	{"requirements.txt", Python},
	{"Pipfile", Python},
	{"package.json", JavaScript},
}

// Detect picks the project language for root: configuration-file presence
// first, then whichever language has the most source files. countFiles is
// called only when no marker is found; it returns per-extension counts.
func Detect(root string, countFiles func() map[string]int) Language {
	info, err := os.Stat(root)
	if err == nil && !info.IsDir() {
		if l, ok := FromPath(root); ok {
			return l
		}
		root = filepath.Dir(root)
	}

	for _, m := range configMarkers {
		if _, err := os.Stat(filepath.Join(root, m.file)); err == nil {
			if m.lang == JavaScript && m.file == "package.json" && hasTypeScriptSources(countFiles) {
				return TypeScript
			}
			return m.lang
		}
	}

	if countFiles == nil {
		return JavaScript
	}
	return byExtensionCounts(countFiles())
}

func hasTypeScriptSources(countFiles func() map[string]int) bool {
	if countFiles == nil {
		return false
	}
	counts := countFiles()
	return counts[".ts"]+counts[".tsx"]+counts[".mts"]+counts[".cts"] > 0
}

func byExtensionCounts(counts map[string]int) Language {
	totals := map[Language]int{}
	for ext, n := range counts {
		if l, ok := FromExtension(ext); ok {
			totals[l] += n
		}
	}
	// Ties prefer TypeScript, then JavaScript, then Python.
	best, bestN := JavaScript, 0
	for _, l := range []Language{TypeScript, JavaScript, Python} {
		if totals[l] > bestN {
			best, bestN = l, totals[l]
		}
	}
	return best
}
