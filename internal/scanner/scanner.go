// Package scanner discovers the source files of one analysis run.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"depscope/internal/lang"
	"depscope/internal/paths"
	"depscope/internal/slogutil"
)

// DefaultMaxDepth bounds directory recursion.
const DefaultMaxDepth = 32

// DefaultExcludes are directory names skipped in every scan.
var DefaultExcludes = []string{
	"node_modules", ".git", "dist", "build", "out", "coverage", ".next",
	"__pycache__", ".venv", "venv", ".tox", ".mypy_cache", ".pytest_cache",
	"vendor", ".idea", ".vscode",
}

// Options configures a scan.
type Options struct {
	// Exclude holds user patterns, unioned with DefaultExcludes. A plain
	// name matches any path segment, and one starting with a dot (".test.ts")
	// also matches as a segment suffix. A glob without a slash ("*.test.ts")
	// is matched against every segment; a glob with a slash is matched
	// against the whole repo-relative path.
	Exclude []string
	// Extensions restricts the files returned. Empty means every extension
	// known to the lang package.
	Extensions []string
	MaxDepth   int
	// MaxFileSize skips larger files. Zero disables the limit.
	MaxFileSize int64
	Logger      *slog.Logger
}

// Skipped records a file or directory left out of the result.
type Skipped struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Result is the outcome of a scan.
type Result struct {
	Root string
	// Files are repo-relative, forward-slash paths in sorted order.
	Files   []string
	Skipped []Skipped
}

// Matcher decides whether a repo-relative path is excluded.
type Matcher struct {
	names        map[string]bool
	suffixes     []string
	segmentGlobs []string
	pathGlobs    []string
}

// NewMatcher builds a matcher from DefaultExcludes plus patterns.
func NewMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{names: make(map[string]bool)}
	for _, name := range DefaultExcludes {
		m.names[name] = true
	}
	for _, p := range patterns {
		p = strings.TrimSuffix(paths.NormalizePath(strings.TrimSpace(p)), "/")
		if p == "" {
			continue
		}
		if !strings.ContainsAny(p, "*?[{/") {
			m.names[p] = true
			if strings.HasPrefix(p, ".") {
				m.suffixes = append(m.suffixes, p)
			}
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
		if strings.Contains(p, "/") {
			m.pathGlobs = append(m.pathGlobs, p)
		} else {
			m.segmentGlobs = append(m.segmentGlobs, p)
		}
	}
	return m, nil
}

// Excluded reports whether rel (repo-relative) is excluded.
func (m *Matcher) Excluded(rel string) bool {
	rel = paths.NormalizePath(rel)
	if rel == "." || rel == "" {
		return false
	}
	for _, seg := range strings.Split(rel, "/") {
		if m.segmentExcluded(seg) {
			return true
		}
	}
	for _, g := range m.pathGlobs {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
		// A directory glob such as "gen/**" also excludes the directory itself.
		if strings.HasSuffix(g, "/**") && strings.TrimSuffix(g, "/**") == rel {
			return true
		}
	}
	return false
}

func (m *Matcher) segmentExcluded(seg string) bool {
	if m.names[seg] {
		return true
	}
	for _, suffix := range m.suffixes {
		if strings.HasSuffix(seg, suffix) {
			return true
		}
	}
	for _, g := range m.segmentGlobs {
		if ok, _ := doublestar.Match(g, seg); ok {
			return true
		}
	}
	return false
}

// Scan walks root and returns the matching source files. Symbolic links to
// directories are followed once per real directory so link loops terminate.
func Scan(ctx context.Context, root string, opts Options) (*Result, error) {
	logger := slogutil.OrDiscard(opts.Logger)

	matcher, err := NewMatcher(opts.Exclude)
	if err != nil {
		return nil, err
	}
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	exts := make(map[string]bool)
	for _, e := range opts.Extensions {
		exts[strings.ToLower(e)] = true
	}

	w := &walker{
		root:     root,
		matcher:  matcher,
		maxDepth: maxDepth,
		maxSize:  opts.MaxFileSize,
		exts:     exts,
		visited:  make(map[string]bool),
		logger:   logger,
		result:   &Result{Root: root},
	}
	if err := w.walk(ctx, root, "", 0); err != nil {
		return nil, err
	}

	sort.Strings(w.result.Files)
	w.result.Files = dedupe(w.result.Files)
	logger.Debug("Scan completed",
		"root", root,
		"files", len(w.result.Files),
		"skipped", len(w.result.Skipped),
	)
	return w.result, nil
}

type walker struct {
	root     string
	matcher  *Matcher
	maxDepth int
	maxSize  int64
	exts     map[string]bool
	visited  map[string]bool
	logger   *slog.Logger
	result   *Result
}

func (w *walker) walk(ctx context.Context, dir, rel string, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		w.skip(rel, "unresolvable directory")
		return nil
	}
	if w.visited[real] {
		w.skip(rel, "symlink loop")
		return nil
	}
	w.visited[real] = true
	if rel != "" && !paths.IsWithinRepo(real, w.root) {
		w.skip(rel, "outside root")
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if rel == "" {
			return err
		}
		w.logger.Warn("Cannot read directory", "path", rel, "error", err.Error())
		w.skip(rel, "unreadable directory")
		return nil
	}

	for _, entry := range entries {
		name := entry.Name()
		childRel := name
		if rel != "" {
			childRel = rel + "/" + name
		}
		if w.matcher.Excluded(childRel) {
			continue
		}

		full := filepath.Join(dir, name)
		info, err := w.stat(entry, full)
		if err != nil {
			w.skip(childRel, "broken symlink")
			continue
		}

		if info.IsDir() {
			if depth+1 > w.maxDepth {
				w.skip(childRel, "max depth exceeded")
				continue
			}
			if err := w.walk(ctx, full, childRel, depth+1); err != nil {
				return err
			}
			continue
		}
		if !info.Mode().IsRegular() || !w.wanted(name) {
			continue
		}
		if w.maxSize > 0 && info.Size() > w.maxSize {
			w.skip(childRel, "file too large")
			continue
		}
		w.result.Files = append(w.result.Files, childRel)
	}
	return nil
}

func (w *walker) stat(entry fs.DirEntry, full string) (fs.FileInfo, error) {
	if entry.Type()&fs.ModeSymlink != 0 {
		return os.Stat(full)
	}
	return entry.Info()
}

func (w *walker) wanted(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if len(w.exts) > 0 {
		return w.exts[ext]
	}
	_, ok := lang.FromExtension(ext)
	return ok
}

func (w *walker) skip(rel, reason string) {
	w.result.Skipped = append(w.result.Skipped, Skipped{Path: rel, Reason: reason})
}

// CountExtensions tallies source files by lower-cased extension, the input
// lang.Detect expects.
func CountExtensions(files []string) map[string]int {
	counts := make(map[string]int)
	for _, f := range files {
		if _, ok := lang.FromPath(f); ok {
			counts[strings.ToLower(filepath.Ext(f))]++
		}
	}
	return counts
}

func dedupe(sorted []string) []string {
	if len(sorted) < 2 {
		return sorted
	}
	out := sorted[:1]
	for _, s := range sorted[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}
