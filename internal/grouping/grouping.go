// Package grouping maps a file set to named module groups.
package grouping

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"depscope/internal/paths"
)

// Strategy selects how files are grouped.
type Strategy string

const (
	StrategyDirectory Strategy = "directory"
	StrategyPackage   Strategy = "package"
	StrategyFeature   Strategy = "feature"
	StrategyLayer     Strategy = "layer"
)

// ParseStrategy parses a strategy name; "" means directory.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyDirectory:
		return StrategyDirectory, nil
	case StrategyPackage:
		return StrategyPackage, nil
	case StrategyFeature:
		return StrategyFeature, nil
	case StrategyLayer:
		return StrategyLayer, nil
	}
	return "", fmt.Errorf("unknown grouping %q (want directory, package, feature or layer)", s)
}

// RootGroup names files that sit directly in the project root.
const RootGroup = "."

// Group is a named set of files.
type Group struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// Index maps every member to the name of its group.
func Index(groups []Group) map[string]string {
	idx := make(map[string]string)
	for _, g := range groups {
		for _, m := range g.Members {
			idx[m] = g.Name
		}
	}
	return idx
}

// ByDirectory groups files by their directory truncated to depth segments.
// A depth below 1 is treated as 1.
func ByDirectory(files []string, depth int) []Group {
	if depth < 1 {
		depth = 1
	}
	return collect(files, func(f string) string {
		segs := paths.Segments(f)
		if len(segs) == 0 {
			return RootGroup
		}
		if len(segs) > depth {
			segs = segs[:depth]
		}
		return strings.Join(segs, "/")
	})
}

// ByPackage groups files by the nearest ancestor directory holding one of
// markers, probed on disk under root. Files with no marked ancestor fall
// into the root group.
func ByPackage(root string, files []string, markers []string) []Group {
	marked := make(map[string]bool)
	isPackage := func(dir string) bool {
		if v, ok := marked[dir]; ok {
			return v
		}
		found := false
		for _, m := range markers {
			if info, err := os.Stat(filepath.Join(root, filepath.FromSlash(dir), m)); err == nil && !info.IsDir() {
				found = true
				break
			}
		}
		marked[dir] = found
		return found
	}

	return collect(files, func(f string) string {
		for dir := paths.DirOf(f); dir != "" && dir != "."; dir = paths.DirOf(dir) {
			if isPackage(dir) {
				return dir
			}
		}
		return RootGroup
	})
}

// collect buckets files by key and returns groups sorted by name with
// sorted members.
func collect(files []string, key func(string) string) []Group {
	buckets := make(map[string][]string)
	for _, f := range files {
		k := key(f)
		buckets[k] = append(buckets[k], f)
	}
	groups := make([]Group, 0, len(buckets))
	for name, members := range buckets {
		sort.Strings(members)
		groups = append(groups, Group{Name: name, Members: members})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups
}

// lowerSegments returns the directory segments of f, lowercased, deepest
// first.
func lowerSegments(f string) []string {
	segs := paths.Segments(f)
	out := make([]string, len(segs))
	for i, s := range segs {
		out[len(segs)-1-i] = strings.ToLower(s)
	}
	return out
}

func baseName(f string) string {
	return strings.ToLower(path.Base(f))
}
