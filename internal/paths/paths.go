// Package paths converts between absolute filesystem paths and the
// repo-relative, forward-slash ids used as graph node names.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// CanonicalizePath converts an absolute path to a repo-relative canonical path
// - Resolves symlinks to real paths when the target exists
// - Makes path relative to repo root
// - Converts backslashes to forward slashes
func CanonicalizePath(absolutePath string, repoRoot string) (string, error) {
	resolved, err := filepath.EvalSymlinks(absolutePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		resolved = absolutePath
	}

	rootResolved, err := filepath.EvalSymlinks(repoRoot)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		rootResolved = repoRoot
	}

	rel, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// IsWithinRepo checks if a path is within the repository root
func IsWithinRepo(path string, repoRoot string) bool {
	canonical, err := CanonicalizePath(path, repoRoot)
	if err != nil {
		return false
	}
	return canonical != ".." && !strings.HasPrefix(canonical, "../")
}

// NormalizePath normalizes a path by converting backslashes to forward slashes
func NormalizePath(path string) string {
	return filepath.ToSlash(path)
}

// JoinRepoPath joins a repo root with a canonical path
func JoinRepoPath(repoRoot string, canonicalPath string) string {
	normalized := strings.ReplaceAll(canonicalPath, "\\", "/")
	parts := strings.Split(normalized, "/")
	return filepath.Join(append([]string{repoRoot}, parts...)...)
}

// Segments splits a canonical path into its directory segments, dropping
// the file name.
func Segments(canonicalPath string) []string {
	dir := DirOf(canonicalPath)
	if dir == "" {
		return nil
	}
	return strings.Split(dir, "/")
}

// DirOf returns the directory of a canonical path, "" for root-level files.
func DirOf(canonicalPath string) string {
	i := strings.LastIndex(canonicalPath, "/")
	if i < 0 {
		return ""
	}
	return canonicalPath[:i]
}

// TrimExt drops the final extension, keeping ".d" from ".d.ts" declaration
// files so that "types.d.ts" and "types.ts" stay distinct.
func TrimExt(p string) string {
	return strings.TrimSuffix(p, filepath.Ext(p))
}
