package extract

import (
	"context"
	"fmt"
	"os"

	"depscope/internal/errors"
	"depscope/internal/lang"
	"depscope/internal/paths"
)

// Extractor parses one language family.
type Extractor interface {
	// ExtractSource extracts from in-memory source. rel is the repo-relative
	// path recorded in the result.
	ExtractSource(ctx context.Context, rel string, src []byte) (*FileResult, error)
}

// Set dispatches files to the extractor for their extension.
type Set struct {
	ecma   Extractor
	python Extractor
	cache  *Cache
}

// NewSet creates the extractors for one run. cache may be nil.
func NewSet(cache *Cache) *Set {
	return &Set{
		ecma:   NewECMAScript(),
		python: NewPython(),
		cache:  cache,
	}
}

// For returns the extractor for a file path.
func (s *Set) For(rel string) (Extractor, lang.Language, error) {
	l, ok := lang.FromPath(rel)
	if !ok {
		return nil, "", fmt.Errorf("no extractor for %s", rel)
	}
	if l.IsECMAScript() {
		return s.ecma, l, nil
	}
	return s.python, l, nil
}

// Extract reads root/rel and extracts it. Read and parse failures are
// returned as FILE_PARSE_ERROR.
func (s *Set) Extract(ctx context.Context, root, rel string) (*FileResult, error) {
	full := paths.JoinRepoPath(root, rel)
	info, err := os.Stat(full)
	if err != nil {
		return nil, errors.Parse(rel, err)
	}
	if res, ok := s.cache.Get(full, rel, info); ok {
		return res, nil
	}

	ex, _, err := s.For(rel)
	if err != nil {
		return nil, errors.Parse(rel, err)
	}
	src, err := os.ReadFile(full)
	if err != nil {
		return nil, errors.Parse(rel, err)
	}
	res, err := ex.ExtractSource(ctx, rel, src)
	if err != nil {
		return nil, errors.Parse(rel, err)
	}
	res.Module.Size = info.Size()
	s.cache.Put(full, rel, info, res)
	return res, nil
}
