package extract

import (
	"io/fs"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of memoized parses.
const DefaultCacheSize = 4096

// cacheKey includes rel because results carry repo-relative paths, and the
// same file seen from another root must not reuse them.
type cacheKey struct {
	path  string
	rel   string
	size  int64
	mtime time.Time
}

// Cache memoizes extraction results by path, relative path, size and
// modification time.
// A nil *Cache is valid and caches nothing. Safe for concurrent use.
type Cache struct {
	entries *lru.Cache[cacheKey, *FileResult]
}

// NewCache creates a cache holding at most size results.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[cacheKey, *FileResult](size)
	if err != nil {
		return nil, err
	}
	return &Cache{entries: entries}, nil
}

// Get returns a cached result for an unchanged file.
func (c *Cache) Get(path, rel string, info fs.FileInfo) (*FileResult, bool) {
	if c == nil {
		return nil, false
	}
	return c.entries.Get(keyOf(path, rel, info))
}

// Put stores a result.
func (c *Cache) Put(path, rel string, info fs.FileInfo, res *FileResult) {
	if c == nil || res == nil {
		return
	}
	c.entries.Add(keyOf(path, rel, info), res)
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}

func keyOf(path, rel string, info fs.FileInfo) cacheKey {
	return cacheKey{path: path, rel: rel, size: info.Size(), mtime: info.ModTime()}
}
