package gridfile

import (
	"context"
	"io/fs"
	"time"

	"github.com/couchcryptid/climate-grid-etl/internal/domain"
	lru "github.com/hashicorp/golang-lru/v2"
)

// statter is implemented by sources that can report file metadata.
type statter interface {
	Stat(name string) (fs.FileInfo, error)
}

// CacheObserver receives cache hit/miss notifications.
type CacheObserver func(hit bool)

// CachedSource wraps a GridSource with an in-memory LRU cache of decoded
// rows. When the inner source can Stat files, entries are invalidated when
// the file size or modification time changes. Cached rows are shared between
// callers and must not be modified.
type CachedSource struct {
	inner   domain.GridSource
	cache   *lru.Cache[string, cacheEntry]
	observe CacheObserver
}

type cacheEntry struct {
	rows    []domain.RawGridRow
	size    int64
	modTime time.Time
}

// NewCachedSource creates a cache decorator holding up to maxEntries grids.
// observe may be nil.
func NewCachedSource(inner domain.GridSource, maxEntries int, observe CacheObserver) (*CachedSource, error) {
	cache, err := lru.New[string, cacheEntry](maxEntries)
	if err != nil {
		return nil, err
	}
	if observe == nil {
		observe = func(bool) {}
	}
	return &CachedSource{inner: inner, cache: cache, observe: observe}, nil
}

func (c *CachedSource) LoadGrid(ctx context.Context, name, encoding string) ([]domain.RawGridRow, error) {
	key := name + "|" + encoding

	var size int64
	var modTime time.Time
	if st, ok := c.inner.(statter); ok {
		info, err := st.Stat(name)
		if err == nil {
			size, modTime = info.Size(), info.ModTime()
		}
	}

	if e, ok := c.cache.Get(key); ok && e.size == size && e.modTime.Equal(modTime) {
		c.observe(true)
		return e.rows, nil
	}
	c.observe(false)

	rows, err := c.inner.LoadGrid(ctx, name, encoding)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, cacheEntry{rows: rows, size: size, modTime: modTime})
	return rows, nil
}

// Len returns the number of cached grids.
func (c *CachedSource) Len() int {
	return c.cache.Len()
}
