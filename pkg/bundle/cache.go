package bundle

import (
	"context"
	"fmt"
	"io"
	"io/fs"

	lru "github.com/hashicorp/golang-lru"

	"github.com/yaklabco/htmlbundle/pkg/fsutil"
)

// DefaultCacheEntries is the source cache size used by the CLI.
const DefaultCacheEntries = 512

// cachedFS remembers the raw bytes of sources read through it until purged.
// Transforms run on the cached bytes, never before caching.
type cachedFS struct {
	fs.FS

	entries *lru.Cache
}

func newCachedFS(fsys fs.FS, size int) (*cachedFS, error) {
	entries, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("%w: cache: %w", ErrInvalidConfig, err)
	}
	return &cachedFS{FS: fsys, entries: entries}, nil
}

// readFile returns the content of name, reading it at most once until purge.
func (c *cachedFS) readFile(ctx context.Context, name string) ([]byte, error) {
	if content, ok := c.entries.Get(name); ok {
		return content.([]byte), nil //nolint:forcetypeassert // only []byte is stored
	}

	file, err := fsutil.OpenFS(ctx, c.FS, name)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	c.entries.Add(name, content)
	return content, nil
}

func (c *cachedFS) purge() {
	c.entries.Purge()
}
