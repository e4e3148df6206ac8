package treepath

import (
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
)

// Cache memoizes parsed path expressions keyed by path text. Hosts tend to
// re-issue the same handful of paths per session; caching skips re-parsing
// without changing semantics, since an Expr is immutable.
type Cache struct {
	c    *ristretto.Cache[string, *Expr]
	opts []ParseOption
}

// NewCache creates a cache holding up to maxEntries compiled expressions.
// The given parse options apply to every miss.
func NewCache(maxEntries int64, opts ...ParseOption) (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, *Expr]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("expression cache: %w", err)
	}
	return &Cache{c: c, opts: opts}, nil
}

// Get returns the compiled expression for path, parsing on a miss.
func (c *Cache) Get(path string) (*Expr, error) {
	if expr, ok := c.c.Get(path); ok {
		return expr, nil
	}
	expr, err := Parse(path, c.opts...)
	if err != nil {
		return nil, err
	}
	c.c.Set(path, expr, 1)
	return expr, nil
}

// Wait blocks until pending cache writes are applied. Useful in tests.
func (c *Cache) Wait() { c.c.Wait() }

// Close releases the cache's resources.
func (c *Cache) Close() { c.c.Close() }
