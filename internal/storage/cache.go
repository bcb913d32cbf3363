package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
)

// Cache keeps the raw HTML of each song page, once per slug. Rewriting a
// slug is idempotent: identical content is left alone, anything else
// replaces the file (last writer wins).
type Cache struct {
	dir string
}

func NewCache(dir string) *Cache {
	if dir == "" {
		dir = filepath.Join(defaultDir, "cache")
	}
	return &Cache{dir: dir}
}

func (c *Cache) path(slug string) (string, error) {
	if err := CheckSlug(slug); err != nil {
		return "", err
	}
	return filepath.Join(c.dir, slug+".html"), nil
}

// Get returns the cached page for slug.
func (c *Cache) Get(slug string) ([]byte, bool, error) {
	p, err := c.path(slug)
	if err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

// Put stores page under slug and reports whether the file changed.
func (c *Cache) Put(slug string, page []byte) (bool, error) {
	existing, ok, err := c.Get(slug)
	if err != nil {
		return false, err
	}
	if ok && bytes.Equal(existing, page) {
		return false, nil
	}
	p, err := c.path(slug)
	if err != nil {
		return false, err
	}
	if err := writeFileAtomic(p, page, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
