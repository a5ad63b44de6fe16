// Package pagecache stores fetched HTML pages on disk as <key>.html.
package pagecache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Cache manages cached pages in a directory with an optional TTL.
type Cache struct {
	Dir string
	TTL time.Duration // 0 means entries never expire
}

// New creates a cache rooted at dir. The directory is created on first Set.
func New(dir string, ttl time.Duration) *Cache {
	return &Cache{Dir: dir, TTL: ttl}
}

// Path returns the file backing a cache key.
func (c *Cache) Path(key string) string {
	return filepath.Join(c.Dir, sanitizeKey(key)+".html")
}

// Get returns the cached page for key. ok is false when the entry is missing
// or older than the TTL.
func (c *Cache) Get(key string) (content string, ok bool, err error) {
	path := c.Path(key)

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("checking cache entry: %w", err)
	}

	if c.TTL > 0 && time.Since(info.ModTime()) > c.TTL {
		return "", false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, fmt.Errorf("reading cache entry: %w", err)
	}
	return string(data), true, nil
}

// Set stores content under key.
func (c *Cache) Set(key, content string) error {
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	if err := os.WriteFile(c.Path(key), []byte(content), 0644); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// CleanExpired removes entries older than the TTL and returns how many were
// removed.
func (c *Cache) CleanExpired() (int, error) {
	if c.TTL <= 0 {
		return 0, nil
	}

	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("listing cache directory: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".html") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if time.Since(info.ModTime()) > c.TTL {
			if err := os.Remove(filepath.Join(c.Dir, e.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// sanitizeKey keeps keys from escaping the cache directory.
func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, strings.TrimLeft(key, "."))
}
