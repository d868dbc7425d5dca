package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ResponseCache stores summarization responses keyed by a digest of the
// backend, summary kind and article text.
type ResponseCache struct {
	Dir string
	// StrictPerms, when true, enforces 0700 on the directory and 0600 on files.
	StrictPerms bool
}

// KeyFrom builds a cache key from its parts. Parts are joined with a blank
// line so that ("ab","c") and ("a","bc") differ.
func KeyFrom(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "\n\n")))
	return hex.EncodeToString(h[:])
}

func (c *ResponseCache) pathFor(key string) string {
	return filepath.Join(c.Dir, key+".json")
}

// Get returns cached bytes if present. A miss is not an error.
func (c *ResponseCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := ensureDir(c.Dir, c.StrictPerms); err != nil {
		return nil, false, err
	}
	p := c.pathFor(key)
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, false, nil
	}
	// Touch file mtime on access for LRU purposes
	now := time.Now()
	_ = os.Chtimes(p, now, now)
	return b, true, nil
}

// Save writes bytes to cache.
func (c *ResponseCache) Save(_ context.Context, key string, data []byte) error {
	if err := ensureDir(c.Dir, c.StrictPerms); err != nil {
		return err
	}
	return os.WriteFile(c.pathFor(key), data, fileMode(c.StrictPerms))
}
