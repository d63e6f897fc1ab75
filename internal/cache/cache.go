// Package cache stores per-email operation results on disk so repeated
// batch runs over the same mailbox skip redundant backend calls. Entries
// are content-addressed and zstd-compressed.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
)

const fileExt = ".json.zst"

var (
	// Stateless zstd coders are safe for concurrent use.
	zstdEnc, _ = zstd.NewWriter(nil)
	zstdDec, _ = zstd.NewReader(nil)
)

// Cache provides result caching keyed by operation and email identity.
type Cache struct {
	dir string
	mu  sync.Mutex
}

// New creates a cache rooted at dir. An empty dir disables the cache;
// Get always misses and Put is a no-op.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Key derives the cache key for an operation on an email. The snippet is
// included so an email whose content changed under the same ID misses.
func Key(op, emailID, snippet string) string {
	h := sha256.New()
	writeString(h, op)
	writeString(h, emailID)
	writeString(h, snippet)
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached value into out. Returns false on miss or when the
// stored entry cannot be decoded.
func (c *Cache) Get(key string, out any) bool {
	if c.dir == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	compressed, err := os.ReadFile(c.path(key))
	if err != nil {
		return false
	}
	data, err := zstdDec.DecodeAll(compressed, nil)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

// Put stores a value under key.
func (c *Cache) Put(key string, v any) error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}

	compressed := zstdEnc.EncodeAll(data, nil)
	if err := os.WriteFile(c.path(key), compressed, 0o644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	return nil
}

// Clear removes all cached entries. The directory is inspected first and
// the call refuses to delete anything that does not look like a cache.
func (c *Cache) Clear() error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := os.Stat(c.dir); os.IsNotExist(err) {
		return nil
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			return fmt.Errorf("cache directory contains subdirectories - refusing to delete for safety")
		}
		if !strings.HasSuffix(entry.Name(), fileExt) {
			return fmt.Errorf("cache directory contains non-cache files - refusing to delete for safety")
		}
	}

	return os.RemoveAll(c.dir)
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+fileExt)
}

func writeString(w io.Writer, s string) {
	// Null byte delimiter prevents hash collisions between adjacent fields.
	w.Write([]byte(s + "\x00")) //nolint:errcheck
}
