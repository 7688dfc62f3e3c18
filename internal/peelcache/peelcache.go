// Package peelcache memoizes one step of the recursive unpack driver's
// peel loop (an ECD decrypt or a JPK decode) keyed by a hash of the
// input buffer. It is a pure optimization: a miss, an eviction, or a
// disk write failure never changes what the caller gets back, only
// how long it takes to get it.
package peelcache

import (
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-tinylfu"
	"github.com/klauspost/compress/zstd"
)

// Cache is a two-tier memoization layer in front of a peel step: an
// in-process tinylfu-admitted LRU, backed by an on-disk, zstd-compressed,
// content-addressed store.
type Cache struct {
	l1  *tinylfu.T[string, []byte]
	dir string
}

const defaultL1Size = 256

// New builds a Cache whose L2 store lives under dir (created on first
// write). An empty dir disables the L2 tier; the L1 tier is always
// active.
func New(dir string) *Cache {
	return &Cache{
		l1:  tinylfu.New[string, []byte](defaultL1Size, defaultL1Size*10, func(k string) uint64 { return xxhash.Sum64String(k) }),
		dir: dir,
	}
}

// DefaultDir returns the OS cache directory's rsfrontier/peels
// subdirectory, or "" if the OS cache directory can't be determined
// (in which case New still works with the L1 tier only).
func DefaultDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "rsfrontier", "peels")
}

func cacheKey(kind string, buf []byte) string {
	h := xxhash.New()
	_, _ = h.WriteString(kind)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(buf)
	return hex.EncodeToString(h.Sum(nil))
}

// Peel returns decode(buf), transparently memoized under kind (a short
// tag like "ecd" or "jpk" distinguishing which decoder produced the
// value, since the same bytes could in principle recur under either).
// The return value always equals what decode(buf) would have produced;
// cache hits only skip re-running decode.
func (c *Cache) Peel(kind string, buf []byte, decode func([]byte) ([]byte, error)) ([]byte, error) {
	key := cacheKey(kind, buf)

	if cached, ok := c.l1.Get(key); ok {
		out := make([]byte, len(cached))
		copy(out, cached)
		return out, nil
	}

	if out, ok := c.readL2(key); ok {
		c.l1.Add(key, out)
		cp := make([]byte, len(out))
		copy(cp, out)
		return cp, nil
	}

	out, err := decode(buf)
	if err != nil {
		return nil, err
	}

	c.l1.Add(key, out)
	c.writeL2(key, out)
	return out, nil
}

func (c *Cache) entryPath(key string) string {
	if c.dir == "" {
		return ""
	}
	return filepath.Join(c.dir, key+".zst")
}

func (c *Cache) readL2(key string) ([]byte, bool) {
	path := c.entryPath(key)
	if path == "" {
		return nil, false
	}
	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, false
	}
	defer dec.Close()
	out, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, false
	}
	return out, true
}

// writeL2 best-effort persists out under key; any failure (read-only
// directory, disk full, concurrent writer) is silently ignored, since
// the cache is never the source of truth.
func (c *Cache) writeL2(key string, out []byte) {
	path := c.entryPath(key)
	if path == "" {
		return
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return
	}
	compressed := enc.EncodeAll(out, nil)
	enc.Close()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, compressed, 0o644); err != nil {
		return
	}
	_ = os.Rename(tmp, path)
}
