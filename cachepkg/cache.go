// Package cachepkg is the filesystem-backed cache interposed between the
// resolver and the network: manifests, unpacked package trees, and the
// singleton registry-listing body, all keyed by (author, name, version)
// and subject to age-based expiration.
//
// Layout: a root directory under the user's per-user cache location,
// with writes staged to a temp path and renamed into place so a reader
// never observes a partial entry.
package cachepkg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Default TTLs for each cache kind.
const (
	ManifestTTL = 30 * 24 * time.Hour
	PackageTTL  = 30 * 24 * time.Hour
	SearchTTL   = 24 * time.Hour
)

// ErrExpired is returned by LoadPackage when the requested entry exists but
// is older than its TTL. The caller must treat this the same as a miss,
// except that the stale entry has already been deleted.
var ErrExpired = errors.New("cachepkg: entry expired")

// Cache is the filesystem-backed manifest/package/search cache. All
// mutating operations are safe for concurrent callers.
type Cache struct {
	base string

	manifestTTL time.Duration
	packageTTL  time.Duration
	searchTTL   time.Duration

	mu sync.Mutex

	// mirror, when non-nil, is consulted before the filesystem on manifest
	// reads and written-through after filesystem saves.
	mirror ManifestMirror
}

// ManifestMirror is the optional secondary cache front for manifests (see
// redismirror.go). It never needs its own expiry logic: entries are
// written with their own TTL and simply vanish.
type ManifestMirror interface {
	Get(author, name, version string) (raw string, ok bool)
	Set(author, name, version, raw string, ttl time.Duration)
	Delete(author, name, version string)
}

// Option configures a Cache at construction time.
type Option func(*Cache)

// WithMirror attaches an optional distributed front for manifest lookups.
func WithMirror(m ManifestMirror) Option {
	return func(c *Cache) { c.mirror = m }
}

// WithTTLs overrides the default manifest/package/search TTLs, primarily
// for tests.
func WithTTLs(manifest, pkg, search time.Duration) Option {
	return func(c *Cache) {
		c.manifestTTL = manifest
		c.packageTTL = pkg
		c.searchTTL = search
	}
}

// New constructs a Cache rooted at base. The directory tree is created
// lazily on first use, not here.
func New(base string, opts ...Option) *Cache {
	c := &Cache{
		base:        base,
		manifestTTL: ManifestTTL,
		packageTTL:  PackageTTL,
		searchTTL:   SearchTTL,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// DefaultBase returns "$HOME/.cache/clib" (or its per-platform equivalent
// via os.UserCacheDir), clib's default cache root.
func DefaultBase() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("cachepkg: resolving user cache dir: %w", err)
	}

	return filepath.Join(dir, "clib"), nil
}

func (c *Cache) jsonDir() string     { return filepath.Join(c.base, "json") }
func (c *Cache) packagesDir() string { return filepath.Join(c.base, "packages") }
func (c *Cache) searchPath() string  { return filepath.Join(c.base, "search.html") }

func entryKey(author, name, version string) string {
	return fmt.Sprintf("%s_%s_%s", author, name, version)
}

func (c *Cache) manifestPath(author, name, version string) string {
	return filepath.Join(c.jsonDir(), entryKey(author, name, version)+".json")
}

func (c *Cache) packagePath(author, name, version string) string {
	return filepath.Join(c.packagesDir(), entryKey(author, name, version))
}

func isExpired(info os.FileInfo, ttl time.Duration) bool {
	return time.Since(info.ModTime()) > ttl
}

// atomicWriteFile writes data to path via a sibling temp file and a rename,
// so a reader never observes a partial write.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o777); err != nil {
		return err
	}

	tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())
	if err := os.WriteFile(tmp, data, perm); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}

	return nil
}
