// Package resolver implements the resolve/install recursion engine:
// given a root Package and a target deps directory, it fetches every
// transitively reachable dependency's manifest and source files, writes
// them into a flat per-name directory tree, and runs each package's
// declared configure/install hooks.
//
// Concurrency bookkeeping leans on golang.org/x/sync/errgroup for
// bounded fan-out over both source-file downloads and dependency
// recursion, plus golang.org/x/sync/singleflight to collapse concurrent
// duplicate manifest fetches for one (author, name, version).
package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/go-clib/clib/cachepkg"
	"github.com/go-clib/clib/internal/dcontext"
	"github.com/go-clib/clib/pkgmodel"
	"github.com/go-clib/clib/registryinfra"
	"github.com/go-clib/clib/repoinfra"
)

// Resolver drives the resolve/install algorithm over one deps directory.
// A Resolver is not reusable across independent deps directories with
// different force/dev settings; construct one per invocation via New.
type Resolver struct {
	cache       *cachepkg.Cache
	registries  *registryinfra.Manager
	tokens      repoinfra.TokenSource
	arena       *pkgmodel.Arena
	concurrency int

	// repoFactory builds the Repository backend for a package's base
	// URL. Defaults to repoinfra.New; overridable via
	// WithRepositoryFactory so tests can inject an in-memory backend
	// without a real github.com/gitlab host.
	repoFactory func(baseURL string, tokens repoinfra.TokenSource) (repoinfra.Repository, error)

	force     bool
	skipCache bool

	visited   map[string]bool
	visitedMu sync.Mutex

	sf singleflight.Group
}

// Option configures a Resolver at construction time.
type Option func(*Resolver)

// WithConcurrency overrides the default in-flight download/recursion
// budget N. A value <= 0 falls back to runtime.NumCPU().
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithForce makes the visited-set dedup check a no-op: every package,
// even one already visited, is reinstalled. Corresponds to the
// CLIB_FORCE / `-B` environment contract.
func WithForce(force bool) Option {
	return func(r *Resolver) { r.force = force }
}

// WithSkipCache skips reads of the manifest/package cache, forcing a
// network refetch even on a cache hit; fetched results are still written
// back to the cache. Used by the `update` CLI operation.
func WithSkipCache(skip bool) Option {
	return func(r *Resolver) { r.skipCache = skip }
}

// WithRepositoryFactory overrides how a Repository backend is built for
// a package's base URL, in place of the default host-dispatched
// repoinfra.New.
func WithRepositoryFactory(factory func(baseURL string, tokens repoinfra.TokenSource) (repoinfra.Repository, error)) Option {
	return func(r *Resolver) { r.repoFactory = factory }
}

// New constructs a Resolver over cache and registries, resolving
// authenticated repository access through tokens.
func New(cache *cachepkg.Cache, registries *registryinfra.Manager, tokens repoinfra.TokenSource, opts ...Option) *Resolver {
	r := &Resolver{
		cache:       cache,
		registries:  registries,
		tokens:      tokens,
		arena:       pkgmodel.NewArena(),
		concurrency: runtime.NumCPU(),
		visited:     make(map[string]bool),
		repoFactory: repoinfra.New,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Arena exposes the live-package store populated during Install, so a
// caller (the install command's --verbose listing) can recover the same
// Package metadata the resolver just wrote to disk without re-parsing
// every manifest from scratch.
func (r *Resolver) Arena() *pkgmodel.Arena { return r.arena }

// Install runs the resolve/install contract for root into depsDir. dev
// selects whether root's own development dependencies are pulled; this
// is typically only applied to the root package, since recursive
// dependency installs never pull their own dev dependencies.
func (r *Resolver) Install(ctx dcontext.Context, root *pkgmodel.Package, depsDir string, dev bool) error {
	return r.installOne(ctx, root, depsDir, dev)
}

// sortedKeys returns m's keys in a deterministic order. The manifest's
// dependency map does not preserve JSON document order once decoded;
// iterating in sorted order at least makes install order reproducible
// across runs.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// repositoryFor constructs the repository backend for a package's
// registry-resolved base URL.
func (r *Resolver) repositoryFor(baseURL string) (repoinfra.Repository, error) {
	return r.repoFactory(baseURL, r.tokens)
}

func pkgDirFor(depsDir, name string) string {
	return filepath.Join(depsDir, name)
}

// fatalf wraps errors the same way throughout the resolver, naming the
// offending package so a failure deep in the dependency tree is still
// traceable to the top-level install that triggered it.
func fatalf(name string, err error) error {
	return fmt.Errorf("resolver: installing %q: %w", name, err)
}

func ensureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}
