package resolver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/go-clib/clib/cachepkg"
	"github.com/go-clib/clib/internal/dcontext"
	"github.com/go-clib/clib/pkgmodel"
	"github.com/go-clib/clib/repoinfra"
)

// installOne runs the resolve/install contract for a single Package
// pkg, recursing into its dependencies (and, when dev is true, its
// development dependencies).
func (r *Resolver) installOne(ctx dcontext.Context, pkg *pkgmodel.Package, depsDir string, dev bool) error {
	log := dcontext.GetLogger(ctx)

	// Step 1: deduplicate under the visited-set mutex, keyed by name only.
	// Two packages that both depend on the same third package (a diamond
	// in the dependency graph) must only install it once.
	if r.markVisited(pkg.Name) {
		log.Debugf("resolver: %s already visited, skipping", pkg.Name)
		return nil
	}

	r.arena.Store(pkg)

	// Step 2: prepare directory.
	pkgDir := pkgDirFor(depsDir, pkg.Name)
	if err := ensureDir(pkgDir); err != nil {
		return fatalf(pkg.Name, err)
	}

	// Step 3: write manifest, unless this is a meta package with no src.
	if !pkg.IsMeta() {
		manifestName := pkg.ManifestFile
		if manifestName == "" {
			manifestName = pkgmodel.ManifestFilenames[0]
		}

		if err := os.WriteFile(filepath.Join(pkgDir, manifestName), pkg.Raw, 0o644); err != nil {
			return fatalf(pkg.Name, fmt.Errorf("writing manifest: %w", err))
		}
	}

	repo, err := r.repositoryFor(pkg.BaseURL)
	if err != nil {
		return fatalf(pkg.Name, fmt.Errorf("resolving repository backend: %w", err))
	}

	// Step 4: makefile, fetched synchronously.
	if pkg.Makefile != "" {
		if _, err := repoinfra.DownloadFile(ctx, repo, pkg.Version, pkg.Makefile, pkgDir).Join(); err != nil {
			return fatalf(pkg.Name, fmt.Errorf("fetching makefile: %w", err))
		}
	}

	// Step 5: nothing to fetch for a meta package.
	if len(pkg.Src) > 0 {
		if err := r.fetchSrc(ctx, pkg, repo, pkgDir); err != nil {
			return fatalf(pkg.Name, err)
		}
	}

	// Step 9: configure hook.
	if pkg.Configure != "" {
		if err := runHook(ctx, pkgDir, pkg.Configure, r.hookEnv(pkg, depsDir)); err != nil {
			return fatalf(pkg.Name, fmt.Errorf("configure hook: %w", err))
		}
	}

	// Step 10: install hook, via the executable-install subroutine when
	// one is declared.
	if pkg.Install != "" {
		if err := r.executableInstall(ctx, pkg, repo, depsDir); err != nil {
			return fatalf(pkg.Name, fmt.Errorf("install hook: %w", err))
		}
	}

	// Step 11: dependencies.
	if err := r.installDependencies(ctx, pkg.Dependencies, depsDir); err != nil {
		return err
	}

	// Step 12: development dependencies, root only.
	if dev {
		if err := r.installDependencies(ctx, pkg.Development, depsDir); err != nil {
			return err
		}
	}

	return nil
}

// markVisited reports whether name was already visited. In force mode
// the visited set still records every name (so logging/introspection see
// accurate state) but never suppresses a reinstall.
func (r *Resolver) markVisited(name string) (alreadyVisited bool) {
	r.visitedMu.Lock()
	defer r.visitedMu.Unlock()

	was := r.visited[name]
	r.visited[name] = true

	return was && !r.force
}

// fetchSrc implements steps 6-8: try the cache, otherwise fetch every
// src entry with at most r.concurrency in flight, then populate the
// cache on success.
func (r *Resolver) fetchSrc(ctx dcontext.Context, pkg *pkgmodel.Package, repo repoinfra.Repository, pkgDir string) error {
	log := dcontext.GetLogger(ctx)
	author, name, version := pkg.Author(), pkg.Name, pkg.Version

	if !r.skipCache && r.cache != nil && r.cache.HasPackage(author, name, version) {
		err := r.cache.LoadPackage(author, name, version, pkgDir)
		switch {
		case err == nil:
			log.Debugf("resolver: %s loaded from cache", name)
			return nil
		case errors.Is(err, cachepkg.ErrExpired):
			log.Debugf("resolver: %s cache entry expired, refetching", name)
		default:
			log.Warnf("resolver: %s cache read failed, refetching: %v", name, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, filePath := range pkg.Src {
		filePath := filePath

		g.Go(func() error {
			_, err := repoinfra.DownloadFile(gctx, repo, version, filePath, pkgDir).Join()
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("fetching src: %w", err)
	}

	if r.cache != nil {
		if err := r.cache.SavePackage(author, name, version, pkgDir); err != nil {
			log.Warnf("resolver: %s cache write failed: %v", name, err)
		}
	}

	return nil
}

// hookEnv builds the PREFIX/CFLAGS environment around configure/install
// hook invocations.
func (r *Resolver) hookEnv(pkg *pkgmodel.Package, depsDir string) []string {
	prefix := pkg.Prefix
	if prefix == "" {
		prefix = os.Getenv("PREFIX")
	}

	if prefix == "" {
		prefix = os.Getenv("CLIB_PREFIX")
	}

	cflags := fmt.Sprintf("-I %s %s", depsDir, os.Getenv("CFLAGS"))

	env := []string{"CFLAGS=" + cflags}
	if prefix != "" {
		env = append(env, "PREFIX="+prefix, "CLIB_PREFIX="+prefix)
	}

	if r.force {
		env = append(env, "CLIB_FORCE=1")
	}

	return env
}

// runHook is a small indirection so executableInstall and installOne
// share exactly one place that knows how a manifest shell command runs.
var runHook = defaultRunHook
