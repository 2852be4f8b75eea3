package resolver

import (
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/go-clib/clib/internal/dcontext"
	"github.com/go-clib/clib/pkgmodel"
	"github.com/go-clib/clib/repoinfra"
)

// installDependencies resolves and recursively installs every entry of
// deps (a manifest's "dependencies" or "development" map) into depsDir,
// up to r.concurrency installs in flight at once. Recursive installs
// never pull their own development dependencies — only the root install
// does, since dev tooling has no business following a package deep into
// its own dependency tree.
func (r *Resolver) installDependencies(ctx dcontext.Context, deps map[string]string, depsDir string) error {
	if len(deps) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, name := range sortedKeys(deps) {
		name, versionStr := name, deps[name]

		g.Go(func() error {
			child, err := r.resolveDependency(gctx, name, versionStr)
			if err != nil {
				return err
			}

			return r.installOne(gctx, child, depsDir, false)
		})
	}

	return g.Wait()
}

// Resolve turns a CLI-supplied slug string ("[@][author/]name[@version]")
// into a fetched, parsed Package, for the `install`/`update` commands'
// explicit-argument form. Unlike resolveDependency, this is not
// deduplicated through singleflight: it is the resolver's entry point,
// not a fan-out over a manifest's dependency map.
func (r *Resolver) Resolve(ctx dcontext.Context, slugStr string) (*pkgmodel.Package, error) {
	slug, err := pkgmodel.ParseSlug(slugStr)
	if err != nil {
		return nil, fmt.Errorf("resolver: invalid package slug %q: %w", slugStr, err)
	}

	return r.fetchPackage(ctx, slug)
}

// resolveDependency turns one "<id>": "<version>" manifest entry into a
// parsed Package, via the registry manager and the repository layer's
// fetch_manifest, with concurrent duplicate lookups for the same slug
// collapsed through singleflight.
func (r *Resolver) resolveDependency(ctx dcontext.Context, idStr, versionStr string) (*pkgmodel.Package, error) {
	id, err := pkgmodel.ParsePackageId(idStr)
	if err != nil {
		return nil, fmt.Errorf("resolver: invalid dependency id %q: %w", idStr, err)
	}

	slug := pkgmodel.Slug{PackageId: id, Version: pkgmodel.VersionRef(versionStr).Normalize()}

	v, err, _ := r.sf.Do(slug.String(), func() (any, error) {
		return r.fetchPackage(ctx, slug)
	})
	if err != nil {
		return nil, err
	}

	return v.(*pkgmodel.Package), nil
}

// fetchPackage finds slug's registry record and fetches+parses its
// manifest, consulting the manifest cache before touching the network
// and populating it afterward. Package not found anywhere is fatal for
// that dependency.
func (r *Resolver) fetchPackage(ctx dcontext.Context, slug pkgmodel.Slug) (*pkgmodel.Package, error) {
	rec, ok := r.registries.FindPackage(ctx, slug.PackageId.String())
	if !ok {
		return nil, fmt.Errorf("resolver: package %q not found in any registry", slug.PackageId.String())
	}

	author, name, version := slug.Author, slug.Name, string(slug.Version)

	if !r.skipCache && r.cache != nil {
		if raw, err := r.cache.ReadManifest(author, name, version); err == nil {
			filename, body := splitCachedManifest(raw)

			pkg, err := pkgmodel.NewPackage([]byte(body), filename, rec.Href, slug)
			if err == nil {
				return pkg, nil
			}
			// fall through to a live fetch if the cached entry doesn't parse.
		}
	}

	repo, err := r.repositoryFor(rec.Href)
	if err != nil {
		return nil, fmt.Errorf("resolver: resolving repository for %q: %w", slug.PackageId.String(), err)
	}

	body, filename, err := repoinfra.FetchManifest(ctx, repo, version)
	if err != nil {
		return nil, fmt.Errorf("resolver: fetching manifest for %q: %w", slug.PackageId.String(), err)
	}

	pkg, err := pkgmodel.NewPackage(body, filename, rec.Href, slug)
	if err != nil {
		return nil, fmt.Errorf("resolver: parsing manifest for %q: %w", slug.PackageId.String(), err)
	}

	if r.cache != nil {
		if err := r.cache.SaveManifest(author, name, version, joinCachedManifest(filename, body)); err != nil {
			dcontext.GetLogger(ctx).Debugf("resolver: caching manifest for %q: %v", slug.PackageId.String(), err)
		}
	}

	return pkg, nil
}

// joinCachedManifest/splitCachedManifest encode the manifest filename
// alongside its body in the cache entry, so a cache hit still knows
// whether the package was published as clib.json or package.json.
func joinCachedManifest(filename string, body []byte) string {
	return filename + "\n" + string(body)
}

func splitCachedManifest(raw string) (filename, body string) {
	filename, body, ok := strings.Cut(raw, "\n")
	if !ok {
		return pkgmodel.ManifestFilenames[0], raw
	}

	return filename, body
}
