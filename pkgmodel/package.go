package pkgmodel

import (
	"sync"
)

// Package is the runtime entity the resolver operates on: a parsed
// Manifest plus the resolution metadata needed to fetch and install it.
type Package struct {
	Manifest

	// Raw is the original manifest JSON text, preserved verbatim so it can
	// be re-serialized byte-for-byte into the installed package directory.
	Raw []byte

	// ManifestFile is whichever of ManifestFilenames this package's
	// manifest was actually fetched as ("clib.json" or "package.json").
	ManifestFile string

	// BaseURL is the registry-resolved base URL this package's files are
	// fetched relative to.
	BaseURL string
}

// Author returns the package's author, derived from Repo/Name the same way
// ResolvedRepo infers a repo slug, falling back to DefaultAuthor.
func (p *Package) Author() string {
	id, err := ParsePackageId(p.ResolvedRepo(DefaultAuthor))
	if err != nil {
		return DefaultAuthor
	}

	return id.Author
}

// ApplySlug forces the package's Name/Author/Version to match the slug it
// was resolved by, overriding whatever the manifest itself declared. This
// implements the "version forcing" rule: an explicit slug always wins over
// the manifest's own version field.
func (p *Package) ApplySlug(slug Slug) {
	if slug.Name != "" {
		p.Name = slug.Name
	}

	if slug.Name != "" || p.Repo == "" {
		p.Repo = slug.PackageId.String()
	}

	p.Version = string(slug.Version)
}

// NewPackage builds a Package from raw manifest bytes fetched under
// manifestFile from baseURL, applying slug-forcing immediately so every
// Package a caller observes already carries its resolved identity.
func NewPackage(raw []byte, manifestFile, baseURL string, slug Slug) (*Package, error) {
	m, err := ParseManifest(raw)
	if err != nil {
		return nil, err
	}

	p := &Package{
		Manifest:     m,
		Raw:          raw,
		ManifestFile: manifestFile,
		BaseURL:      baseURL,
	}
	p.ApplySlug(slug)

	return p, nil
}

// Arena is a name-keyed store of live Packages, filled by the resolver as
// it installs each package and kept apart from the resolver's own
// visited set. Keying by name rather than by pointer avoids needing a
// separate refcount: the resolver's dedup key already is the package
// name.
type Arena struct {
	mu    sync.Mutex
	byKey map[string]*Package
}

// NewArena constructs an empty Arena.
func NewArena() *Arena {
	return &Arena{byKey: make(map[string]*Package)}
}

// Store records pkg under its name, returning the Package already stored
// there if one exists (first-writer-wins, matching the resolver's visited
// set semantics).
func (a *Arena) Store(pkg *Package) *Package {
	a.mu.Lock()
	defer a.mu.Unlock()

	if existing, ok := a.byKey[pkg.Name]; ok {
		return existing
	}

	a.byKey[pkg.Name] = pkg

	return pkg
}

// Get returns the Package stored under name, if any.
func (a *Arena) Get(name string) (*Package, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	pkg, ok := a.byKey[name]

	return pkg, ok
}

// Names returns a snapshot of every name currently held in the arena.
func (a *Arena) Names() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	names := make([]string, 0, len(a.byKey))
	for k := range a.byKey {
		names = append(names, k)
	}

	return names
}
