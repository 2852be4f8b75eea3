package registryinfra

import (
	"context"
	"strings"

	"github.com/go-clib/clib/internal/dcontext"
)

// DefaultRegistryURL is the built-in default registry consulted last,
// behind anything the root manifest declares.
const DefaultRegistryURL = "https://github.com/clibs/clib/wiki"

// Manager holds an ordered list of registries and performs first-hit
// lookup across them. Registries declared by the root manifest are
// placed ahead of the built-in default, so a project can override where
// any given package id resolves.
type Manager struct {
	registries []Registry
}

// NewManager builds a Manager from manifestRegistryURLs (highest
// precedence first; the CLI passes the root manifest's registries ahead
// of the tool configuration's) followed by the built-in default. Unknown-host registries are skipped with a logged warning
// rather than failing construction. cache, if non-nil, is handed to
// every constructed registry so repeated listing fetches can be served
// from disk instead of the network.
func NewManager(ctx dcontext.Context, manifestRegistryURLs []string, tokens TokenSource, cache SearchCache) *Manager {
	m := &Manager{}

	for _, url := range manifestRegistryURLs {
		reg, err := New(url, tokens, cache)
		if err != nil {
			dcontext.GetLogger(ctx).Warnf("registryinfra: skipping registry %q: %v", url, err)
			continue
		}

		m.registries = append(m.registries, reg)
	}

	def, err := New(DefaultRegistryURL, tokens, cache)
	if err != nil {
		dcontext.GetLogger(ctx).Warnf("registryinfra: skipping default registry: %v", err)
	} else {
		m.registries = append(m.registries, def)
	}

	return m
}

// NewManagerFromRegistries builds a Manager directly from an already
// ordered list of registries, bypassing URL construction. Used by tests
// and by callers (e.g. the resolver's own test suite) that need to
// inject fakes in place of live wiki/forge backends.
func NewManagerFromRegistries(registries []Registry) *Manager {
	return &Manager{registries: registries}
}

// FindPackage performs first-hit lookup of id ("author/name") across the
// managed registries in precedence order, fetching each lazily as needed.
// It returns the matching Record, whose Href is the package's base URL,
// or false if no registry knows id.
func (m *Manager) FindPackage(ctx dcontext.Context, id string) (Record, bool) {
	for _, reg := range m.registries {
		if err := reg.Fetch(ctx); err != nil {
			dcontext.GetLogger(ctx).Warnf("registryinfra: registry fetch failed: %v", err)
			continue
		}

		for _, rec := range reg.Iterate() {
			if rec.ID == id {
				return rec, true
			}
		}
	}

	return Record{}, false
}

// Search lists every record across the managed registries whose id,
// description or category contains every term in queries
// (case-insensitively). An empty queries list returns the full combined
// listing, for a bare `search` with no arguments.
func (m *Manager) Search(ctx dcontext.Context, queries []string) []Record {
	var matches []Record

	for _, reg := range m.registries {
		if err := reg.Fetch(ctx); err != nil {
			dcontext.GetLogger(ctx).Warnf("registryinfra: registry fetch failed: %v", err)
			continue
		}

		for _, rec := range reg.Iterate() {
			if matchesAll(rec, queries) {
				matches = append(matches, rec)
			}
		}
	}

	return matches
}

func matchesAll(rec Record, queries []string) bool {
	haystack := strings.ToLower(rec.ID + " " + rec.Description + " " + rec.Category)

	for _, q := range queries {
		if !strings.Contains(haystack, strings.ToLower(q)) {
			return false
		}
	}

	return true
}
