package resolver

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-clib/clib/cachepkg"
	"github.com/go-clib/clib/internal/dcontext"
	"github.com/go-clib/clib/registryinfra"
	"github.com/go-clib/clib/repoinfra"
)

// testRepository serves every file of a registered package from an
// in-memory httptest server, keyed by base URL, so the resolver's own
// tests never touch a real github.com/gitlab host.
type testRepository struct {
	srv *httptest.Server
}

func (t *testRepository) FileURL(version, filePath string) string {
	return t.srv.URL + "/" + version + "/" + filePath
}

func (t *testRepository) TarballURL(version string) string {
	return t.srv.URL + "/archive/" + version + ".tar.gz"
}

func (t *testRepository) AuthHeader() (string, string, bool) { return "", "", false }

// fakeRegistry resolves a fixed set of ids to httptest server base URLs.
type fakeRegistry struct {
	records []registryinfra.Record
}

func (f *fakeRegistry) Fetch(ctx dcontext.Context) error { return nil }
func (f *fakeRegistry) Iterate() []registryinfra.Record  { return f.records }

// testProject bundles one package's manifest + src file bodies, served
// over its own httptest server.
type testProject struct {
	srv *httptest.Server
}

func newTestProject(t *testing.T, manifest string, files map[string]string) *testProject {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/{version}/clib.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(manifest))
	})

	for name, body := range files {
		name, body := name, body
		mux.HandleFunc("/{version}/"+name, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		})
	}

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &testProject{srv: srv}
}

func setupResolver(t *testing.T, projects map[string]*testProject, opts ...Option) *Resolver {
	t.Helper()

	var records []registryinfra.Record
	for id, proj := range projects {
		records = append(records, registryinfra.Record{ID: id, Href: proj.srv.URL})
	}

	mgr := registryinfra.NewManagerFromRegistries([]registryinfra.Registry{&fakeRegistry{records: records}})

	opts = append([]Option{WithRepositoryFactory(func(baseURL string, tokens repoinfra.TokenSource) (repoinfra.Repository, error) {
		for _, proj := range projects {
			if proj.srv.URL == baseURL {
				return &testRepository{srv: proj.srv}, nil
			}
		}

		return nil, os.ErrNotExist
	})}, opts...)

	return New(nil, mgr, nil, opts...)
}

// setupResolverWithCache is setupResolver plus a real filesystem cache,
// for tests that exercise the manifest cache-aside path directly.
func setupResolverWithCache(t *testing.T, projects map[string]*testProject, cache *cachepkg.Cache) *Resolver {
	t.Helper()

	var records []registryinfra.Record
	for id, proj := range projects {
		records = append(records, registryinfra.Record{ID: id, Href: proj.srv.URL})
	}

	mgr := registryinfra.NewManagerFromRegistries([]registryinfra.Registry{&fakeRegistry{records: records}})

	return New(cache, mgr, nil, WithRepositoryFactory(func(baseURL string, tokens repoinfra.TokenSource) (repoinfra.Repository, error) {
		for _, proj := range projects {
			if proj.srv.URL == baseURL {
				return &testRepository{srv: proj.srv}, nil
			}
		}

		return nil, os.ErrNotExist
	}))
}

func TestInstallLeafPackage(t *testing.T) {
	proj := newTestProject(t, `{"name":"case","version":"0.1.0","src":["case.c","case.h"]}`,
		map[string]string{"case.c": "int case_main(){}", "case.h": "#pragma once"})

	r := setupResolver(t, map[string]*testProject{"clibs/case": proj})

	root, err := r.Resolve(dcontext.Background(), "clibs/case@0.1.0")
	require.NoError(t, err)

	depsDir := t.TempDir()
	require.NoError(t, r.Install(dcontext.Background(), root, depsDir, false))

	require.FileExists(t, filepath.Join(depsDir, "case", "case.c"))
	require.FileExists(t, filepath.Join(depsDir, "case", "case.h"))
	require.FileExists(t, filepath.Join(depsDir, "case", "clib.json"))
	require.Equal(t, "0.1.0", root.Version)
}

func TestInstallWithDependency(t *testing.T) {
	leaf := newTestProject(t, `{"name":"path-normalize","version":"1.0.0","src":["index.c"]}`,
		map[string]string{"index.c": "void norm(){}"})
	top := newTestProject(t, `{"name":"mkdirp","version":"1.0.0","src":["mkdirp.c"],"dependencies":{"someorg/path-normalize":"master"}}`,
		map[string]string{"mkdirp.c": "void mkdirp(){}"})

	r := setupResolver(t, map[string]*testProject{
		"clibs/mkdirp":            top,
		"someorg/path-normalize": leaf,
	})

	root, err := r.Resolve(dcontext.Background(), "clibs/mkdirp@master")
	require.NoError(t, err)

	depsDir := t.TempDir()
	require.NoError(t, r.Install(dcontext.Background(), root, depsDir, false))

	require.FileExists(t, filepath.Join(depsDir, "mkdirp", "mkdirp.c"))
	require.FileExists(t, filepath.Join(depsDir, "path-normalize", "index.c"))
}

func TestInstallSkipsDevDependenciesByDefault(t *testing.T) {
	dev := newTestProject(t, `{"name":"describe","version":"1.0.0","src":["d.c"]}`, map[string]string{"d.c": "x"})
	top := newTestProject(t, `{"name":"trim","version":"0.0.2","src":["trim.c"],"development":{"someorg/describe":"master"}}`,
		map[string]string{"trim.c": "x"})

	r := setupResolver(t, map[string]*testProject{
		"clibs/trim":       top,
		"someorg/describe": dev,
	})

	root, err := r.Resolve(dcontext.Background(), "clibs/trim@0.0.2")
	require.NoError(t, err)

	depsDir := t.TempDir()
	require.NoError(t, r.Install(dcontext.Background(), root, depsDir, false))

	require.FileExists(t, filepath.Join(depsDir, "trim", "trim.c"))
	require.NoDirExists(t, filepath.Join(depsDir, "describe"))
}

func TestInstallPullsDevDependenciesWhenRequested(t *testing.T) {
	dev := newTestProject(t, `{"name":"describe","version":"1.0.0","src":["d.c"]}`, map[string]string{"d.c": "x"})
	top := newTestProject(t, `{"name":"trim","version":"0.0.2","src":["trim.c"],"development":{"someorg/describe":"master"}}`,
		map[string]string{"trim.c": "x"})

	r := setupResolver(t, map[string]*testProject{
		"clibs/trim":       top,
		"someorg/describe": dev,
	})

	root, err := r.Resolve(dcontext.Background(), "clibs/trim@0.0.2")
	require.NoError(t, err)

	depsDir := t.TempDir()
	require.NoError(t, r.Install(dcontext.Background(), root, depsDir, true))

	require.FileExists(t, filepath.Join(depsDir, "describe", "d.c"))
}

func TestInstallDiamondDependencyRunsOnce(t *testing.T) {
	var installCount int32

	z := newTestProject(t, `{"name":"z","version":"1","src":["z.c"]}`, map[string]string{"z.c": "x"})
	// wrap z's file handler to count installs indirectly via src fetches
	origHandler := z.srv.Config.Handler
	z.srv.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/1/z.c" {
			atomic.AddInt32(&installCount, 1)
		}

		origHandler.ServeHTTP(w, r)
	})

	x := newTestProject(t, `{"name":"x","version":"1","dependencies":{"a/z":"1"}}`, nil)
	y := newTestProject(t, `{"name":"y","version":"1","dependencies":{"a/z":"1"}}`, nil)
	top := newTestProject(t, `{"name":"root","version":"1","dependencies":{"a/x":"1","a/y":"1"}}`, nil)

	r := setupResolver(t, map[string]*testProject{
		"clibs/root": top,
		"a/x":        x,
		"a/y":        y,
		"a/z":        z,
	})

	root, err := r.Resolve(dcontext.Background(), "clibs/root@1")
	require.NoError(t, err)

	depsDir := t.TempDir()
	require.NoError(t, r.Install(dcontext.Background(), root, depsDir, false))

	require.DirExists(t, filepath.Join(depsDir, "z"))
	require.Equal(t, int32(1), atomic.LoadInt32(&installCount))
}

// TestResolveFetchPackagePopulatesManifestCache confirms fetchPackage
// writes through to the manifest cache on a live fetch, and that a
// subsequent resolve against the same slug is served from that entry
// without hitting the network again.
func TestResolveFetchPackagePopulatesManifestCache(t *testing.T) {
	var manifestRequests int32

	proj := newTestProject(t, `{"name":"case","version":"0.1.0","src":["case.c"]}`,
		map[string]string{"case.c": "int case_main(){}"})

	origHandler := proj.srv.Config.Handler
	proj.srv.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/0.1.0/clib.json" {
			atomic.AddInt32(&manifestRequests, 1)
		}

		origHandler.ServeHTTP(w, r)
	})

	cache := cachepkg.New(t.TempDir())
	r := setupResolverWithCache(t, map[string]*testProject{"clibs/case": proj}, cache)

	pkg, err := r.Resolve(dcontext.Background(), "clibs/case@0.1.0")
	require.NoError(t, err)
	require.Equal(t, "case", pkg.Name)
	require.Equal(t, int32(1), atomic.LoadInt32(&manifestRequests))

	require.True(t, cache.HasManifest("clibs", "case", "0.1.0"))

	pkg2, err := r.Resolve(dcontext.Background(), "clibs/case@0.1.0")
	require.NoError(t, err)
	require.Equal(t, "case", pkg2.Name)
	require.Equal(t, int32(1), atomic.LoadInt32(&manifestRequests), "second resolve should be served from the manifest cache")
}

// TestResolveSkipCacheBypassesManifestCache confirms WithSkipCache forces
// a live refetch even when a fresh cache entry exists.
func TestResolveSkipCacheBypassesManifestCache(t *testing.T) {
	var manifestRequests int32

	proj := newTestProject(t, `{"name":"case","version":"0.1.0","src":["case.c"]}`,
		map[string]string{"case.c": "int case_main(){}"})

	origHandler := proj.srv.Config.Handler
	proj.srv.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/0.1.0/clib.json" {
			atomic.AddInt32(&manifestRequests, 1)
		}

		origHandler.ServeHTTP(w, r)
	})

	cache := cachepkg.New(t.TempDir())
	require.NoError(t, cache.SaveManifest("clibs", "case", "0.1.0",
		"clib.json\n"+`{"name":"case","version":"0.1.0","src":["case.c"]}`))

	mgr := registryinfra.NewManagerFromRegistries([]registryinfra.Registry{&fakeRegistry{
		records: []registryinfra.Record{{ID: "clibs/case", Href: proj.srv.URL}},
	}})

	r := New(cache, mgr, nil, WithSkipCache(true), WithRepositoryFactory(func(baseURL string, tokens repoinfra.TokenSource) (repoinfra.Repository, error) {
		if baseURL == proj.srv.URL {
			return &testRepository{srv: proj.srv}, nil
		}

		return nil, os.ErrNotExist
	}))

	pkg, err := r.Resolve(dcontext.Background(), "clibs/case@0.1.0")
	require.NoError(t, err)
	require.Equal(t, "case", pkg.Name)
	require.Equal(t, int32(1), atomic.LoadInt32(&manifestRequests), "skip-cache resolve should still hit the network")
}
