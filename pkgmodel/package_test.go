package pkgmodel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPackageAppliesSlug(t *testing.T) {
	raw := []byte(`{"name": "widget", "version": "0.0.1"}`)
	slug := Slug{PackageId: PackageId{Author: "acme", Name: "widget"}, Version: "1.2.3"}

	pkg, err := NewPackage(raw, "clib.json", "https://example.com/acme/widget", slug)
	require.NoError(t, err)
	require.Equal(t, "widget", pkg.Name)
	require.Equal(t, "1.2.3", pkg.Version)
	require.Equal(t, "acme/widget", pkg.Repo)
	require.Equal(t, "acme", pkg.Author())
}

func TestPackageAuthorFallsBackToDefault(t *testing.T) {
	pkg := &Package{Manifest: Manifest{Name: "widget"}}
	require.Equal(t, DefaultAuthor, pkg.Author())
}

func TestArenaStoreFirstWriterWins(t *testing.T) {
	a := NewArena()

	first := &Package{Manifest: Manifest{Name: "widget", Version: "1.0.0"}}
	second := &Package{Manifest: Manifest{Name: "widget", Version: "2.0.0"}}

	require.Same(t, first, a.Store(first))
	require.Same(t, first, a.Store(second))

	got, ok := a.Get("widget")
	require.True(t, ok)
	require.Same(t, first, got)
}

func TestArenaNames(t *testing.T) {
	a := NewArena()
	a.Store(&Package{Manifest: Manifest{Name: "widget"}})
	a.Store(&Package{Manifest: Manifest{Name: "gizmo"}})

	require.ElementsMatch(t, []string{"widget", "gizmo"}, a.Names())
}
