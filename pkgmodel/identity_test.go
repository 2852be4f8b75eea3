package pkgmodel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePackageIdDefaults(t *testing.T) {
	id, err := ParsePackageId("widget")
	require.NoError(t, err)
	require.Equal(t, PackageId{Author: DefaultAuthor, Name: "widget"}, id)
}

func TestParsePackageIdExplicitAuthor(t *testing.T) {
	id, err := ParsePackageId("acme/widget")
	require.NoError(t, err)
	require.Equal(t, PackageId{Author: "acme", Name: "widget"}, id)
}

func TestParsePackageIdSuppressedDefault(t *testing.T) {
	id, err := ParsePackageId("@widget")
	require.NoError(t, err)
	require.Equal(t, PackageId{Author: "", Name: "widget"}, id)
}

func TestParsePackageIdEmptyName(t *testing.T) {
	_, err := ParsePackageId("")
	require.ErrorIs(t, err, ErrEmptyName)
}

func TestParseSlugDefaultsVersion(t *testing.T) {
	slug, err := ParseSlug("widget")
	require.NoError(t, err)
	require.Equal(t, VersionRef(DefaultVersion), slug.Version)
}

func TestParseSlugExplicitVersion(t *testing.T) {
	slug, err := ParseSlug("acme/widget@1.2.3")
	require.NoError(t, err)
	require.Equal(t, "acme", slug.Author)
	require.Equal(t, "widget", slug.Name)
	require.Equal(t, VersionRef("1.2.3"), slug.Version)
}

func TestParseSlugWildcardVersionNormalizes(t *testing.T) {
	slug, err := ParseSlug("widget@*")
	require.NoError(t, err)
	require.Equal(t, VersionRef(DefaultVersion), slug.Version)
}

func TestParseSlugScopedWithVersion(t *testing.T) {
	slug, err := ParseSlug("@widget@2.0")
	require.NoError(t, err)
	require.Equal(t, "", slug.Author)
	require.Equal(t, "widget", slug.Name)
	require.Equal(t, VersionRef("2.0"), slug.Version)
}

func TestSlugString(t *testing.T) {
	slug := Slug{PackageId: PackageId{Author: "acme", Name: "widget"}, Version: "1.0.0"}
	require.Equal(t, "acme/widget@1.0.0", slug.String())
}

func TestValidComponent(t *testing.T) {
	require.True(t, ValidComponent("widget-2"))
	require.False(t, ValidComponent(""))
	require.False(t, ValidComponent("-widget"))
}
