package pkgmodel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseManifestFullDocument(t *testing.T) {
	raw := []byte(`{
		"name": "widget",
		"version": "1.0.0",
		"repo": "acme/widget",
		"src": ["widget.c", "widget.h"],
		"dependencies": {"acme/gizmo": "*"},
		"flags": "-Wall",
		"cflags": ["-I.", "-O2"]
	}`)

	m, err := ParseManifest(raw)
	require.NoError(t, err)
	require.Equal(t, "widget", m.Name)
	require.Equal(t, []string{"widget.c", "widget.h"}, m.Src)
	require.Equal(t, StringOrList{"-Wall"}, m.Flags)
	require.Equal(t, StringOrList{"-I.", "-O2"}, m.CFlags)
	require.False(t, m.IsMeta())
}

func TestManifestIsMetaWithNoSrc(t *testing.T) {
	m, err := ParseManifest([]byte(`{"name": "headeronly"}`))
	require.NoError(t, err)
	require.True(t, m.IsMeta())
}

func TestManifestResolvedRepoFallsBackToName(t *testing.T) {
	m, err := ParseManifest([]byte(`{"name": "widget"}`))
	require.NoError(t, err)
	require.Equal(t, "clibs/widget", m.ResolvedRepo("clibs"))
}

func TestManifestResolvedRepoPrefersDeclared(t *testing.T) {
	m, err := ParseManifest([]byte(`{"name": "widget", "repo": "acme/widget"}`))
	require.NoError(t, err)
	require.Equal(t, "acme/widget", m.ResolvedRepo("clibs"))
}

func TestParseManifestMalformed(t *testing.T) {
	_, err := ParseManifest([]byte(`not json`))
	require.Error(t, err)
}

func TestStringOrListAcceptsEmptyString(t *testing.T) {
	var s StringOrList
	require.NoError(t, s.UnmarshalJSON([]byte(`""`)))
	require.Nil(t, s)
}

func TestStringOrListAcceptsList(t *testing.T) {
	var s StringOrList
	require.NoError(t, s.UnmarshalJSON([]byte(`["-a", "-b"]`)))
	require.Equal(t, StringOrList{"-a", "-b"}, s)
}
