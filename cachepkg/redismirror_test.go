package cachepkg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRedisMirrorKeyNamespacing(t *testing.T) {
	m := NewRedisMirror(nil, "clib:")
	require.Equal(t, "clib:manifest::acme_widget_1.0.0", m.key("acme", "widget", "1.0.0"))

	m2 := NewRedisMirror(nil, "")
	require.Equal(t, "manifest::acme_widget_1.0.0", m2.key("acme", "widget", "1.0.0"))
}

func TestCacheWithMirrorSatisfiesManifestMirror(t *testing.T) {
	var _ ManifestMirror = NewRedisMirror(nil, "")

	c := New(t.TempDir(), WithMirror(NewRedisMirror(nil, "")))
	require.NotNil(t, c)
}
