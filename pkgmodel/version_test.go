package pkgmodel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompareVersionsSemver(t *testing.T) {
	require.Equal(t, -1, CompareVersions("1.0.0", "2.0.0"))
	require.Equal(t, 1, CompareVersions("2.1.0", "2.0.9"))
	require.Equal(t, 0, CompareVersions("1.0.0", "v1.0.0"))
}

func TestCompareVersionsFallsBackToLexical(t *testing.T) {
	require.Equal(t, -1, CompareVersions("master", "next"))
	require.Equal(t, 1, CompareVersions("next", "master"))
}
