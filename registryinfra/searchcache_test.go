package registryinfra

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-clib/clib/cachepkg"
)

func TestCacheSatisfiesSearchCache(t *testing.T) {
	var _ SearchCache = cachepkg.New(t.TempDir())

	c := cachepkg.New(t.TempDir())
	require.False(t, c.HasSearch())
}
