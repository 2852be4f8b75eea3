package toolconfig

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDefaultsWhenEmpty(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	require.Equal(t, "clibs", cfg.DefaultAuthor)
	require.Equal(t, "master", cfg.DefaultBranch)
}

func TestParseOverridesOnlyDeclaredFields(t *testing.T) {
	doc := `
default_author: acme
cache:
  manifest_ttl: 1h
`
	cfg, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, "acme", cfg.DefaultAuthor)
	require.Equal(t, "master", cfg.DefaultBranch)
	require.Equal(t, time.Hour, cfg.Cache.ManifestTTL)
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load("/nonexistent/clibrc.yml")
	require.NoError(t, err)
	require.Equal(t, "clibs", cfg.DefaultAuthor)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("CLIB_DEFAULT_AUTHOR", "envauthor")
	t.Setenv("CLIB_CONCURRENCY", "4")

	cfg, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	require.Equal(t, "envauthor", cfg.DefaultAuthor)
	require.Equal(t, 4, cfg.Concurrency)

	os.Unsetenv("CLIB_DEFAULT_AUTHOR")
	os.Unsetenv("CLIB_CONCURRENCY")
}
