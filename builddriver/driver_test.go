package builddriver

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-clib/clib/internal/dcontext"
	"github.com/go-clib/clib/pkgmodel"
)

func writePackage(t *testing.T, depsDir, name, manifest, makefile string) {
	t.Helper()

	dir := filepath.Join(depsDir, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clib.json"), []byte(manifest), 0o644))

	if makefile != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "Makefile"), []byte(makefile), 0o644))
	}
}

func TestBuildSkipsPackagesWithoutMakefile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX make/sh toolchain")
	}

	depsDir := t.TempDir()
	writePackage(t, depsDir, "headeronly", `{"name":"headeronly"}`, "")

	d := New()
	results, err := d.Build(dcontext.Background(), depsDir, TargetBuild)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.True(t, results[0].Skipped)
}

func TestBuildRunsMakefile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX make/sh toolchain")
	}

	depsDir := t.TempDir()
	writePackage(t, depsDir, "widget", `{"name":"widget","makefile":"Makefile"}`, "all:\n\ttouch built.txt\n")

	d := New()
	results, err := d.Build(dcontext.Background(), depsDir, TargetBuild)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "widget", results[0].Name)
}

func TestBuildEnvIncludesDepsDirInCFlags(t *testing.T) {
	d := New(WithPrefix("/usr/local"))
	env := d.buildEnv(pkgmodel.Manifest{}, "/tmp/deps")

	require.Contains(t, env, "CFLAGS= -I /tmp/deps")
	require.Contains(t, env, "PREFIX=/usr/local")
}

func TestBuildEnvPrefersManifestPrefix(t *testing.T) {
	d := New(WithPrefix("/usr/local"))
	env := d.buildEnv(pkgmodel.Manifest{Prefix: "/opt/widget"}, "/tmp/deps")

	require.Contains(t, env, "PREFIX=/opt/widget")
}
