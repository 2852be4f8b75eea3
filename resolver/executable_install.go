package resolver

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"github.com/go-clib/clib/internal/dcontext"
	"github.com/go-clib/clib/pkgmodel"
	"github.com/go-clib/clib/repoinfra"
)

// executableInstall handles a package whose manifest declares an
// "install" command (after any src files were fetched): download a tarball of
// pkg's repository at its resolved version into a scratch directory,
// extract it, recurse into the extracted tree's own dependencies (into
// its own nested deps/ directory), copy the package's makefile in if one
// was fetched, then run the declared install command from inside the
// extracted tree.
//
// The scratch directory is named with github.com/google/uuid to avoid
// collisions between concurrent installs of different versions of the
// same package. The archive is decompressed with
// github.com/klauspost/compress/gzip and unpacked with the standard
// archive/tar reader, since tar itself is a stable container format the
// standard library already parses correctly.
func (r *Resolver) executableInstall(ctx dcontext.Context, pkg *pkgmodel.Package, repo repoinfra.Repository, depsDir string) error {
	scratch := filepath.Join(os.TempDir(), "clib-install-"+uuid.NewString())
	if err := ensureDir(scratch); err != nil {
		return fmt.Errorf("creating scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	tarballPath := filepath.Join(scratch, "src.tar.gz")
	if _, err := repoinfra.DownloadTarball(ctx, repo, pkg.Version, tarballPath).Join(); err != nil {
		return fmt.Errorf("downloading tarball: %w", err)
	}

	extractedRoot, err := extractTarGz(tarballPath, scratch)
	if err != nil {
		return fmt.Errorf("extracting tarball: %w", err)
	}

	nestedDeps := filepath.Join(extractedRoot, "deps")
	if err := ensureDir(nestedDeps); err != nil {
		return fmt.Errorf("preparing nested deps dir: %w", err)
	}

	if err := r.installDependencies(ctx, pkg.Dependencies, nestedDeps); err != nil {
		return fmt.Errorf("installing nested dependencies: %w", err)
	}

	if pkg.Makefile != "" {
		src := filepath.Join(pkgDirFor(depsDir, pkg.Name), pkg.Makefile)
		if data, err := os.ReadFile(src); err == nil {
			os.WriteFile(filepath.Join(extractedRoot, filepath.Base(pkg.Makefile)), data, 0o644)
		}
	}

	return runHook(ctx, extractedRoot, pkg.Install, r.hookEnv(pkg, depsDir))
}

// extractTarGz decompresses and unpacks the .tar.gz at tarballPath into
// destDir, returning the path of the archive's top-level directory
// (GitHub/GitLab archives always nest their contents one level deep,
// e.g. "widget-1.0.0/").
func extractTarGz(tarballPath, destDir string) (string, error) {
	f, err := os.Open(tarballPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return "", fmt.Errorf("opening gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	topLevel := ""

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}

		if err != nil {
			return "", err
		}

		cleanName := filepath.Clean(hdr.Name)
		if strings.HasPrefix(cleanName, "..") {
			return "", fmt.Errorf("tarball entry escapes destination: %q", hdr.Name)
		}

		if topLevel == "" {
			topLevel = strings.SplitN(cleanName, string(filepath.Separator), 2)[0]
		}

		target := filepath.Join(destDir, cleanName)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return "", err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return "", err
			}

			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode))
			if err != nil {
				return "", err
			}

			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return "", err
			}

			out.Close()
		}
	}

	if topLevel == "" {
		return "", fmt.Errorf("tarball %q is empty", tarballPath)
	}

	return filepath.Join(destDir, topLevel), nil
}
