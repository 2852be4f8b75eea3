package repoinfra

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-clib/clib/internal/dcontext"
)

// Handle represents one in-flight source file download, started
// immediately by DownloadFile and joined later, letting the resolver fan
// out every file in a package's src list before waiting on any of them.
//
// Unlike FetchManifest, a single file download makes exactly one
// attempt: a dropped connection on a multi-hundred-file vendor tree is
// cheaper to fail and let the caller retry the whole resolve on than to
// retry transparently source-file by source-file.
type Handle struct {
	path string
	done chan struct{}
	err  error
}

// DownloadFile starts fetching filePath at version from repo into
// destDir, returning immediately with a Handle. The destination
// filename is filePath's base name; callers are expected to have
// created any necessary subdirectories in destDir ahead of time.
func DownloadFile(ctx dcontext.Context, repo Repository, version, filePath, destDir string) *Handle {
	destPath := filepath.Join(destDir, filepath.Base(filePath))

	return startDownload(ctx, repo, repo.FileURL(version, filePath), destPath)
}

// DownloadTarball starts fetching a source archive of repo at version into
// destPath, for the executable-install subroutine's tarball staging step.
func DownloadTarball(ctx dcontext.Context, repo Repository, version, destPath string) *Handle {
	return startDownload(ctx, repo, repo.TarballURL(version), destPath)
}

// Join blocks until the download completes, returning the path it was
// written to.
func (h *Handle) Join() (string, error) {
	<-h.done
	return h.path, h.err
}

func startDownload(ctx dcontext.Context, repo Repository, url, destPath string) *Handle {
	h := &Handle{done: make(chan struct{})}

	go func() {
		defer close(h.done)
		h.path, h.err = downloadOnce(ctx, repo, url, destPath)
	}()

	return h
}

func downloadOnce(ctx dcontext.Context, repo Repository, fileURL, destPath string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", fmt.Errorf("repoinfra: building request for %q: %w", fileURL, err)
	}

	if key, value, ok := repo.AuthHeader(); ok {
		req.Header.Set(key, value)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("repoinfra: downloading %q: %w", fileURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("repoinfra: %q returned %s", fileURL, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", fmt.Errorf("repoinfra: creating directory for %q: %w", destPath, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".clib-download-*")
	if err != nil {
		return "", fmt.Errorf("repoinfra: staging %q: %w", destPath, err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)

		return "", fmt.Errorf("repoinfra: writing %q: %w", destPath, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("repoinfra: closing %q: %w", destPath, err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("repoinfra: finalizing %q: %w", destPath, err)
	}

	dcontext.GetLogger(ctx).Debugf("repoinfra: downloaded %s -> %s", fileURL, destPath)

	return destPath, nil
}
