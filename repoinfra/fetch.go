package repoinfra

import (
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/go-clib/clib/internal/dcontext"
	"github.com/go-clib/clib/pkgmodel"
)

// manifestClient is shared by every FetchManifest call. retryablehttp
// retries transient failures (connection resets, 5xx) up to RetryMax
// times with exponential backoff. Individual source file downloads, by
// contrast, make exactly one attempt each (see download.go).
var manifestClient = func() *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 3
	c.Logger = nil

	return c
}()

// FetchManifest tries each of pkgmodel.ManifestFilenames in order against
// repo at version, returning the body and filename of the first one that
// resolves with HTTP 200. It returns an error only once every candidate
// filename has failed.
func FetchManifest(ctx dcontext.Context, repo Repository, version string) (body []byte, filename string, err error) {
	var lastErr error

	for _, name := range pkgmodel.ManifestFilenames {
		fileURL := repo.FileURL(version, name)

		req, rerr := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
		if rerr != nil {
			lastErr = rerr
			continue
		}

		if key, value, ok := repo.AuthHeader(); ok {
			req.Header.Set(key, value)
		}

		resp, rerr := manifestClient.Do(req)
		if rerr != nil {
			lastErr = rerr
			dcontext.GetLogger(ctx).Debugf("repoinfra: %s: %v", name, rerr)
			continue
		}

		func() {
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				lastErr = fmt.Errorf("repoinfra: %s returned %s", name, resp.Status)
				return
			}

			data, rerr := io.ReadAll(resp.Body)
			if rerr != nil {
				lastErr = rerr
				return
			}

			body, filename = data, name
		}()

		if body != nil {
			return body, filename, nil
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("repoinfra: no manifest filename resolved")
	}

	return nil, "", fmt.Errorf("repoinfra: fetching manifest at version %q: %w", version, lastErr)
}
