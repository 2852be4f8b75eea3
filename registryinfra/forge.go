package registryinfra

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"

	"github.com/go-clib/clib/internal/dcontext"
)

// forgeItemPattern matches a markdown list item of the form
// "- [<name>](<url>) - <description>".
var forgeItemPattern = regexp.MustCompile(`^-\s*\[([^\]]+)\]\(([^)]+)\)\s*-\s*(.*)$`)

// forgeHeadingPattern matches a markdown "## <category>" heading.
var forgeHeadingPattern = regexp.MustCompile(`^##\s+(.+)$`)

// ForgeRegistry lists packages published as a markdown file on a
// self-hosted forge. It performs one authenticated GET and parses lines
// under "## <category>" headings.
//
// The markdown grammar accepted here is a fixed two-line pattern, not
// general markdown: a bufio.Scanner plus two anchored regexps covers
// every listing this backend has needed to parse so far, without
// pulling in a full markdown parser for two line shapes.
type ForgeRegistry struct {
	fileURL string
	client  *http.Client
	token   string
	cache   SearchCache

	mu      sync.Mutex
	records []Record
	fetched bool
}

// NewForgeRegistry constructs a ForgeRegistry for the given markdown file
// URL, resolving a bearer token for the URL's host from tokens if
// present. cache may be nil to disable caching the raw listing body.
func NewForgeRegistry(fileURL string, tokens TokenSource, cache SearchCache) *ForgeRegistry {
	var token string

	if tokens != nil {
		if t, ok := tokens.Find(hostOf(fileURL)); ok {
			token = t
		}
	}

	return &ForgeRegistry{fileURL: fileURL, client: http.DefaultClient, token: token, cache: cache}
}

// Fetch is idempotent after the first successful call. A fresh cached
// listing body is parsed in place of a network round trip; a live fetch
// populates the cache for the next invocation.
func (f *ForgeRegistry) Fetch(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fetched {
		return nil
	}

	if f.cache != nil && f.cache.HasSearch() {
		if cached, err := f.cache.ReadSearch(); err == nil {
			if records, err := parseForgeMarkdown(strings.NewReader(cached)); err == nil {
				f.records = records
				f.fetched = true

				return nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.fileURL, nil)
	if err != nil {
		return err
	}

	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("registryinfra: fetching forge listing %q: %w", f.fileURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("registryinfra: forge listing %q returned %s", f.fileURL, resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("registryinfra: reading forge listing %q: %w", f.fileURL, err)
	}

	records, err := parseForgeMarkdown(strings.NewReader(string(raw)))
	if err != nil {
		return err
	}

	f.records = records
	f.fetched = true

	if f.cache != nil {
		if err := f.cache.SaveSearch(string(raw)); err != nil {
			dcontext.GetLogger(ctx).Warnf("registryinfra: caching forge listing %q: %v", f.fileURL, err)
		}
	}

	return nil
}

// Iterate returns every record parsed by the last successful Fetch.
func (f *ForgeRegistry) Iterate() []Record {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Record, len(f.records))
	copy(out, f.records)

	return out
}

func parseForgeMarkdown(body io.Reader) ([]Record, error) {
	var records []Record

	category := ""
	scanner := bufio.NewScanner(body)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		if m := forgeHeadingPattern.FindStringSubmatch(line); m != nil {
			category = strings.TrimSpace(m[1])
			continue
		}

		m := forgeItemPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		records = append(records, Record{
			ID:          strings.TrimSpace(m[1]),
			Href:        strings.TrimSpace(m[2]),
			Description: strings.TrimSpace(m[3]),
			Category:    category,
		})
	}

	return records, scanner.Err()
}
