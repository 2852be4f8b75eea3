package registryinfra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/go-clib/clib/internal/dcontext"
)

// WikiRegistry lists packages published on a public code-hosting wiki
// page. It performs one unauthenticated GET, locates the wiki body, and
// walks its headings and unordered lists in document order: each
// heading starts a new category, each list item of form
// "<repo-slug> - <description>" becomes a Record.
type WikiRegistry struct {
	pageURL string
	client  *http.Client
	cache   SearchCache

	mu      sync.Mutex
	records []Record
	fetched bool
}

// NewWikiRegistry constructs a WikiRegistry for the given wiki page URL.
// cache may be nil to disable caching the raw listing body.
func NewWikiRegistry(pageURL string, cache SearchCache) *WikiRegistry {
	return &WikiRegistry{pageURL: pageURL, client: http.DefaultClient, cache: cache}
}

// Fetch is idempotent after the first successful call. A fresh cached
// listing body is parsed in place of a network round trip; a live fetch
// populates the cache for the next invocation.
func (w *WikiRegistry) Fetch(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fetched {
		return nil
	}

	host := hostOf(w.pageURL)

	if w.cache != nil && w.cache.HasSearch() {
		if cached, err := w.cache.ReadSearch(); err == nil {
			doc, err := htmlquery.Parse(strings.NewReader(cached))
			if err == nil {
				if records, err := parseWikiBody(doc, host); err == nil {
					w.records = records
					w.fetched = true

					return nil
				}
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.pageURL, nil)
	if err != nil {
		return err
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("registryinfra: fetching wiki listing %q: %w", w.pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("registryinfra: wiki listing %q returned %s", w.pageURL, resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("registryinfra: reading wiki listing %q: %w", w.pageURL, err)
	}

	doc, err := htmlquery.Parse(strings.NewReader(string(raw)))
	if err != nil {
		return fmt.Errorf("registryinfra: parsing wiki listing %q: %w", w.pageURL, err)
	}

	records, err := parseWikiBody(doc, host)
	if err != nil {
		return err
	}

	w.records = records
	w.fetched = true

	if w.cache != nil {
		if err := w.cache.SaveSearch(string(raw)); err != nil {
			dcontext.GetLogger(ctx).Warnf("registryinfra: caching wiki listing %q: %v", w.pageURL, err)
		}
	}

	return nil
}

// Iterate returns every record parsed by the last successful Fetch.
func (w *WikiRegistry) Iterate() []Record {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]Record, len(w.records))
	copy(out, w.records)

	return out
}

var wikiBodyXPaths = []string{
	`//*[@id='wiki-body']`,
	`//*[contains(concat(' ', normalize-space(@class), ' '), ' markdown-body ')]`,
}

func parseWikiBody(doc *html.Node, host string) ([]Record, error) {
	var body *html.Node

	for _, xp := range wikiBodyXPaths {
		if n := htmlquery.FindOne(doc, xp); n != nil {
			body = n
			break
		}
	}

	if body == nil {
		return nil, fmt.Errorf("registryinfra: wiki listing: no wiki body found")
	}

	var (
		records []Record
		category string
	)

	for child := body.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode {
			continue
		}

		switch strings.ToLower(child.Data) {
		case "h1", "h2", "h3", "h4":
			category = strings.TrimSpace(htmlquery.InnerText(child))
		case "ul":
			for _, li := range htmlquery.Find(child, "./li") {
				text := strings.TrimSpace(htmlquery.InnerText(li))

				slug, description, ok := strings.Cut(text, " - ")
				if !ok {
					continue
				}

				slug = strings.TrimSpace(slug)
				records = append(records, Record{
					ID:          slug,
					Href:        fmt.Sprintf("https://%s/%s", host, slug),
					Description: strings.TrimSpace(description),
					Category:    category,
				})
			}
		}
	}

	return records, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	return u.Host
}
