// Package registryinfra implements the registry layer: pluggable backends
// that map a package id ("author/name") to the base URL its files live
// under, plus the ordered manager that composes several of them with a
// precedence policy.
package registryinfra

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Record is a single entry in a registry's package listing.
type Record struct {
	ID          string
	Href        string
	Description string
	Category    string
}

// Registry exposes the two operations every backend must provide: Fetch
// brings the full listing into memory (idempotent after success), and
// Iterate walks the records already fetched.
type Registry interface {
	Fetch(ctx context.Context) error
	Iterate() []Record
}

// ErrUnknownHost is returned by New when a registry base URL's host does
// not match any known backend.
var ErrUnknownHost = errors.New("registryinfra: unknown registry host")

// TokenSource resolves a bearer token for a hostname, implemented by the
// secrets store. A nil TokenSource, or one that never finds a token,
// degrades every backend to unauthenticated requests.
type TokenSource interface {
	Find(hostname string) (string, bool)
}

// SearchCache is the narrow slice of cachepkg.Cache that a registry
// backend needs to avoid refetching its listing on every command
// invocation. Declared locally so registryinfra doesn't need to import
// cachepkg's concrete type; *cachepkg.Cache satisfies this interface
// without any glue code. A nil SearchCache disables caching.
type SearchCache interface {
	HasSearch() bool
	ReadSearch() (string, error)
	SaveSearch(body string) error
}

// New constructs the Registry backend appropriate for baseURL's host: a
// host containing "github.com" gets the wiki backend, a host containing
// "gitlab" gets the forge backend, anything else fails construction.
func New(baseURL string, tokens TokenSource, cache SearchCache) (Registry, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("registryinfra: parsing registry url %q: %w", baseURL, err)
	}

	host := strings.ToLower(u.Host)

	switch {
	case strings.Contains(host, "github.com"):
		return NewWikiRegistry(baseURL, cache), nil
	case strings.Contains(host, "gitlab"):
		return NewForgeRegistry(baseURL, tokens, cache), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownHost, host)
	}
}
