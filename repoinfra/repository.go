// Package repoinfra implements the repository layer: per-host logic that
// turns (package base URL, version, file path) into a concrete download
// URL and authentication scheme, and performs the actual HTTP fetches.
package repoinfra

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Repository answers, for one package's base URL, what concrete URL to
// fetch a given file at a given version from, and what header (if any)
// must accompany the request.
type Repository interface {
	// FileURL returns the concrete URL to download filePath at version.
	FileURL(version, filePath string) string

	// TarballURL returns the concrete URL to download a full source
	// archive of the repository at version, used by the resolver's
	// executable-install subroutine.
	TarballURL(version string) string

	// AuthHeader returns the header name/value to attach to the request,
	// if this backend authenticates via a header rather than embedding
	// credentials in the URL itself.
	AuthHeader() (name, value string, ok bool)
}

// TokenSource resolves a bearer token for a hostname, implemented by the
// secrets store.
type TokenSource interface {
	Find(hostname string) (string, bool)
}

// ErrUnknownHost is returned by New when baseURL's host matches neither
// backend.
var ErrUnknownHost = errors.New("repoinfra: unknown repository host")

// New constructs the Repository backend appropriate for a package's
// base URL (its registry-resolved href), dispatched by host exactly as
// registryinfra.New is: "github.com" gets the wiki-host repository,
// a host containing "gitlab" gets the forge-host repository.
func New(baseURL string, tokens TokenSource) (Repository, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("repoinfra: parsing package url %q: %w", baseURL, err)
	}

	host := strings.ToLower(u.Host)
	projectPath := strings.Trim(u.Path, "/")

	var token string
	if tokens != nil {
		if t, ok := tokens.Find(host); ok {
			token = t
		}
	}

	switch {
	case strings.Contains(host, "github.com"):
		return &WikiHostRepository{host: host, projectPath: projectPath, token: token}, nil
	case strings.Contains(host, "gitlab"):
		return &ForgeHostRepository{host: host, projectPath: projectPath, token: token}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownHost, host)
	}
}
