// Package pkgmodel defines the identifiers and manifest shape that the rest
// of clib resolves, fetches and installs: package ids, version references,
// slugs, and the in-memory Package built from a parsed manifest.
//
// Grammar
//
//	slug       := [ "@" ] [ author "/" ] name [ "@" version ]
//	author     := component
//	name       := component
//	component  := /[A-Za-z0-9][A-Za-z0-9._-]*/
//	version    := /[^\s]+/ | "*"
//
// A leading "@" suppresses the default-author fallback: "@foo" parses to
// name "foo" with an empty author rather than DefaultAuthor/foo. This
// mirrors the historical clib.json convention of allowing scoped-looking
// slugs without actually implementing npm-style scopes.
package pkgmodel

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// DefaultAuthor is the author a bare "<name>" slug resolves to.
const DefaultAuthor = "clibs"

// DefaultVersion is what an absent version, or the literal "*", normalizes to.
const DefaultVersion = "master"

var (
	// ErrEmptyName is returned when a slug's name component is empty.
	ErrEmptyName = errors.New("pkgmodel: package name must not be empty")

	componentPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
)

// PackageId identifies a package by author and name, independent of version.
type PackageId struct {
	Author string
	Name   string
}

// String renders the canonical "<author>/<name>" form.
func (id PackageId) String() string {
	return fmt.Sprintf("%s/%s", id.Author, id.Name)
}

// ParsePackageId parses "<author>/<name>" or a bare "<name>" (author
// defaults to DefaultAuthor). A leading "@" suppresses the default-author
// fallback, matching ParseSlug's handling of the same prefix.
func ParsePackageId(s string) (PackageId, error) {
	suppressDefault := false
	if strings.HasPrefix(s, "@") {
		suppressDefault = true
		s = s[1:]
	}

	author, name, hasAuthor := strings.Cut(s, "/")
	if !hasAuthor {
		name = author
		author = ""
	}

	if name == "" {
		return PackageId{}, ErrEmptyName
	}

	if author == "" && !suppressDefault {
		author = DefaultAuthor
	}

	return PackageId{Author: author, Name: name}, nil
}

// VersionRef is a free-form version token: a tag, branch, or commit.
type VersionRef string

// Normalize maps "" and "*" to DefaultVersion, and passes everything else
// through unchanged.
func (v VersionRef) Normalize() VersionRef {
	if v == "" || v == "*" {
		return DefaultVersion
	}

	return v
}

// Slug is a package identity pinned to a version: "<author>/<name>@<version>".
type Slug struct {
	PackageId
	Version VersionRef
}

// String renders the canonical "<author>/<name>@<version>" form.
func (s Slug) String() string {
	return fmt.Sprintf("%s@%s", s.PackageId.String(), s.Version)
}

// ParseSlug parses a slug of the form "[@][<author>/]<name>[@<version>]".
// Parsing is tolerant: a missing version normalizes to DefaultVersion, a
// missing author normalizes to DefaultAuthor (unless suppressed by a
// leading "@"), and "*" is treated the same as an absent version.
func ParseSlug(s string) (Slug, error) {
	rest, version, hasVersion := cutLastAt(s)

	id, err := ParsePackageId(rest)
	if err != nil {
		return Slug{}, err
	}

	v := VersionRef("")
	if hasVersion {
		v = VersionRef(version)
	}

	return Slug{PackageId: id, Version: v.Normalize()}, nil
}

// cutLastAt splits on the last "@" that isn't the leading scope marker,
// since "@foo/bar@1.0" must split into "@foo/bar" and "1.0", not at the
// leading "@".
func cutLastAt(s string) (rest, version string, ok bool) {
	body := s
	prefix := ""
	if strings.HasPrefix(s, "@") {
		prefix = "@"
		body = s[1:]
	}

	idx := strings.LastIndex(body, "@")
	if idx < 0 {
		return s, "", false
	}

	return prefix + body[:idx], body[idx+1:], true
}

// ValidComponent reports whether s is a syntactically valid author or name
// component (non-empty, alphanumeric-led, dots/dashes/underscores allowed).
func ValidComponent(s string) bool {
	return componentPattern.MatchString(s)
}
