package pkgmodel

import (
	"encoding/json"
	"fmt"
)

// ManifestFilenames lists the filenames accepted for a package manifest, in
// the order they are tried. The first one a fetch succeeds on is used, and
// its name is retained on the resulting Package (see Package.ManifestFile).
var ManifestFilenames = []string{"clib.json", "package.json"}

// StringOrList decodes either a bare JSON string or a list of strings into a
// []string, matching manifests that declare "flags" as either shape.
type StringOrList []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *StringOrList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*s = nil
		} else {
			*s = StringOrList{single}
		}

		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("pkgmodel: flags field must be a string or list of strings: %w", err)
	}

	*s = StringOrList(list)

	return nil
}

// Manifest is the JSON document describing a package: its identity, the
// files that make up its distributable source, and its dependency and
// build-hook declarations.
type Manifest struct {
	Name        string            `json:"name"`
	Version     string            `json:"version,omitempty"`
	Repo        string            `json:"repo,omitempty"`
	License     string            `json:"license,omitempty"`
	Description string            `json:"description,omitempty"`
	Src         []string          `json:"src,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
	Development  map[string]string `json:"development,omitempty"`
	Install     string            `json:"install,omitempty"`
	Configure   string            `json:"configure,omitempty"`
	Makefile    string            `json:"makefile,omitempty"`
	Prefix      string            `json:"prefix,omitempty"`
	Flags       StringOrList      `json:"flags,omitempty"`
	CFlags      StringOrList      `json:"cflags,omitempty"`
	Registries  []string          `json:"registries,omitempty"`
}

// ParseManifest decodes raw manifest JSON. A missing "name" or "version" is
// not fatal here (spec: "warning at load time; package may still be
// usable") — the resolver is responsible for deciding whether an absent
// version can be filled in from the requested slug.
func ParseManifest(raw []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return Manifest{}, fmt.Errorf("pkgmodel: malformed manifest json: %w", err)
	}

	return m, nil
}

// IsMeta reports whether the manifest declares no source files, i.e. is a
// header-only or meta package with nothing to download beyond the manifest
// itself (and, optionally, a makefile).
func (m Manifest) IsMeta() bool {
	return len(m.Src) == 0
}

// ResolvedRepo returns the manifest's declared repo slug, inferring
// "<author>/<name>" from the manifest's own name when repo is absent.
func (m Manifest) ResolvedRepo(defaultAuthor string) string {
	if m.Repo != "" {
		return m.Repo
	}

	return fmt.Sprintf("%s/%s", defaultAuthor, m.Name)
}
