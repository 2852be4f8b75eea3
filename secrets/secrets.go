// Package secrets implements the read-only hostname→token store consulted
// by the registry and repository layers before making an authenticated
// request.
package secrets

import (
	"encoding/json"
	"fmt"
	"os"
)

// Store is a read-only mapping from hostname to opaque bearer token,
// loaded once from a JSON object at a well-known path. Its zero value is
// an empty store, so a missing secrets file degrades to "no tokens
// known" rather than an error.
type Store struct {
	tokens map[string]string
}

// Load reads the secrets file at path, a flat JSON object of
// hostname -> token strings. A missing file is not an error and yields
// an empty Store, since most installs have no private registries.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Store{tokens: map[string]string{}}, nil
		}

		return nil, fmt.Errorf("secrets: reading %q: %w", path, err)
	}

	var tokens map[string]string
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("secrets: parsing %q: %w", path, err)
	}

	return &Store{tokens: tokens}, nil
}

// Find returns the token registered for hostname, if any. It never logs
// its argument or its result — callers must not either (see
// internal/dcontext's logging field discipline).
func (s *Store) Find(hostname string) (string, bool) {
	if s == nil {
		return "", false
	}

	token, ok := s.tokens[hostname]

	return token, ok
}
