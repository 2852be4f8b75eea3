package cachepkg

import (
	"errors"
	"os"
)

// HasSearch reports whether a fresh registry-listing body is cached.
func (c *Cache) HasSearch() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	info, err := os.Stat(c.searchPath())
	if err != nil {
		return false
	}

	return !isExpired(info, c.searchTTL)
}

// ReadSearch returns the cached registry-listing body, or an error if
// absent or expired.
func (c *Cache) ReadSearch() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.searchPath()

	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	if isExpired(info, c.searchTTL) {
		os.Remove(path)
		return "", errors.New("cachepkg: search cache entry expired")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// SaveSearch writes the registry-listing body to the singleton search
// cache entry.
func (c *Cache) SaveSearch(body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return atomicWriteFile(c.searchPath(), []byte(body), 0o644)
}

// DeleteSearch removes the cached search entry, if any.
func (c *Cache) DeleteSearch() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := os.Remove(c.searchPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return err
}
