package cachepkg

import (
	"errors"
	"os"
)

// HasManifest reports whether a fresh (non-expired) manifest entry exists
// for (author, name, version). An expired entry is reported absent.
func (c *Cache) HasManifest(author, name, version string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.hasManifestLocked(author, name, version)
}

func (c *Cache) hasManifestLocked(author, name, version string) bool {
	if c.mirror != nil {
		if _, ok := c.mirror.Get(author, name, version); ok {
			return true
		}
	}

	info, err := os.Stat(c.manifestPath(author, name, version))
	if err != nil {
		return false
	}

	return !isExpired(info, c.manifestTTL)
}

// ReadManifest returns the raw manifest JSON text for (author, name,
// version), or an error if absent or expired.
func (c *Cache) ReadManifest(author, name, version string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mirror != nil {
		if raw, ok := c.mirror.Get(author, name, version); ok {
			return raw, nil
		}
	}

	path := c.manifestPath(author, name, version)

	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	if isExpired(info, c.manifestTTL) {
		os.Remove(path)
		return "", errors.New("cachepkg: manifest cache entry expired")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// SaveManifest writes raw manifest JSON text for (author, name, version).
// A disk-full or permission failure is returned to the caller, who treats
// it as a non-fatal warning since the manifest was already fetched
// successfully.
func (c *Cache) SaveManifest(author, name, version, raw string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := atomicWriteFile(c.manifestPath(author, name, version), []byte(raw), 0o644); err != nil {
		return err
	}

	if c.mirror != nil {
		c.mirror.Set(author, name, version, raw, c.manifestTTL)
	}

	return nil
}

// DeleteManifest removes the manifest cache entry for (author, name,
// version), if any.
func (c *Cache) DeleteManifest(author, name, version string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mirror != nil {
		c.mirror.Delete(author, name, version)
	}

	err := os.Remove(c.manifestPath(author, name, version))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return err
}
