package cachepkg

import (
	"io"
	"os"
	"path/filepath"
)

// HasPackage reports whether a fresh unpacked package tree is cached for
// (author, name, version).
func (c *Cache) HasPackage(author, name, version string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	info, err := os.Stat(c.packagePath(author, name, version))
	if err != nil {
		return false
	}

	return info.IsDir() && !isExpired(info, c.packageTTL)
}

// LoadPackage recursively copies the cached tree for (author, name,
// version) into targetDir. If the cached entry is expired, the stale tree
// is deleted and ErrExpired is returned so the caller falls through to a
// network refetch.
func (c *Cache) LoadPackage(author, name, version, targetDir string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	src := c.packagePath(author, name, version)

	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	if isExpired(info, c.packageTTL) {
		os.RemoveAll(src)
		return ErrExpired
	}

	return copyTree(src, targetDir)
}

// SavePackage recursively copies sourceDir into the cache for (author,
// name, version), evicting any prior entry first.
func (c *Cache) SavePackage(author, name, version, sourceDir string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	dst := c.packagePath(author, name, version)

	if err := os.RemoveAll(dst); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o777); err != nil {
		return err
	}

	return copyTree(sourceDir, dst)
}

// DeletePackage removes the cached tree for (author, name, version), if any.
func (c *Cache) DeletePackage(author, name, version string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return os.RemoveAll(c.packagePath(author, name, version))
}

// copyTree recursively copies src into dst, preserving file names and
// contents. dst is created if missing.
func copyTree(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		target := filepath.Join(dst, rel)

		if info.IsDir() {
			return os.MkdirAll(target, 0o777)
		}

		return copyFile(path, target, info.Mode())
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o777); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)

	return err
}
