// Package toolconfig loads the ambient configuration clib's CLI reads at
// startup: concurrency budget, cache TTL overrides, default
// author/branch, and registry precedence. Configuration is a yaml.v2-tagged
// struct with an env-var override scheme and a Default() that provides
// sane zero-config values.
package toolconfig

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Config is clib's top-level tool configuration, typically loaded from
// ~/.clibrc.yml and optionally overridden by CLIB_-prefixed environment
// variables.
type Config struct {
	// Concurrency bounds the number of in-flight downloads/builds. Zero
	// means "default to host core count".
	Concurrency int `yaml:"concurrency,omitempty"`

	// DefaultAuthor is the author given to the root manifest that a bare
	// `install` loads (historically "clibs"). Slug and dependency-id
	// parsing do not read it: a bare package name always gets
	// pkgmodel.DefaultAuthor.
	DefaultAuthor string `yaml:"default_author,omitempty"`

	// DefaultBranch is loaded and overridable like the other fields
	// (historically "master"), but nothing reads it: an absent or "*"
	// version ref always normalizes to pkgmodel.DefaultVersion.
	DefaultBranch string `yaml:"default_branch,omitempty"`

	// Registries is placed ahead of the built-in default registry, and
	// behind any registries the root manifest declares, highest
	// precedence first.
	Registries []string `yaml:"registries,omitempty"`

	// Cache holds TTL overrides for the filesystem/redis cache.
	Cache CacheConfig `yaml:"cache,omitempty"`

	// Log configures the structured logger every package logs through.
	Log LogConfig `yaml:"log,omitempty"`
}

// CacheConfig overrides the cache layer's expiration policy.
type CacheConfig struct {
	ManifestTTL time.Duration `yaml:"manifest_ttl,omitempty"`
	PackageTTL  time.Duration `yaml:"package_ttl,omitempty"`
	SearchTTL   time.Duration `yaml:"search_ttl,omitempty"`

	// RedisAddr, when set, enables the optional redis mirror in front of
	// the filesystem cache.
	RedisAddr string `yaml:"redis_addr,omitempty"`
}

// LogConfig configures the logrus logger wired up at startup.
type LogConfig struct {
	Level     string `yaml:"level,omitempty"`
	Formatter string `yaml:"formatter,omitempty"`
}

// Default returns the zero-config configuration: no private registries,
// the historical default author and branch, and host-core-count
// concurrency (represented here as 0, resolved by callers via
// runtime.NumCPU).
func Default() Config {
	return Config{
		DefaultAuthor: "clibs",
		DefaultBranch: "master",
		Log:           LogConfig{Level: "info", Formatter: "text"},
	}
}

// Parse decodes a YAML configuration document, starting from Default()
// so that a document overriding only one field leaves the rest at their
// defaults.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()

	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("toolconfig: reading config: %w", err)
	}

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("toolconfig: parsing config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	return cfg, nil
}

// Load reads and parses the configuration file at path. A missing file
// is not an error; it yields Default() with environment overrides
// applied, since clib is expected to run with zero configuration out of
// the box.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			applyEnvOverrides(&cfg)

			return cfg, nil
		}

		return Config{}, fmt.Errorf("toolconfig: opening %q: %w", path, err)
	}
	defer f.Close()

	return Parse(f)
}

// applyEnvOverrides lets a handful of fields be overridden without a
// config file: CLIB_CONCURRENCY, CLIB_DEFAULT_AUTHOR, CLIB_DEFAULT_BRANCH,
// CLIB_LOG_LEVEL.
func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("CLIB_CONCURRENCY"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.Concurrency = n
		}
	}

	if v, ok := os.LookupEnv("CLIB_DEFAULT_AUTHOR"); ok {
		cfg.DefaultAuthor = v
	}

	if v, ok := os.LookupEnv("CLIB_DEFAULT_BRANCH"); ok {
		cfg.DefaultBranch = v
	}

	if v, ok := os.LookupEnv("CLIB_LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
}
