package main

import (
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/go-clib/clib/cachepkg"
	"github.com/go-clib/clib/internal/dcontext"
	"github.com/go-clib/clib/pkgmodel"
	"github.com/go-clib/clib/registryinfra"
	"github.com/go-clib/clib/secrets"
	"github.com/go-clib/clib/toolconfig"
)

// toolContext bundles everything a command needs to construct a
// resolver or build driver, built once in RootCmd's PersistentPreRunE
// and threaded through every subcommand via a package-level var, so
// each subcommand's RunE can stay a short, self-contained function.
type toolContext struct {
	cfg     toolconfig.Config
	tokens  *secrets.Store
	cache   *cachepkg.Cache
	manager *registryinfra.Manager
}

var tool toolContext

func configPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".clibrc.yml")
	}

	return ".clibrc.yml"
}

func secretsPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".clib-secrets.json")
	}

	return ".clib-secrets.json"
}

// setupTool loads configuration and secrets, wires up the default
// logger, and constructs the cache and registry manager shared by every
// subcommand.
func setupTool(ctx dcontext.Context, verbose bool) error {
	cfg, err := toolconfig.Load(configPath())
	if err != nil {
		return err
	}

	if verbose {
		cfg.Log.Level = "debug"
	}

	if flagConcurrency == 0 {
		flagConcurrency = cfg.Concurrency
	}

	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	}

	if cfg.Log.Formatter == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{})
	}

	dcontext.SetDefaultLogger(logger)

	tokens, err := secrets.Load(secretsPath())
	if err != nil {
		return err
	}

	base, err := cachepkg.DefaultBase()
	if err != nil {
		return err
	}

	cacheOpts := []cachepkg.Option{cachepkg.WithTTLs(
		firstNonZero(cfg.Cache.ManifestTTL, cachepkg.ManifestTTL),
		firstNonZero(cfg.Cache.PackageTTL, cachepkg.PackageTTL),
		firstNonZero(cfg.Cache.SearchTTL, cachepkg.SearchTTL),
	)}

	if cfg.Cache.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		cacheOpts = append(cacheOpts, cachepkg.WithMirror(cachepkg.NewRedisMirror(client, "clib:")))
	}

	cache := cachepkg.New(base, cacheOpts...)

	manager := registryinfra.NewManager(ctx, cfg.Registries, tokens, cache)

	tool = toolContext{cfg: cfg, tokens: tokens, cache: cache, manager: manager}

	return nil
}

func firstNonZero[T comparable](v, fallback T) T {
	var zero T
	if v == zero {
		return fallback
	}

	return v
}

// loadRootManifest reads the manifest in dir so a bare "install" with no
// arguments can install the root project's own dependencies, preferring
// clib.json over package.json.
func loadRootManifest(dir string) (*pkgmodel.Package, error) {
	for _, name := range pkgmodel.ManifestFilenames {
		path := filepath.Join(dir, name)

		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		slug := pkgmodel.Slug{
			PackageId: pkgmodel.PackageId{Author: tool.cfg.DefaultAuthor},
			Version:   pkgmodel.VersionRef("").Normalize(),
		}

		pkg, err := pkgmodel.NewPackage(raw, name, "", slug)
		if err != nil {
			return nil, err
		}

		return pkg, nil
	}

	return nil, os.ErrNotExist
}
