package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/go-clib/clib/internal/dcontext"
	"github.com/go-clib/clib/pkgmodel"
	"github.com/go-clib/clib/registryinfra"
	"github.com/go-clib/clib/resolver"
)

const depsDirName = "deps"

var installCmd = &cobra.Command{
	Use:   "install [slug...]",
	Short: "install one or more packages, or the root manifest's own dependencies",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInstall(cmd, args, resolver.WithSkipCache(false))
	},
}

func newResolver(opts ...resolver.Option) *resolver.Resolver {
	base := []resolver.Option{resolver.WithConcurrency(flagConcurrency), resolver.WithForce(flagForce)}
	return resolver.New(tool.cache, tool.manager, tool.tokens, append(base, opts...)...)
}

// runInstall implements the `install` operation: with no arguments,
// install the root manifest's own dependencies (and its development
// dependencies, when --dev is set); with arguments, resolve and install
// each slug as if it were a fresh root dependency.
func runInstall(cmd *cobra.Command, args []string, opts ...resolver.Option) error {
	ctx := dcontext.Background()

	root, rootErr := loadRootManifest(".")
	if rootErr == nil && len(root.Registries) > 0 {
		tool.manager = registryinfra.NewManager(ctx, append(root.Registries, tool.cfg.Registries...), tool.tokens, tool.cache)
	}

	r := newResolver(opts...)

	if err := os.MkdirAll(depsDirName, 0o755); err != nil {
		return err
	}

	if len(args) == 0 {
		if rootErr != nil {
			return fmt.Errorf("clib: no %v found in current directory: %w", pkgmodel.ManifestFilenames, rootErr)
		}

		if err := r.Install(ctx, root, depsDirName, flagDev); err != nil {
			return err
		}

		printInstalledTree(r)

		return nil
	}

	for _, slug := range args {
		pkg, err := r.Resolve(ctx, slug)
		if err != nil {
			return err
		}

		if err := r.Install(ctx, pkg, depsDirName, false); err != nil {
			return err
		}
	}

	printInstalledTree(r)

	return nil
}

// printInstalledTree lists every package the resolver installed this
// run, ordered newest-version-first where versions parse as semver —
// advisory ordering only, never used for resolution itself. Only shown
// under --verbose, since it's diagnostic output, not the command's
// primary result.
func printInstalledTree(r *resolver.Resolver) {
	if !flagVerbose {
		return
	}

	names := r.Arena().Names()
	sort.Slice(names, func(i, j int) bool {
		pi, _ := r.Arena().Get(names[i])
		pj, _ := r.Arena().Get(names[j])

		return pkgmodel.CompareVersions(pi.Version, pj.Version) > 0
	})

	for _, name := range names {
		pkg, _ := r.Arena().Get(name)
		fmt.Printf("%s@%s\n", pkg.Name, pkg.Version)
	}
}

func init() {
	installCmd.Flags().BoolVar(&flagDev, "dev", false, "also install development dependencies (root manifest only)")
}
