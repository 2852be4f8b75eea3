// Package builddriver walks an installed deps tree and drives make-style
// configure/build/clean/test commands over each package that declares a
// makefile. It is independent of the resolver: it only reads what the
// resolver already wrote to disk.
//
// Process lifecycle runs through procexec, which isolates each shelled
// command in its own process group via golang.org/x/sys so a timeout or
// cancellation can kill the whole subtree, not just the direct child.
// Concurrency bookkeeping reuses the same golang.org/x/sync/errgroup
// pattern as the resolver.
package builddriver

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/go-clib/clib/internal/dcontext"
	"github.com/go-clib/clib/pkgmodel"
	"github.com/go-clib/clib/procexec"
)

// Target selects which make target the driver's dry-run probe and real
// invocation request.
type Target string

const (
	TargetBuild     Target = ""
	TargetClean     Target = "clean"
	TargetTest      Target = "test"
	TargetConfigure Target = "configure"
)

// Driver drives make-style build commands over an installed deps tree.
type Driver struct {
	concurrency int
	force       bool
	prefix      string
}

// Option configures a Driver at construction time.
type Option func(*Driver)

// WithConcurrency bounds how many independent packages build at once.
func WithConcurrency(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// WithForce adds -B to every make invocation, forcing a rebuild even
// when make's own mtime bookkeeping would skip it.
func WithForce(force bool) Option {
	return func(d *Driver) { d.force = force }
}

// WithPrefix sets the CLI-supplied install prefix, used when a
// package's own manifest does not declare one.
func WithPrefix(prefix string) Option {
	return func(d *Driver) { d.prefix = prefix }
}

// New constructs a Driver.
func New(opts ...Option) *Driver {
	d := &Driver{concurrency: runtime.NumCPU()}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Result records one package's build outcome, for CLI-level reporting.
type Result struct {
	Name    string
	Skipped bool
	Err     error
}

// Build walks every immediate package directory under depsDir, dry-run
// probing and then building each package whose manifest declares a
// makefile, bounded at d's concurrency budget. Independent packages
// build concurrently; within one package, clean (if requested) always
// precedes the dry-run probe and real invocation.
func (d *Driver) Build(ctx dcontext.Context, depsDir string, target Target) ([]Result, error) {
	entries, err := os.ReadDir(depsDir)
	if err != nil {
		return nil, fmt.Errorf("builddriver: reading %q: %w", depsDir, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	results := make([]Result, len(entries))

	for i, entry := range entries {
		i, entry := i, entry

		if !entry.IsDir() {
			continue
		}

		g.Go(func() error {
			results[i] = d.buildOne(gctx, filepath.Join(depsDir, entry.Name()), entry.Name(), depsDir, target)
			return nil
		})
	}

	// Errors are carried per-result, not through the errgroup: one
	// package's build failure must not cancel its unrelated siblings.
	_ = g.Wait()

	out := results[:0]
	for _, r := range results {
		if r.Name != "" {
			out = append(out, r)
		}
	}

	return out, nil
}

func (d *Driver) buildOne(ctx dcontext.Context, pkgDir, name, depsDir string, target Target) Result {
	log := dcontext.GetLogger(ctx)

	manifest, manifestPath := readManifest(pkgDir)
	if manifestPath == "" {
		return Result{Name: name, Skipped: true}
	}

	if manifest.Makefile == "" {
		log.Debugf("builddriver: %s declares no makefile, skipping", name)
		return Result{Name: name, Skipped: true}
	}

	env := d.buildEnv(manifest, depsDir)

	probeTarget := string(target)

	if target == TargetClean {
		if err := d.make(ctx, pkgDir, manifest.Makefile, "clean", env); err != nil {
			log.Warnf("builddriver: %s clean failed: %v", name, err)
		}

		probeTarget = string(TargetBuild)
	}

	ok, err := d.dryRunProbe(ctx, pkgDir, manifest.Makefile, probeTarget, env)
	if err != nil {
		return Result{Name: name, Err: fmt.Errorf("dry-run probe: %w", err)}
	}

	if !ok {
		log.Debugf("builddriver: %s dry-run probe declined, skipping", name)
		return Result{Name: name, Skipped: true}
	}

	if err := d.make(ctx, pkgDir, manifest.Makefile, probeTarget, env); err != nil {
		return Result{Name: name, Err: err}
	}

	return Result{Name: name}
}

// buildEnv assembles CFLAGS/PREFIX for a make invocation: CFLAGS always
// gets "-I <deps-dir>" appended; PREFIX comes from the package's own
// manifest, falling back to the driver's CLI flag.
func (d *Driver) buildEnv(manifest pkgmodel.Manifest, depsDir string) []string {
	cflags := fmt.Sprintf("%s -I %s", os.Getenv("CFLAGS"), depsDir)

	prefix := manifest.Prefix
	if prefix == "" {
		prefix = d.prefix
	}

	env := []string{"CFLAGS=" + cflags}
	if prefix != "" {
		env = append(env, "PREFIX="+prefix, "CLIB_PREFIX="+prefix)
	}

	if d.force {
		env = append(env, "CLIB_FORCE=1")
	}

	return env
}

func readManifest(pkgDir string) (pkgmodel.Manifest, string) {
	for _, name := range pkgmodel.ManifestFilenames {
		path := filepath.Join(pkgDir, name)

		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		m, err := pkgmodel.ParseManifest(data)
		if err != nil {
			continue
		}

		return m, path
	}

	return pkgmodel.Manifest{}, ""
}

func (d *Driver) makeArgs(pkgDir, makefile, target string) []string {
	args := []string{"-C", pkgDir, "-f", makefile}
	if d.force {
		args = append(args, "-B")
	}

	if target != "" {
		args = append(args, target)
	}

	return args
}

func (d *Driver) dryRunProbe(ctx dcontext.Context, pkgDir, makefile, target string, env []string) (bool, error) {
	args := append([]string{"-n"}, d.makeArgs(pkgDir, makefile, target)...)

	err := procexec.MakeCommand(ctx, pkgDir, args, env)
	if err != nil {
		// A dry-run failure means make declined the target (e.g. nothing
		// to do, or the target doesn't exist) — not a fatal error, just a
		// skip.
		return false, nil
	}

	return true, nil
}

func (d *Driver) make(ctx dcontext.Context, pkgDir, makefile, target string, env []string) error {
	return procexec.MakeCommand(ctx, pkgDir, d.makeArgs(pkgDir, makefile, target), env)
}
