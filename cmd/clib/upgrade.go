package main

import (
	"github.com/spf13/cobra"

	"github.com/go-clib/clib/internal/dcontext"
	"github.com/go-clib/clib/resolver"
)

// selfSlug is the fixed package identity `upgrade` reinstalls itself
// from.
const selfSlug = "clibs/clib"

var upgradeCmd = &cobra.Command{
	Use:   "upgrade [tag]",
	Short: "reinstall clib itself at the given tag (default: the master branch)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slug := selfSlug
		if len(args) == 1 {
			slug = selfSlug + "@" + args[0]
		}

		ctx := dcontext.Background()
		r := newResolver(resolver.WithSkipCache(true), resolver.WithForce(true))

		pkg, err := r.Resolve(ctx, slug)
		if err != nil {
			return err
		}

		return r.Install(ctx, pkg, depsDirName, false)
	},
}
