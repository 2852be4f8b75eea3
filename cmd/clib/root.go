package main

import (
	"github.com/spf13/cobra"

	"github.com/go-clib/clib/internal/dcontext"
)

var (
	flagConcurrency int
	flagForce       bool
	flagPrefix      string
	flagVerbose     bool
	flagDev         bool
)

// RootCmd is clib's top-level command: a package-level var with each
// subcommand registered through its own init().
var RootCmd = &cobra.Command{
	Use:   "clib",
	Short: "clib manages C package dependencies",
	Long: "clib resolves, fetches and installs C source dependencies declared\n" +
		"in a clib.json manifest, and drives their configure/install hooks.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupTool(dcontext.Background(), flagVerbose)
	},
}

func init() {
	RootCmd.PersistentFlags().IntVarP(&flagConcurrency, "concurrency", "c", 0, "maximum number of concurrent downloads/builds (default: the configured concurrency, else host core count)")
	RootCmd.PersistentFlags().BoolVarP(&flagForce, "force", "f", false, "reinstall/rebuild even if already present")
	RootCmd.PersistentFlags().StringVarP(&flagPrefix, "prefix", "p", "", "install prefix passed to configure/install hooks")
	RootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	RootCmd.AddCommand(installCmd)
	RootCmd.AddCommand(updateCmd)
	RootCmd.AddCommand(upgradeCmd)
	RootCmd.AddCommand(buildCmd)
	RootCmd.AddCommand(configureCmd)
	RootCmd.AddCommand(searchCmd)
	RootCmd.AddCommand(initCmd)
	RootCmd.AddCommand(uninstallCmd)
}
