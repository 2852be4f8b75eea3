package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// initCmd and uninstallCmd are registered but intentionally
// unimplemented. They exist so `clib init`/`clib uninstall` fail with a
// clear message instead of cobra's generic "unknown command".
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "not implemented",
	RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("clib: init is not implemented")
	},
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall [slug...]",
	Short: "not implemented",
	RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("clib: uninstall is not implemented")
	},
}
