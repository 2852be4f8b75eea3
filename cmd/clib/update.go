package main

import (
	"github.com/spf13/cobra"

	"github.com/go-clib/clib/resolver"
)

var updateCmd = &cobra.Command{
	Use:   "update [slug...]",
	Short: "like install, but bypass the cache and overwrite what is already installed",
	RunE: func(cmd *cobra.Command, args []string) error {
		flagForce = true
		return runInstall(cmd, args, resolver.WithSkipCache(true), resolver.WithForce(true))
	},
}
