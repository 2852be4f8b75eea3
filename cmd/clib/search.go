package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-clib/clib/internal/dcontext"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "list packages across every configured registry, optionally filtered by query",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := dcontext.Background()

		records := tool.manager.Search(ctx, args)
		for _, rec := range records {
			if rec.Category != "" {
				fmt.Printf("%-30s %-12s %s\n", rec.ID, rec.Category, rec.Description)
			} else {
				fmt.Printf("%-30s %s\n", rec.ID, rec.Description)
			}
		}

		return nil
	},
}
