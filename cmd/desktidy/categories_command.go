package main

import (
	"github.com/spf13/cobra"

	"desktidy/internal/domain"
	"desktidy/internal/report"
)

func newCategoriesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Show which extensions go to which folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			resolver, err := cfg.CategoryResolver()
			if err != nil {
				return err
			}
			if ctx.flags.json {
				table := make(map[string][]string)
				for _, c := range domain.Categories() {
					table[string(c)] = resolver.Extensions(c)
				}
				return writeJSON(cmd, table)
			}
			out := cmd.OutOrStdout()
			report.WriteCategories(out, resolver, ctx.reportOptions(out))
			return nil
		},
	}
}
