package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	ctx := newCommandContext(flags)
	var analyze bool

	rootCmd := &cobra.Command{
		Use:           "desktidy [flags] FOLDER_PATH",
		Short:         "Sort a folder into category subfolders and set duplicates aside",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runOrganize(cmd, ctx, args[0], analyze)
		},
	}

	rootCmd.Flags().BoolVar(&analyze, "analyze", false, "Show what would be done without moving anything")
	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().CountVarP(&flags.verbose, "verbose", "v", "Log progress (-vv for debug detail)")
	rootCmd.PersistentFlags().IntVar(&flags.workers, "workers", 0, "Parallel hashing workers (default: config or CPU count)")
	rootCmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable coloured output")
	rootCmd.PersistentFlags().BoolVar(&flags.json, "json", false, "Print a JSON document instead of tables")

	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newCategoriesCommand(ctx))

	return rootCmd
}
