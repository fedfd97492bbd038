package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"desktidy/internal/domain"
	"desktidy/internal/report"
	"desktidy/internal/watch"
	"desktidy/internal/workflow"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch FOLDER_PATH",
		Short: "Organize a folder now and again whenever new files arrive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := args[0]
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withRunner(cmd, func(runCtx context.Context, runner *workflow.Runner, logger *slog.Logger) error {
				watcher, err := watch.New(root, watch.Options{
					Debounce: cfg.WatchDebounce(),
					Logger:   logger,
					Ignore:   runner.Ignores,
				})
				if err != nil {
					return err
				}
				defer watcher.Close()

				out := cmd.OutOrStdout()
				if !ctx.flags.json {
					fmt.Fprintf(out, "Watching %s (Ctrl-C to stop)\n", root)
				}
				return watcher.Run(runCtx, func(passCtx context.Context) error {
					result, err := runner.Run(passCtx, root, false)
					if err != nil {
						return err
					}
					if ctx.flags.json {
						return writeJSON(cmd, report.NewDocument(result.Analysis, result.Detection, &result.Summary))
					}
					if passChanged(result.Summary) {
						report.WriteSummary(out, result.Summary, ctx.reportOptions(out))
					}
					return nil
				})
			})
		},
	}
}

// passChanged reports whether a watch pass touched the folder. Files that are
// skipped on every pass do not count.
func passChanged(summary domain.OrganizationSummary) bool {
	c := summary.Counts()
	return c.Moved+c.Failed > 0 || len(summary.FoldersCreated) > 0
}
