package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"desktidy/internal/report"
	"desktidy/internal/workflow"
)

func runOrganize(cmd *cobra.Command, ctx *commandContext, root string, dryRun bool) error {
	return ctx.withRunner(cmd, func(runCtx context.Context, runner *workflow.Runner, _ *slog.Logger) error {
		result, err := runner.Run(runCtx, root, dryRun)
		if err != nil {
			return err
		}
		return writeResult(cmd, ctx, result)
	})
}

func writeResult(cmd *cobra.Command, ctx *commandContext, result workflow.Result) error {
	out := cmd.OutOrStdout()
	if ctx.flags.json {
		return writeJSON(cmd, report.NewDocument(result.Analysis, result.Detection, &result.Summary))
	}
	opts := ctx.reportOptions(out)
	report.WriteAnalysis(out, result.Analysis, result.Detection, opts)
	report.WriteSummary(out, result.Summary, opts)
	return nil
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	return report.WriteJSON(cmd.OutOrStdout(), v)
}
