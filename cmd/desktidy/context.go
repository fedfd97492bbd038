package main

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"desktidy/internal/config"
	"desktidy/internal/logging"
	"desktidy/internal/report"
	"desktidy/internal/workflow"
)

type globalFlags struct {
	configPath string
	verbose    int
	workers    int
	noColor    bool
	json       bool
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.configPath))
		if err != nil {
			c.configErr = err
			return
		}
		if c.flags.workers > 0 {
			cfg.Dedupe.Workers = c.flags.workers
		}
		switch {
		case c.flags.verbose >= 2:
			cfg.Logging.Level = "debug"
		case c.flags.verbose == 1:
			cfg.Logging.Level = "info"
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(cmd *cobra.Command) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	opts := logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: cmd.ErrOrStderr(),
	}
	if cfg.Logging.File != "" {
		opts.Writer = nil
		opts.OutputPaths = []string{"stderr", cfg.Logging.File}
	}
	return logging.New(opts)
}

func (c *commandContext) withRunner(cmd *cobra.Command, fn func(context.Context, *workflow.Runner, *slog.Logger) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.logger(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	runner, err := workflow.New(ctx, cfg, workflow.Options{Logger: logger})
	if err != nil {
		return err
	}
	defer runner.Close()
	return fn(ctx, runner, logger)
}

func (c *commandContext) reportOptions(out io.Writer) report.Options {
	return report.Options{Colorize: !c.flags.noColor && report.ShouldColorize(out)}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
