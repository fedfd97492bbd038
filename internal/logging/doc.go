// Package logging assembles the structured slog loggers used by desktidy.
//
// It owns the console and JSON handlers, level and output plumbing, and a
// small set of attribute helpers so every stage tags its lines with the same
// keys (component, run_id, path, category). Logs are written to stderr by
// default; stdout is reserved for the report.
package logging
