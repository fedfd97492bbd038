// Package config loads, normalizes, and validates desktidy configuration data.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the DESKTIDY_LOG_LEVEL and DESKTIDY_WORKERS
// environment fallbacks. Values from a config file take precedence over the
// environment, which takes precedence over the built-in defaults.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
