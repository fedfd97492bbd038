package config

import (
	"errors"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateDedupe(); err != nil {
		return err
	}
	if err := c.validateCategories(); err != nil {
		return err
	}
	if err := c.validateWatch(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q (want debug, info, warn or error)", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateScan() error {
	for _, pattern := range c.Scan.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("scan.ignore: invalid glob %q", pattern)
		}
	}
	return nil
}

func (c *Config) validateDedupe() error {
	if c.Dedupe.Workers < 0 {
		return errors.New("dedupe.workers must be zero (one per CPU) or positive")
	}
	if c.Dedupe.CacheEnabled && c.Dedupe.CachePath == "" {
		return errors.New("dedupe.cache_path must be set when dedupe.cache_enabled is true")
	}
	return nil
}

func (c *Config) validateCategories() error {
	extra, err := c.categoryOverrides()
	if err != nil {
		return err
	}
	for cat, exts := range extra {
		if len(exts) == 0 {
			return fmt.Errorf("categories.extra: %s lists no extensions", cat)
		}
	}
	return nil
}

func (c *Config) validateWatch() error {
	if c.Watch.DebounceMS < minimumDebounceMS {
		return fmt.Errorf("watch.debounce_ms must be at least %d", minimumDebounceMS)
	}
	return nil
}
