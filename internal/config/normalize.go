package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeScan()
	c.normalizeCategories()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Dedupe.CachePath) == "" {
		c.Dedupe.CachePath = defaultCachePath
	}
	if c.Dedupe.CachePath, err = expandPath(strings.TrimSpace(c.Dedupe.CachePath)); err != nil {
		return fmt.Errorf("dedupe.cache_path: %w", err)
	}
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Level == "warning" {
		c.Logging.Level = "warn"
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}

func (c *Config) normalizeScan() {
	patterns := make([]string, 0, len(c.Scan.Ignore))
	seen := make(map[string]struct{}, len(c.Scan.Ignore))
	for _, p := range c.Scan.Ignore {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		patterns = append(patterns, p)
	}
	c.Scan.Ignore = patterns
}

func (c *Config) normalizeCategories() {
	for name, exts := range c.Categories.Extra {
		cleaned := make([]string, 0, len(exts))
		for _, ext := range exts {
			ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
			if ext != "" {
				cleaned = append(cleaned, ext)
			}
		}
		c.Categories.Extra[name] = cleaned
	}
}
