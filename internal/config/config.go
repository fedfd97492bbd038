package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"desktidy/internal/category"
	"desktidy/internal/domain"
	"desktidy/internal/failure"
)

//go:embed sample_config.toml
var sampleConfig string

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// Scan controls which directory entries are considered.
type Scan struct {
	Ignore        []string `toml:"ignore"`
	IncludeHidden bool     `toml:"include_hidden"`
}

// Dedupe contains configuration for duplicate detection.
type Dedupe struct {
	Workers      int    `toml:"workers"`
	CacheEnabled bool   `toml:"cache_enabled"`
	CachePath    string `toml:"cache_path"`
}

// Categories extends the built-in extension table.
type Categories struct {
	// Extra maps a category name to additional extensions, for example
	// Images = ["svg"]. An extension listed here moves to that category.
	Extra map[string][]string `toml:"extra"`
}

// Paths contains directories desktidy writes to outside the organized folder.
type Paths struct {
	StateDir string `toml:"state_dir"`
}

// Watch configures the watch subcommand.
type Watch struct {
	DebounceMS int `toml:"debounce_ms"`
}

// Config encapsulates all configuration values for desktidy.
type Config struct {
	Logging    Logging    `toml:"logging"`
	Scan       Scan       `toml:"scan"`
	Dedupe     Dedupe     `toml:"dedupe"`
	Categories Categories `toml:"categories"`
	Paths      Paths      `toml:"paths"`
	Watch      Watch      `toml:"watch"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded. The second and third results report the
// resolved path and whether a file was found there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()
	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, failure.Wrap(failure.ErrConfiguration, "config", "environment", "", err)
	}

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, failure.Wrap(failure.ErrConfiguration, "config", "resolve", "", err)
	}

	if exists {
		if err := decodeFile(resolvedPath, &cfg); err != nil {
			return nil, "", false, failure.Wrap(failure.ErrConfiguration, "config", "parse", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, failure.Wrap(failure.ErrConfiguration, "config", "normalize", "", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, failure.Wrap(failure.ErrConfiguration, "config", "validate", "", err)
	}

	return &cfg, resolvedPath, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("unknown keys: %s", strings.TrimSpace(strict.String()))
		}
		return err
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigFile)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) applyEnv() error {
	if value, ok := os.LookupEnv(envLogLevel); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	if value, ok := os.LookupEnv(envWorkers); ok && strings.TrimSpace(value) != "" {
		workers, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%s: %w", envWorkers, err)
		}
		c.Dedupe.Workers = workers
	}
	return nil
}

// CategoryResolver returns the built-in extension table with the
// [categories] overrides applied.
func (c *Config) CategoryResolver() (*category.Resolver, error) {
	extra, err := c.categoryOverrides()
	if err != nil {
		return nil, err
	}
	return category.Default().With(extra)
}

func (c *Config) categoryOverrides() (map[domain.Category][]string, error) {
	if len(c.Categories.Extra) == 0 {
		return nil, nil
	}
	out := make(map[domain.Category][]string, len(c.Categories.Extra))
	for name, exts := range c.Categories.Extra {
		cat, ok := domain.ParseCategory(name)
		if !ok {
			return nil, fmt.Errorf("categories.extra: unknown category %q", name)
		}
		out[cat] = append(out[cat], exts...)
	}
	return out, nil
}

// WatchDebounce returns the configured quiet period for the watch subcommand.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
// An existing file is never overwritten.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	if _, err := file.WriteString(sampleConfig); err != nil {
		file.Close()
		return fmt.Errorf("write sample config: %w", err)
	}
	return file.Close()
}
