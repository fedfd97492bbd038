package testsupport

import (
	"path/filepath"
	"testing"

	"desktidy/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Nothing it points at lives inside a folder the test organizes.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Dedupe.CachePath = filepath.Join(base, "cache", "digests.db")
	cfgVal.Dedupe.Workers = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithDigestCache enables the SQLite digest cache.
func WithDigestCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Dedupe.CacheEnabled = true
	}
}

// WithWorkers sets the hashing worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Dedupe.Workers = n
	}
}

// WithStateDir points the lock directory at dir.
func WithStateDir(dir string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.StateDir = dir
	}
}

// WithIgnore replaces the ignore globs.
func WithIgnore(patterns ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scan.Ignore = patterns
	}
}

// WithExtraExtensions maps additional extensions onto category.
func WithExtraExtensions(category string, exts ...string) ConfigOption {
	return func(b *configBuilder) {
		if b.cfg.Categories.Extra == nil {
			b.cfg.Categories.Extra = make(map[string][]string)
		}
		b.cfg.Categories.Extra[category] = append(b.cfg.Categories.Extra[category], exts...)
	}
}
