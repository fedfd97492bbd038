package testsupport

import (
	"context"
	"testing"

	"desktidy/internal/config"
	"desktidy/internal/digestcache"
)

// MustOpenCache opens the digest cache configured in cfg and registers cleanup.
func MustOpenCache(t testing.TB, cfg *config.Config) *digestcache.Cache {
	t.Helper()

	cache, err := digestcache.Open(context.Background(), cfg.Dedupe.CachePath, nil)
	if err != nil {
		t.Fatalf("open digest cache: %v", err)
	}
	t.Cleanup(func() {
		_ = cache.Close()
	})
	return cache
}
