package digestcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"desktidy/internal/domain"
	"desktidy/internal/logging"
)

// Cache is a SQLite-backed digest store. It satisfies dedupe.Cache.
type Cache struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the digest database at path.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	cache := &Cache{db: db, path: path, logger: logging.NewComponentLogger(logger, "digestcache")}
	if err := cache.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return cache, nil
}

// Path returns the database location.
func (c *Cache) Path() string {
	return c.path
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Lookup returns the cached digests for path when size and modification time
// still match. Database errors are treated as misses.
func (c *Cache) Lookup(ctx context.Context, path string, size int64, modified time.Time) (domain.ContentKey, bool) {
	var key domain.ContentKey
	err := retryOnBusy(ctx, func() error {
		return c.db.QueryRowContext(ctx,
			"SELECT size, fast, strong FROM digests WHERE path = ? AND size = ? AND mtime_ns = ?",
			path, size, modified.UnixNano(),
		).Scan(&key.Size, &key.Fast, &key.Strong)
	})
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			c.logger.Debug("digest cache lookup failed",
				logging.String(logging.FieldPath, path),
				logging.Error(err))
		}
		return domain.ContentKey{}, false
	}
	return key, true
}

// Store records the digests computed for path.
func (c *Cache) Store(ctx context.Context, path string, size int64, modified time.Time, key domain.ContentKey) error {
	return c.exec(ctx,
		`INSERT INTO digests (path, size, mtime_ns, fast, strong, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
		   size = excluded.size,
		   mtime_ns = excluded.mtime_ns,
		   fast = excluded.fast,
		   strong = excluded.strong,
		   updated_at = excluded.updated_at`,
		path, size, modified.UnixNano(), key.Fast, key.Strong, time.Now().UTC().Format(time.RFC3339))
}

// Move re-keys the entry for from so a renamed file keeps its digests.
// A missing entry is not an error.
func (c *Cache) Move(ctx context.Context, from, to string) error {
	if from == to {
		return nil
	}
	return retryOnBusy(ctx, func() error {
		tx, err := c.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO digests (path, size, mtime_ns, fast, strong, updated_at)
			 SELECT ?, size, mtime_ns, fast, strong, ? FROM digests WHERE path = ?`,
			to, time.Now().UTC().Format(time.RFC3339), from); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM digests WHERE path = ?", from); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// Prune drops entries whose path lies directly under dir and is not in keep.
// It returns the number of rows removed.
func (c *Cache) Prune(ctx context.Context, dir string, keep map[string]struct{}) (int64, error) {
	dir = filepath.Clean(dir)
	rows, err := c.db.QueryContext(ctx, "SELECT path FROM digests")
	if err != nil {
		return 0, fmt.Errorf("list cached paths: %w", err)
	}
	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan cached path: %w", err)
		}
		if filepath.Dir(path) != dir {
			continue
		}
		if _, ok := keep[path]; !ok {
			stale = append(stale, path)
		}
	}
	if err := rows.Close(); err != nil {
		return 0, err
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	var removed int64
	for _, path := range stale {
		if err := c.exec(ctx, "DELETE FROM digests WHERE path = ?", path); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Len reports the number of cached entries.
func (c *Cache) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM digests").Scan(&n); err != nil {
		return 0, fmt.Errorf("count digests: %w", err)
	}
	return n, nil
}

func (c *Cache) exec(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := c.db.ExecContext(ctx, query, args...)
		return err
	})
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
