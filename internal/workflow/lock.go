package workflow

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"desktidy/internal/failure"
	"desktidy/internal/logging"
)

// LockPath returns the lock file guarding root. The name is derived from the
// folder path so nothing is written inside the folder itself.
func LockPath(stateDir, root string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(root)))
	return filepath.Join(stateDir, "locks", hex.EncodeToString(sum[:8])+".lock")
}

// acquireLock takes the exclusive lock for root without blocking. When the
// lock file cannot be created the run proceeds unlocked and a nil lock is
// returned; only contention is an error.
func acquireLock(logger *slog.Logger, stateDir, root string) (*flock.Flock, error) {
	path := LockPath(stateDir, root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logging.WarnWithContext(logger, "folder lock unavailable", "workflow_lock_unavailable",
			logging.String(logging.FieldPath, path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.state_dir"),
			logging.String(logging.FieldImpact, "concurrent runs on this folder are not prevented"))
		return nil, nil
	}

	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, failure.Wrap(failure.ErrLocked, "workflow", "lock", fmt.Sprintf("acquire %s", path), err)
	}
	if !ok {
		return nil, failure.Wrap(failure.ErrLocked, "workflow", "lock",
			fmt.Sprintf("another desktidy run is organizing %s", root), nil)
	}
	return lock, nil
}
