// Package watch re-organizes a folder whenever files land in it.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"desktidy/internal/domain"
	"desktidy/internal/failure"
	"desktidy/internal/logging"
)

// DefaultDebounce is used when Options.Debounce is not positive.
const DefaultDebounce = 1500 * time.Millisecond

// Pass performs one organize pass over the watched folder.
type Pass func(ctx context.Context) error

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	Logger   *slog.Logger
	// Ignore reports names whose events never trigger a pass.
	Ignore func(name string) bool
}

// Watcher observes the direct children of one folder.
type Watcher struct {
	root      string
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	ignore    func(string) bool
	logger    *slog.Logger
}

// New starts watching root. The caller must Close the watcher.
func New(root string, opts Options) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, &failure.ScanError{Root: root, Err: err}
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsWatcher.Add(abs); err != nil {
		_ = fsWatcher.Close()
		return nil, &failure.ScanError{Root: abs, Err: err}
	}

	interval := opts.Debounce
	if interval <= 0 {
		interval = DefaultDebounce
	}
	ignore := opts.Ignore
	if ignore == nil {
		ignore = func(string) bool { return false }
	}
	return &Watcher{
		root:      abs,
		fsWatcher: fsWatcher,
		debouncer: NewDebouncer(interval),
		ignore:    ignore,
		logger:    logging.NewComponentLogger(opts.Logger, "watch"),
	}, nil
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	w.debouncer.Stop()
	return w.fsWatcher.Close()
}

// Run executes pass once, then again after every debounced burst of events,
// until ctx is done. Fatal pass errors end the loop; a folder locked by
// another run is retried on the next burst.
func (w *Watcher) Run(ctx context.Context, pass Pass) error {
	if err := w.runPass(ctx, pass, nil); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			if w.relevant(event) {
				w.debouncer.Trigger(filepath.Base(event.Name))
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			logging.WarnWithContext(w.logger, "watcher error", "watch_error",
				logging.String(logging.FieldPath, w.root),
				logging.Error(err),
				logging.String(logging.FieldImpact, "some changes may be picked up late"))
		case names := <-w.debouncer.Output():
			if err := w.runPass(ctx, pass, names); err != nil {
				return err
			}
		}
	}
}

func (w *Watcher) runPass(ctx context.Context, pass Pass, names []string) error {
	if ctx.Err() != nil {
		return nil
	}
	w.logger.Info("organizing", logging.String(logging.FieldPath, w.root), logging.Int("changed", len(names)))
	err := pass(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return nil
	case errors.Is(err, failure.ErrLocked):
		logging.WarnWithContext(w.logger, "folder busy, waiting for next change", "watch_locked",
			logging.String(logging.FieldPath, w.root),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "another desktidy run holds the folder"))
		return nil
	case failure.IsFatal(err):
		logging.ErrorWithContext(w.logger, "watch stopped", "watch_fatal",
			logging.String(logging.FieldPath, w.root),
			logging.Error(err))
		return err
	default:
		w.logger.Warn("pass finished with errors", logging.Error(err))
		return nil
	}
}

// relevant reports whether event names a new or changed file directly under
// the root that the organizer would act on.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	// Rename and Remove fire on the old name, which is what our own moves produce.
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	if filepath.Dir(event.Name) != w.root {
		return false
	}
	name := filepath.Base(event.Name)
	if name == domain.DuplicatesFolder {
		return false
	}
	if _, ok := domain.ParseCategory(name); ok {
		return false
	}
	return !w.ignore(name)
}
