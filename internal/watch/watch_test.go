package watch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"desktidy/internal/failure"
	"desktidy/internal/watch"
)

const testInterval = 50 * time.Millisecond

func receiveBatch(t *testing.T, d *watch.Debouncer, timeout time.Duration) []string {
	t.Helper()
	select {
	case batch := <-d.Output():
		return batch
	case <-time.After(timeout):
		t.Fatal("timed out waiting for debouncer batch")
		return nil
	}
}

func TestDebouncerCollapsesBurst(t *testing.T) {
	d := watch.NewDebouncer(testInterval)

	d.Trigger("a.pdf")
	d.Trigger("a.pdf")
	time.Sleep(testInterval / 2)
	d.Trigger("b.jpg")

	batch := receiveBatch(t, d, 500*time.Millisecond)
	sort.Strings(batch)
	if len(batch) != 2 || batch[0] != "a.pdf" || batch[1] != "b.jpg" {
		t.Fatalf("batch = %v", batch)
	}

	select {
	case extra := <-d.Output():
		t.Fatalf("unexpected second batch %v", extra)
	case <-time.After(3 * testInterval):
	}
}

func TestDebouncerStopDropsPending(t *testing.T) {
	d := watch.NewDebouncer(testInterval)
	d.Trigger("a.pdf")
	d.Stop()
	d.Trigger("b.pdf")

	select {
	case batch := <-d.Output():
		t.Fatalf("stopped debouncer emitted %v", batch)
	case <-time.After(3 * testInterval):
	}
}

func TestDebouncerMergesUnconsumedBatches(t *testing.T) {
	d := watch.NewDebouncer(testInterval)
	d.Trigger("a.pdf")
	time.Sleep(3 * testInterval)
	d.Trigger("b.pdf")
	time.Sleep(3 * testInterval)

	batch := receiveBatch(t, d, 500*time.Millisecond)
	sort.Strings(batch)
	if len(batch) != 2 {
		t.Fatalf("expected merged batch, got %v", batch)
	}
}

func startWatcher(t *testing.T, root string, pass watch.Pass, opts watch.Options) (context.CancelFunc, <-chan error) {
	t.Helper()
	if opts.Debounce == 0 {
		opts.Debounce = testInterval
	}
	w, err := watch.New(root, opts)
	if err != nil {
		t.Fatalf("watch.New returned error: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, pass) }()
	t.Cleanup(cancel)
	return cancel, done
}

func waitPass(t *testing.T, passes <-chan struct{}) {
	t.Helper()
	select {
	case <-passes:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a pass")
	}
}

func TestWatcherRunsPassOnNewFile(t *testing.T) {
	root := t.TempDir()
	passes := make(chan struct{}, 8)
	pass := func(context.Context) error {
		passes <- struct{}{}
		return nil
	}
	cancel, done := startWatcher(t, root, pass, watch.Options{})

	waitPass(t, passes)
	if err := os.WriteFile(filepath.Join(root, "report.pdf"), []byte("pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitPass(t, passes)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestWatcherIgnoresOwnFoldersAndIgnoredNames(t *testing.T) {
	root := t.TempDir()
	passes := make(chan struct{}, 8)
	pass := func(context.Context) error {
		passes <- struct{}{}
		return nil
	}
	ignore := func(name string) bool { return filepath.Ext(name) == ".part" }
	_, _ = startWatcher(t, root, pass, watch.Options{Ignore: ignore})
	waitPass(t, passes)

	if err := os.Mkdir(filepath.Join(root, "Images"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(root, "Duplicates"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "movie.mp4.part"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "Images", "nested.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-passes:
		t.Fatal("ignored events triggered a pass")
	case <-time.After(6 * testInterval):
	}
}

func TestWatcherStopsOnFatalError(t *testing.T) {
	root := t.TempDir()
	fatal := &failure.ScanError{Root: root, Err: errors.New("gone")}
	_, done := startWatcher(t, root, func(context.Context) error { return fatal }, watch.Options{})

	select {
	case err := <-done:
		if !errors.Is(err, failure.ErrScan) {
			t.Fatalf("expected scan error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return on fatal error")
	}
}

func TestWatcherKeepsRunningWhenLocked(t *testing.T) {
	root := t.TempDir()
	passes := make(chan struct{}, 8)
	pass := func(context.Context) error {
		passes <- struct{}{}
		return failure.Wrap(failure.ErrLocked, "workflow", "lock", root, nil)
	}
	_, done := startWatcher(t, root, pass, watch.Options{})
	waitPass(t, passes)

	if err := os.WriteFile(filepath.Join(root, "a.pdf"), []byte("pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitPass(t, passes)

	select {
	case err := <-done:
		t.Fatalf("Run stopped on a locked folder: %v", err)
	default:
	}
}

func TestNewRejectsMissingRoot(t *testing.T) {
	_, err := watch.New(filepath.Join(t.TempDir(), "missing"), watch.Options{})
	if !errors.Is(err, failure.ErrScan) {
		t.Fatalf("expected scan error, got %v", err)
	}
}
