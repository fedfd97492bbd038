package placement

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"desktidy/internal/fsx"
)

// UniquePath returns dir/desired when nothing occupies it, otherwise the first
// "name (N).ext" with N = 1, 2, ... that does not exist at call time. Without
// intervening creation repeated calls return the same path.
func UniquePath(fsys afero.Fs, dir, desired string) (string, error) {
	return probe(dir, desired, func(candidate string) (bool, error) {
		return fsx.Exists(fsys, candidate)
	})
}

// Allocator hands out destinations for a batch of moves. Besides the live
// filesystem it remembers every path it already returned, so sequential calls
// for the same name yield "name.ext", "name (1).ext", "name (2).ext", ...
type Allocator struct {
	fsys afero.Fs

	mu       sync.Mutex
	reserved map[string]struct{}
}

// NewAllocator creates an allocator over fsys.
func NewAllocator(fsys afero.Fs) *Allocator {
	return &Allocator{fsys: fsys, reserved: make(map[string]struct{})}
}

// Allocate cleans name and returns a path under dir that neither exists nor
// was previously allocated.
func (a *Allocator) Allocate(dir, name string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	path, err := probe(dir, CleanFilename(name), func(candidate string) (bool, error) {
		if _, ok := a.reserved[candidate]; ok {
			return true, nil
		}
		return fsx.Exists(a.fsys, candidate)
	})
	if err != nil {
		return "", err
	}
	a.reserved[path] = struct{}{}
	return path, nil
}

// Release forgets a reservation, used when a planned move did not happen.
func (a *Allocator) Release(path string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.reserved, path)
}

func probe(dir, desired string, taken func(string) (bool, error)) (string, error) {
	first := filepath.Join(dir, desired)
	busy, err := taken(first)
	if err != nil {
		return "", fmt.Errorf("check %s: %w", first, err)
	}
	if !busy {
		return first, nil
	}

	stem, ext := splitExt(desired)
	for n := 1; ; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
		busy, err := taken(candidate)
		if err != nil {
			return "", fmt.Errorf("check %s: %w", candidate, err)
		}
		if !busy {
			return candidate, nil
		}
	}
}
