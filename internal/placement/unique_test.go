package placement

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func touch(t *testing.T, fsys afero.Fs, path string) {
	t.Helper()
	if err := afero.WriteFile(fsys, path, nil, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestUniquePathReturnsDesiredWhenFree(t *testing.T) {
	fsys := afero.NewMemMapFs()
	got, err := UniquePath(fsys, "/root/PDFs", "a.pdf")
	if err != nil {
		t.Fatalf("UniquePath returned error: %v", err)
	}
	if got != filepath.Join("/root/PDFs", "a.pdf") {
		t.Fatalf("UniquePath = %q", got)
	}
}

func TestUniquePathFirstConflict(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "test.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := UniquePath(afero.NewOsFs(), dir, "test.txt")
	if err != nil {
		t.Fatalf("UniquePath returned error: %v", err)
	}
	if filepath.Base(got) != "test (1).txt" {
		t.Fatalf("UniquePath = %q, want test (1).txt", got)
	}
}

func TestUniquePathManyConflicts(t *testing.T) {
	fsys := afero.NewMemMapFs()
	touch(t, fsys, "/root/Images/photo.jpg")
	for i := 1; i <= 5; i++ {
		touch(t, fsys, fmt.Sprintf("/root/Images/photo (%d).jpg", i))
	}

	got, err := UniquePath(fsys, "/root/Images", "photo.jpg")
	if err != nil {
		t.Fatalf("UniquePath returned error: %v", err)
	}
	if filepath.Base(got) != "photo (6).jpg" {
		t.Fatalf("UniquePath = %q, want photo (6).jpg", got)
	}
}

func TestUniquePathTreatsDirectoryAsCollision(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := fsys.MkdirAll("/root/Documents/notes.doc", 0o755); err != nil {
		t.Fatal(err)
	}
	got, _ := UniquePath(fsys, "/root/Documents", "notes.doc")
	if filepath.Base(got) != "notes (1).doc" {
		t.Fatalf("UniquePath = %q", got)
	}
}

func TestUniquePathNoExtension(t *testing.T) {
	fsys := afero.NewMemMapFs()
	touch(t, fsys, "/root/Documents/README")
	got, _ := UniquePath(fsys, "/root/Documents", "README")
	if filepath.Base(got) != "README (1)" {
		t.Fatalf("UniquePath = %q", got)
	}
}

func TestUniquePathIdempotentWithoutCreation(t *testing.T) {
	fsys := afero.NewMemMapFs()
	touch(t, fsys, "/root/Audio/song.mp3")

	first, err := UniquePath(fsys, "/root/Audio", "song.mp3")
	if err != nil {
		t.Fatal(err)
	}
	second, err := UniquePath(fsys, "/root/Audio", "song.mp3")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("expected identical results, got %q and %q", first, second)
	}

	touch(t, fsys, first)
	third, err := UniquePath(fsys, "/root/Audio", "song.mp3")
	if err != nil {
		t.Fatal(err)
	}
	if third == first {
		t.Fatalf("expected a new path after materializing %q", first)
	}
	if ok, _ := afero.Exists(fsys, third); ok {
		t.Fatalf("returned path %q collides with an existing entry", third)
	}
}

func TestAllocatorSequentialSuffixes(t *testing.T) {
	alloc := NewAllocator(afero.NewMemMapFs())
	want := []string{"clip.mp4", "clip (1).mp4", "clip (2).mp4", "clip (3).mp4"}
	for i, w := range want {
		got, err := alloc.Allocate("/root/Videos", "clip.mp4")
		if err != nil {
			t.Fatalf("Allocate #%d returned error: %v", i, err)
		}
		if filepath.Base(got) != w {
			t.Fatalf("Allocate #%d = %q, want %q", i, got, w)
		}
	}
}

func TestAllocatorCleansAndRespectsFilesystem(t *testing.T) {
	fsys := afero.NewMemMapFs()
	touch(t, fsys, "/root/Documents/file.txt")
	alloc := NewAllocator(fsys)

	got, err := alloc.Allocate("/root/Documents", "file_1.txt")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got) != "file (1).txt" {
		t.Fatalf("Allocate = %q, want file (1).txt", got)
	}

	alloc.Release(got)
	again, _ := alloc.Allocate("/root/Documents", "file.txt")
	if again != got {
		t.Fatalf("expected released path %q to be reusable, got %q", got, again)
	}
}

func TestAllocatorKeepsDirectoriesIndependent(t *testing.T) {
	alloc := NewAllocator(afero.NewMemMapFs())
	a, _ := alloc.Allocate("/root/Images", "photo.jpg")
	b, _ := alloc.Allocate("/root/Duplicates", "photo.jpg")
	if filepath.Base(a) != "photo.jpg" || filepath.Base(b) != "photo.jpg" {
		t.Fatalf("unexpected allocations %q %q", a, b)
	}
}
