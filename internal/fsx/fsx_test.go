package fsx

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestRenameMovesFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/root/a.pdf", []byte("pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := fsys.MkdirAll("/root/PDFs", 0o755); err != nil {
		t.Fatal(err)
	}

	if err := Rename(fsys, "/root/a.pdf", "/root/PDFs/a.pdf"); err != nil {
		t.Fatalf("Rename returned error: %v", err)
	}
	if ok, _ := Exists(fsys, "/root/a.pdf"); ok {
		t.Fatal("expected source to be gone")
	}
	got, err := afero.ReadFile(fsys, "/root/PDFs/a.pdf")
	if err != nil || string(got) != "pdf" {
		t.Fatalf("unexpected destination content %q (err %v)", got, err)
	}
}

func TestRenameRefusesExistingDestination(t *testing.T) {
	fsys := afero.NewMemMapFs()
	_ = afero.WriteFile(fsys, "/root/a.pdf", []byte("new"), 0o644)
	_ = afero.WriteFile(fsys, "/root/PDFs/a.pdf", []byte("old"), 0o644)

	err := Rename(fsys, "/root/a.pdf", "/root/PDFs/a.pdf")
	if !errors.Is(err, fs.ErrExist) {
		t.Fatalf("expected ErrExist, got %v", err)
	}
	got, _ := afero.ReadFile(fsys, "/root/PDFs/a.pdf")
	if string(got) != "old" {
		t.Fatalf("destination was overwritten: %q", got)
	}
	if ok, _ := Exists(fsys, "/root/a.pdf"); !ok {
		t.Fatal("source must remain in place")
	}
}

func TestRenameReadOnlyFails(t *testing.T) {
	base := afero.NewMemMapFs()
	_ = afero.WriteFile(base, "/root/a.pdf", []byte("pdf"), 0o644)
	fsys := afero.NewReadOnlyFs(base)

	if err := Rename(fsys, "/root/a.pdf", "/root/b.pdf"); err == nil {
		t.Fatal("expected rename on read-only filesystem to fail")
	}
	if ok, _ := Exists(base, "/root/a.pdf"); !ok {
		t.Fatal("source must remain in place")
	}
}

func TestExists(t *testing.T) {
	fsys := afero.NewMemMapFs()
	_ = fsys.MkdirAll("/root/Images", 0o755)

	if ok, err := Exists(fsys, "/root/Images"); err != nil || !ok {
		t.Fatalf("expected directory to exist, got %v %v", ok, err)
	}
	if ok, err := Exists(fsys, "/root/missing.jpg"); err != nil || ok {
		t.Fatalf("expected missing file, got %v %v", ok, err)
	}
}

func TestCreatedTimeFallsBackToModTime(t *testing.T) {
	fsys := afero.NewMemMapFs()
	_ = afero.WriteFile(fsys, "/root/a.txt", []byte("x"), 0o644)
	want := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := fsys.Chtimes("/root/a.txt", want, want); err != nil {
		t.Fatal(err)
	}
	info, err := fsys.Stat("/root/a.txt")
	if err != nil {
		t.Fatal(err)
	}
	if got := CreatedTime(fsys, "/root/a.txt", info); !got.Equal(want) {
		t.Fatalf("CreatedTime = %v, want %v", got, want)
	}
}

func TestCreatedTimeOnDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	got := CreatedTime(afero.NewOsFs(), path, info)
	if got.IsZero() {
		t.Fatal("expected a non-zero creation time")
	}
	if got.After(time.Now().Add(time.Minute)) {
		t.Fatalf("creation time %v is in the future", got)
	}
}
