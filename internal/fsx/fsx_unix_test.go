//go:build unix

package fsx

import (
	"os"
	"syscall"
	"testing"

	"github.com/spf13/afero"
)

func TestRenameCrossDeviceEXDEV(t *testing.T) {
	old := renameFunc
	renameFunc = func(_ afero.Fs, oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EXDEV}
	}
	defer func() { renameFunc = old }()

	err := Rename(afero.NewMemMapFs(), "/a", "/b")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsCrossDevice(err) {
		t.Fatalf("expected CrossDeviceError, got %T %v", err, err)
	}
}
