package fsx

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/afero"
)

// Replaceable so tests can simulate EXDEV and permission failures.
var renameFunc = func(fsys afero.Fs, src, dst string) error {
	return fsys.Rename(src, dst)
}

// CrossDeviceError reports a rename that failed because source and destination
// live on different filesystems. desktidy never falls back to copy + delete.
type CrossDeviceError struct {
	Src string
	Dst string
	Err error
}

func (e *CrossDeviceError) Error() string {
	return fmt.Sprintf("cross-device move %q -> %q is not supported (source and destination must share a filesystem): %v", e.Src, e.Dst, e.Err)
}

func (e *CrossDeviceError) Unwrap() error { return e.Err }

// IsCrossDevice reports whether err is a CrossDeviceError.
func IsCrossDevice(err error) bool {
	var e *CrossDeviceError
	return errors.As(err, &e)
}

// Rename moves src to dst with a single rename. It refuses to replace an
// existing dst and labels EXDEV failures as CrossDeviceError.
func Rename(fsys afero.Fs, src, dst string) error {
	if _, err := lstat(fsys, dst); err == nil {
		return &fs.PathError{Op: "rename", Path: dst, Err: fs.ErrExist}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := renameFunc(fsys, src, dst); err != nil {
		if isEXDEV(err) {
			return &CrossDeviceError{Src: src, Dst: dst, Err: err}
		}
		return err
	}
	return nil
}

// Exists reports whether any filesystem entry (file, directory or dangling
// symlink) occupies path.
func Exists(fsys afero.Fs, path string) (bool, error) {
	_, err := lstat(fsys, path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// CreatedTime returns the file's birth time when the host filesystem records
// one, falling back to the modification time.
func CreatedTime(fsys afero.Fs, path string, info fs.FileInfo) time.Time {
	if _, ok := fsys.(*afero.OsFs); ok {
		if ts, ok := birthTime(path); ok {
			return ts
		}
	}
	if info == nil {
		return time.Time{}
	}
	return info.ModTime()
}

// IsOS reports whether fsys is backed by the operating system.
func IsOS(fsys afero.Fs) bool {
	_, ok := fsys.(*afero.OsFs)
	return ok
}

func lstat(fsys afero.Fs, path string) (os.FileInfo, error) {
	if l, ok := fsys.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(path)
		return info, err
	}
	return fsys.Stat(path)
}
