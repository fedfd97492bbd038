// Package fsx wraps the filesystem operations desktidy performs on the
// scanned directory: collision-refusing renames, cross-device detection and
// file creation timestamps.
//
// All operations take an afero.Fs so the pipeline can run against the real
// operating system or an in-memory filesystem in tests.
package fsx
