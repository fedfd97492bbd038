// Package failure defines the error taxonomy shared by the desktidy stages.
//
// Fatal conditions (ErrScan, ErrConfiguration, ErrLocked) abort a run before
// any file is touched. Per-file conditions (ErrRead, ErrMove) are recorded in
// the run summary and never stop the remaining files from being processed.
package failure

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrScan          = errors.New("scan error")
	ErrRead          = errors.New("read error")
	ErrMove          = errors.New("move error")
	ErrConfiguration = errors.New("configuration error")
	ErrLocked        = errors.New("directory locked")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrScan
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether err should abort the whole run.
func IsFatal(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrRead), errors.Is(err, ErrMove):
		return false
	default:
		return true
	}
}

// ScanError reports that the root directory could not be listed.
type ScanError struct {
	Root string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Root, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

func (e *ScanError) Is(target error) bool { return target == ErrScan }

// ReadError reports a file whose content could not be hashed.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

func (e *ReadError) Is(target error) bool { return target == ErrRead }

// MoveError reports a rename or folder creation that did not complete.
type MoveError struct {
	Source      string
	Destination string
	Err         error
}

func (e *MoveError) Error() string {
	if e.Destination == "" {
		return fmt.Sprintf("move %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("move %s -> %s: %v", e.Source, e.Destination, e.Err)
}

func (e *MoveError) Unwrap() error { return e.Err }

func (e *MoveError) Is(target error) bool { return target == ErrMove }

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "desktidy failure"
	}
	return strings.Join(parts, ": ")
}
