package domain

import "fmt"

// ContentKey identifies file content by size and two independent digests.
type ContentKey struct {
	Size   int64
	Fast   string
	Strong string
}

func (k ContentKey) String() string {
	return fmt.Sprintf("%s_%s", k.Fast, k.Strong)
}

// Short returns the first eight characters of the key for display.
func (k ContentKey) Short() string {
	s := k.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// DuplicateGroup holds byte-identical files ordered oldest first.
type DuplicateGroup struct {
	Key   ContentKey
	Files []FileEntry
}

// Keeper returns the oldest member, which stays in its category folder.
func (g DuplicateGroup) Keeper() FileEntry {
	if len(g.Files) == 0 {
		return FileEntry{}
	}
	return g.Files[0]
}

// Duplicates returns every member except the keeper.
func (g DuplicateGroup) Duplicates() []FileEntry {
	if len(g.Files) < 2 {
		return nil
	}
	return g.Files[1:]
}

// DetectionFailure records a file excluded from duplicate comparison.
type DetectionFailure struct {
	Path string
	Err  error
}

// DetectionResult is the output of duplicate detection.
type DetectionResult struct {
	Groups   []DuplicateGroup
	Failures []DetectionFailure
}
