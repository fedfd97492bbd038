package domain

import (
	"path/filepath"
	"time"
)

// FileEntry describes one regular file found directly under the scanned root.
type FileEntry struct {
	Path     string
	Name     string
	Category Category
	Size     int64
	Created  time.Time
	Modified time.Time
	// IgnoreReason is set when the ignore rules matched the entry, which is
	// then left in place.
	IgnoreReason string
}

// Supported reports whether the entry resolved to a category.
func (e FileEntry) Supported() bool {
	return e.Category != "" && e.IgnoreReason == ""
}

// Ignored reports whether the ignore rules matched the entry.
func (e FileEntry) Ignored() bool {
	return e.IgnoreReason != ""
}

// Dir returns the directory that currently holds the entry.
func (e FileEntry) Dir() string {
	return filepath.Dir(e.Path)
}

// AnalysisResult is the scanner's view of the root directory.
type AnalysisResult struct {
	Root      string
	Total     int
	Supported int
	// Ignored counts the entries matched by the ignore rules. They are
	// included in Total and Entries.
	Ignored    int
	Entries    []FileEntry
	ByCategory map[Category][]FileEntry
}

// PresentCategories lists categories with at least one entry, in display order.
func (r AnalysisResult) PresentCategories() []Category {
	out := make([]Category, 0, len(r.ByCategory))
	for _, c := range categoryOrder {
		if len(r.ByCategory[c]) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// SupportedEntries returns the entries that resolved to a category, in scan order.
func (r AnalysisResult) SupportedEntries() []FileEntry {
	out := make([]FileEntry, 0, r.Supported)
	for _, e := range r.Entries {
		if e.Supported() {
			out = append(out, e)
		}
	}
	return out
}
