package domain

import "strings"

// Category names a destination folder for a class of file types. The zero
// value means the file type is not supported.
type Category string

const (
	Documents     Category = "Documents"
	PDFs          Category = "PDFs"
	Presentations Category = "Presentations"
	Spreadsheets  Category = "Spreadsheets"
	Images        Category = "Images"
	Videos        Category = "Videos"
	Audio         Category = "Audio"
)

// DuplicatesFolder is the quarantine folder for non-keeper duplicates.
const DuplicatesFolder = "Duplicates"

var categoryOrder = []Category{
	Documents,
	PDFs,
	Presentations,
	Spreadsheets,
	Images,
	Videos,
	Audio,
}

// Categories returns every category in display order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range categoryOrder {
		if c == known {
			return true
		}
	}
	return false
}

// Folder returns the folder name relative to the scanned root.
func (c Category) Folder() string {
	return string(c)
}

func (c Category) String() string {
	if c == "" {
		return "unsupported"
	}
	return string(c)
}

// ParseCategory matches a category name case-insensitively.
func ParseCategory(name string) (Category, bool) {
	for _, known := range categoryOrder {
		if strings.EqualFold(string(known), strings.TrimSpace(name)) {
			return known, true
		}
	}
	return "", false
}
