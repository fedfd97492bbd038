package report

import (
	"encoding/json"
	"fmt"
	"io"

	"desktidy/internal/domain"
)

// Document is the machine-readable form of one analysis or run.
type Document struct {
	Root       string                      `json:"root"`
	Total      int                         `json:"total_files"`
	Supported  int                         `json:"supported_files"`
	Ignored    int                         `json:"ignored_files"`
	Categories []CategoryDocument          `json:"categories"`
	Duplicates []GroupDocument             `json:"duplicate_groups"`
	Warnings   []WarningDocument           `json:"warnings,omitempty"`
	Summary    *domain.OrganizationSummary `json:"summary,omitempty"`
}

// CategoryDocument lists the files resolved to one category.
type CategoryDocument struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Bytes int64    `json:"bytes"`
	Files []string `json:"files"`
}

// GroupDocument describes one set of identical files.
type GroupDocument struct {
	Key        string   `json:"key"`
	Size       int64    `json:"size"`
	Keeper     string   `json:"keeper"`
	Duplicates []string `json:"duplicates"`
}

// WarningDocument is a file excluded from duplicate comparison.
type WarningDocument struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// NewDocument assembles a Document. summary may be nil for analysis-only output.
func NewDocument(analysis domain.AnalysisResult, detection domain.DetectionResult, summary *domain.OrganizationSummary) Document {
	doc := Document{
		Root:       analysis.Root,
		Total:      analysis.Total,
		Supported:  analysis.Supported,
		Ignored:    analysis.Ignored,
		Categories: []CategoryDocument{},
		Duplicates: []GroupDocument{},
		Summary:    summary,
	}
	for _, c := range analysis.PresentCategories() {
		entries := analysis.ByCategory[c]
		cd := CategoryDocument{Name: string(c), Count: len(entries), Files: make([]string, 0, len(entries))}
		for _, e := range entries {
			cd.Bytes += e.Size
			cd.Files = append(cd.Files, e.Name)
		}
		doc.Categories = append(doc.Categories, cd)
	}
	for _, g := range detection.Groups {
		gd := GroupDocument{Key: g.Key.String(), Size: g.Key.Size, Keeper: g.Keeper().Path}
		for _, dup := range g.Duplicates() {
			gd.Duplicates = append(gd.Duplicates, dup.Path)
		}
		doc.Duplicates = append(doc.Duplicates, gd)
	}
	for _, f := range detection.Failures {
		doc.Warnings = append(doc.Warnings, WarningDocument{Path: f.Path, Error: f.Err.Error()})
	}
	return doc
}

// WriteJSON encodes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	encoded = append(encoded, '\n')
	_, err = w.Write(encoded)
	return err
}
