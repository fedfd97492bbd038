// Package category maps file extensions to desktidy categories.
//
// The Resolver is a pure lookup over an injectable table. The default table
// covers office documents, PDFs, images, videos and audio; configuration may
// add or redirect extensions but never invent new categories.
package category

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"desktidy/internal/domain"
)

var defaultTable = map[domain.Category][]string{
	domain.Presentations: {"ppt", "pptx"},
	domain.Documents:     {"doc", "docx"},
	domain.Spreadsheets:  {"xls", "xlsx"},
	domain.PDFs:          {"pdf"},
	domain.Images:        {"jpg", "jpeg", "png", "gif", "bmp", "tiff", "webp", "heic", "raw", "cr2", "nef", "arw"},
	domain.Videos:        {"mp4", "mov", "avi", "mkv", "wmv", "flv", "webm", "m4v", "3gp"},
	domain.Audio:         {"mp3", "wav", "aac", "ogg", "flac", "m4a", "wma", "aiff"},
}

// Resolver resolves extensions against a fixed table. The zero value resolves nothing.
type Resolver struct {
	table map[string]domain.Category
}

// NewResolver builds a resolver from an extension -> category table. Keys are
// normalized the same way lookups are, so "JPG", ".jpg" and "jpg" are equivalent.
func NewResolver(table map[string]domain.Category) (*Resolver, error) {
	r := &Resolver{table: make(map[string]domain.Category, len(table))}
	for ext, c := range table {
		if !c.Valid() {
			return nil, fmt.Errorf("extension %q: unknown category %q", ext, c)
		}
		key := normalize(ext)
		if key == "" {
			return nil, fmt.Errorf("empty extension for category %s", c)
		}
		r.table[key] = c
	}
	return r, nil
}

// Default returns a resolver over the built-in table.
func Default() *Resolver {
	r := &Resolver{table: make(map[string]domain.Category, 48)}
	for c, exts := range defaultTable {
		for _, ext := range exts {
			r.table[ext] = c
		}
	}
	return r
}

// With returns a copy of r with extra extensions mapped per category. Later
// entries override earlier ones, including built-in mappings.
func (r *Resolver) With(extra map[domain.Category][]string) (*Resolver, error) {
	out := &Resolver{table: make(map[string]domain.Category, len(r.table)+len(extra))}
	for ext, c := range r.table {
		out.table[ext] = c
	}
	cats := make([]domain.Category, 0, len(extra))
	for c := range extra {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	for _, c := range cats {
		if !c.Valid() {
			return nil, fmt.Errorf("unknown category %q", c)
		}
		for _, ext := range extra[c] {
			key := normalize(ext)
			if key == "" {
				return nil, fmt.Errorf("empty extension for category %s", c)
			}
			out.table[key] = c
		}
	}
	return out, nil
}

// Resolve returns the category for ext. Matching is case-insensitive and a
// leading dot is ignored. Unknown and empty extensions are unsupported.
func (r *Resolver) Resolve(ext string) (domain.Category, bool) {
	if r == nil {
		return "", false
	}
	key := normalize(ext)
	if key == "" {
		return "", false
	}
	c, ok := r.table[key]
	return c, ok
}

// ResolveName resolves a file name by its final extension.
func (r *Resolver) ResolveName(name string) (domain.Category, bool) {
	return r.Resolve(filepath.Ext(name))
}

// Extensions returns the sorted extensions mapped to c.
func (r *Resolver) Extensions(c domain.Category) []string {
	var out []string
	if r == nil {
		return out
	}
	for ext, mapped := range r.table {
		if mapped == c {
			out = append(out, ext)
		}
	}
	sort.Strings(out)
	return out
}

func normalize(ext string) string {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		return ""
	}
	return cases.Fold().String(ext)
}
