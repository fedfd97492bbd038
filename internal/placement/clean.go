package placement

import (
	"path/filepath"
	"regexp"
	"strings"
)

var numberingSuffix = regexp.MustCompile(`(?:_[0-9]+| \([0-9]+\))$`)

// CleanFilename strips one trailing "_<digits>" or " (<digits>)" token that
// sits immediately before the extension, so "file_1.txt" and "file (2).txt"
// both become "file.txt". Names without an extension are returned unchanged,
// as are names whose base would become empty.
func CleanFilename(name string) string {
	base, ext := splitExt(name)
	if ext == "" {
		return name
	}
	loc := numberingSuffix.FindStringIndex(base)
	if loc == nil || loc[0] == 0 {
		return name
	}
	return base[:loc[0]] + ext
}

// splitExt separates the final extension. Dot-files such as ".bashrc" have
// no extension.
func splitExt(name string) (string, string) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if base == "" {
		return name, ""
	}
	return base, ext
}
