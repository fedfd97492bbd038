// Package scan lists the direct children of a folder and classifies them.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"desktidy/internal/category"
	"desktidy/internal/domain"
	"desktidy/internal/failure"
	"desktidy/internal/fsx"
	"desktidy/internal/logging"
)

// Options configures a Scanner.
type Options struct {
	Resolver *category.Resolver
	// Ignore holds glob patterns matched against entry names.
	Ignore        []string
	IncludeHidden bool
	Logger        *slog.Logger
}

// Scanner builds an AnalysisResult for a single directory level.
type Scanner struct {
	fsys          afero.Fs
	resolver      *category.Resolver
	ignore        []string
	includeHidden bool
	logger        *slog.Logger
}

// New constructs a Scanner. A nil resolver means the built-in table.
func New(fsys afero.Fs, opts Options) *Scanner {
	resolver := opts.Resolver
	if resolver == nil {
		resolver = category.Default()
	}
	return &Scanner{
		fsys:          fsys,
		resolver:      resolver,
		ignore:        append([]string(nil), opts.Ignore...),
		includeHidden: opts.IncludeHidden,
		logger:        logging.NewComponentLogger(opts.Logger, "scan"),
	}
}

// Scan lists root without descending into subdirectories. Entries are ordered
// by name. A missing or unreadable root, or one that is not a directory, is
// reported as a *failure.ScanError.
func (s *Scanner) Scan(ctx context.Context, root string) (domain.AnalysisResult, error) {
	root, err := s.Root(root)
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	result := domain.AnalysisResult{
		Root:       root,
		ByCategory: make(map[domain.Category][]domain.FileEntry),
	}

	info, err := s.fsys.Stat(root)
	if err != nil {
		return result, &failure.ScanError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return result, &failure.ScanError{Root: root, Err: errors.New("not a directory")}
	}

	children, err := afero.ReadDir(s.fsys, root)
	if err != nil {
		return result, &failure.ScanError{Root: root, Err: err}
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Name() < children[j].Name() })

	for _, child := range children {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		name := child.Name()
		path := filepath.Join(root, name)

		info, ok := s.resolveLink(path, child)
		if !ok || info.IsDir() || !info.Mode().IsRegular() {
			continue
		}

		entry := domain.FileEntry{
			Path:     path,
			Name:     name,
			Size:     info.Size(),
			Created:  fsx.CreatedTime(s.fsys, path, info),
			Modified: info.ModTime(),
		}
		result.Total++
		if reason, skip := s.skipReason(name); skip {
			entry.IgnoreReason = reason
			result.Ignored++
			s.logger.Debug("ignoring file",
				logging.String(logging.FieldPath, path),
				logging.String("reason", reason))
		} else if cat, ok := s.resolver.ResolveName(name); ok {
			entry.Category = cat
			result.Supported++
			result.ByCategory[cat] = append(result.ByCategory[cat], entry)
		}
		result.Entries = append(result.Entries, entry)
	}

	s.logger.Info("scan complete",
		logging.String(logging.FieldPath, root),
		logging.Int("total", result.Total),
		logging.Int("supported", result.Supported),
		logging.Int("ignored", result.Ignored))
	return result, nil
}

// Root returns the path Scan would list for root: absolute on the OS
// filesystem, cleaned otherwise.
func (s *Scanner) Root(root string) (string, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return "", &failure.ScanError{Root: root, Err: errors.New("empty path")}
	}
	if fsx.IsOS(s.fsys) {
		abs, err := filepath.Abs(root)
		if err != nil {
			return "", &failure.ScanError{Root: root, Err: fmt.Errorf("resolve absolute path: %w", err)}
		}
		return abs, nil
	}
	return filepath.Clean(root), nil
}

// resolveLink follows a symlink so a link to a directory is skipped like the
// directory itself. Dangling links are dropped.
func (s *Scanner) resolveLink(path string, info fs.FileInfo) (fs.FileInfo, bool) {
	if info.Mode()&fs.ModeSymlink == 0 {
		return info, true
	}
	target, err := s.fsys.Stat(path)
	if err != nil {
		s.logger.Debug("skipping unresolvable symlink",
			logging.String(logging.FieldPath, path),
			logging.Error(err))
		return nil, false
	}
	return target, true
}

// Skips reports whether a file called name is matched by the ignore rules.
// Such files are listed but never categorized.
func (s *Scanner) Skips(name string) bool {
	_, skip := s.skipReason(name)
	return skip
}

func (s *Scanner) skipReason(name string) (string, bool) {
	if !s.includeHidden && strings.HasPrefix(name, ".") {
		return "hidden", true
	}
	for _, pattern := range s.ignore {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return "matches " + pattern, true
		}
	}
	return "", false
}
