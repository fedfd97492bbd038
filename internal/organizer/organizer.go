package organizer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"desktidy/internal/domain"
	"desktidy/internal/failure"
	"desktidy/internal/fsx"
	"desktidy/internal/logging"
	"desktidy/internal/placement"
)

const (
	reasonUnsupported = "unsupported file type"
	reasonInPlace     = "already in destination folder"
)

// MoveObserver is notified after every successful rename.
type MoveObserver func(ctx context.Context, from, to string)

// Options configures an Organizer.
type Options struct {
	Logger  *slog.Logger
	OnMoved MoveObserver
}

// Organizer applies the placement decisions for one directory.
type Organizer struct {
	fsys    afero.Fs
	logger  *slog.Logger
	onMoved MoveObserver
}

// New constructs an Organizer operating on fsys.
func New(fsys afero.Fs, opts Options) *Organizer {
	return &Organizer{
		fsys:    fsys,
		logger:  logging.NewComponentLogger(opts.Logger, "organizer"),
		onMoved: opts.OnMoved,
	}
}

// Organize places entries under root. Non-keeper members of groups go to the
// Duplicates folder; every other supported entry goes to its category folder.
// Unsupported and ignored entries are recorded as ActionSkipped.
// With dryRun set the filesystem is left untouched and planned moves are
// recorded as ActionWouldMove; in that mode FoldersCreated lists the folders
// that a real run would create.
//
// The returned error is non-nil only when ctx is cancelled; the summary then
// holds the actions completed so far.
func (o *Organizer) Organize(ctx context.Context, root string, entries []domain.FileEntry, groups []domain.DuplicateGroup, dryRun bool) (domain.OrganizationSummary, error) {
	logger := logging.WithContext(ctx, o.logger)
	summary := domain.OrganizationSummary{
		Root:       root,
		DryRun:     dryRun,
		Duplicates: groups,
		StartedAt:  time.Now(),
	}
	if id, ok := logging.RunIDFromContext(ctx); ok {
		summary.RunID = id
	}

	keepers := duplicateKeepers(groups)
	folderErrs := o.ensureFolders(logger, root, requiredFolders(entries, keepers), dryRun, &summary)

	alloc := placement.NewAllocator(o.fsys)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			summary.FinishedAt = time.Now()
			return summary, err
		}
		action := o.place(ctx, logger, alloc, root, entry, keepers, folderErrs, dryRun)
		summary.Actions = append(summary.Actions, action)
	}
	summary.FinishedAt = time.Now()

	counts := summary.Counts()
	logger.Info("organization complete",
		logging.String(logging.FieldPath, root),
		logging.Bool("dry_run", dryRun),
		logging.Int("moved", counts.Moved),
		logging.Int("would_move", counts.WouldMove),
		logging.Int("skipped", counts.Skipped),
		logging.Int("failed", counts.Failed))
	return summary, nil
}

func (o *Organizer) place(ctx context.Context, logger *slog.Logger, alloc *placement.Allocator, root string, entry domain.FileEntry, keepers map[string]string, folderErrs map[string]error, dryRun bool) domain.Action {
	action := domain.Action{Source: entry.Path, Category: entry.Category}
	if entry.Ignored() {
		action.Kind = domain.ActionSkipped
		action.Reason = entry.IgnoreReason
		logger.Debug("skipping file", logging.String(logging.FieldPath, entry.Path), logging.String("reason", entry.IgnoreReason))
		return action
	}
	if !entry.Supported() {
		action.Kind = domain.ActionSkipped
		action.Reason = reasonUnsupported
		logger.Debug("skipping file", logging.String(logging.FieldPath, entry.Path), logging.String("reason", reasonUnsupported))
		return action
	}

	folder := entry.Category.Folder()
	if keeper, dup := keepers[entry.Path]; dup {
		folder = domain.DuplicatesFolder
		action.Duplicate = true
		action.KeeperPath = keeper
		action.Reason = "identical to " + filepath.Base(keeper)
	}
	destDir := filepath.Join(root, folder)

	if err := folderErrs[folder]; err != nil {
		return o.fail(logger, action, destDir, err)
	}

	// Scanned entries are direct children of root and never match. Callers
	// that pass entries from a category folder get a skip instead of a rename
	// onto a fresh name beside the original.
	if filepath.Clean(entry.Dir()) == filepath.Clean(destDir) {
		action.Kind = domain.ActionSkipped
		action.Destination = entry.Path
		action.Reason = reasonInPlace
		return action
	}

	dst, err := alloc.Allocate(destDir, entry.Name)
	if err != nil {
		return o.fail(logger, action, destDir, err)
	}
	action.Destination = dst

	if dryRun {
		action.Kind = domain.ActionWouldMove
		logger.Debug("would move file",
			logging.String(logging.FieldPath, entry.Path),
			logging.String("destination", dst),
			logging.String(logging.FieldCategory, string(entry.Category)))
		return action
	}

	if err := fsx.Rename(o.fsys, entry.Path, dst); err != nil {
		alloc.Release(dst)
		return o.fail(logger, action, dst, err)
	}

	action.Kind = domain.ActionMoved
	logger.Info("moved file",
		logging.String(logging.FieldPath, entry.Path),
		logging.String("destination", dst),
		logging.String(logging.FieldCategory, string(entry.Category)),
		logging.Bool("duplicate", action.Duplicate))
	if o.onMoved != nil {
		o.onMoved(ctx, entry.Path, dst)
	}
	return action
}

func (o *Organizer) fail(logger *slog.Logger, action domain.Action, dst string, err error) domain.Action {
	moveErr := &failure.MoveError{Source: action.Source, Destination: dst, Err: err}
	action.Kind = domain.ActionFailed
	action.Destination = ""
	action.Reason = moveErr.Error()

	hint := "check permissions on the folder and the file"
	if fsx.IsCrossDevice(err) {
		hint = "source and destination must be on the same filesystem"
	}
	logging.WarnWithContext(logger, "file left in place", "organizer_move_failed",
		logging.String(logging.FieldPath, action.Source),
		logging.String("destination", dst),
		logging.Error(moveErr),
		logging.String(logging.FieldErrorHint, hint),
		logging.String(logging.FieldImpact, "file was not organized"))
	return action
}

// ensureFolders creates every folder in names under root and returns the
// per-folder errors. A folder that already exists as a directory is fine.
func (o *Organizer) ensureFolders(logger *slog.Logger, root string, names []string, dryRun bool, summary *domain.OrganizationSummary) map[string]error {
	errs := make(map[string]error)
	for _, name := range names {
		path := filepath.Join(root, name)
		info, err := o.fsys.Stat(path)
		switch {
		case err == nil && info.IsDir():
			continue
		case err == nil:
			errs[name] = fmt.Errorf("%s exists and is not a directory", path)
		case !errors.Is(err, fs.ErrNotExist):
			errs[name] = err
		case dryRun:
			summary.FoldersCreated = append(summary.FoldersCreated, name)
		default:
			if err := o.fsys.Mkdir(path, 0o755); err != nil {
				errs[name] = err
				break
			}
			summary.FoldersCreated = append(summary.FoldersCreated, name)
			logger.Info("created category folder", logging.String(logging.FieldPath, path))
		}
		if err := errs[name]; err != nil {
			logging.WarnWithContext(logger, "could not prepare folder", "organizer_folder_failed",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on the organized folder"),
				logging.String(logging.FieldImpact, "files for this folder are left in place"))
		}
	}
	return errs
}

// requiredFolders lists the category folders present among entries in display
// order, followed by the Duplicates folder when any entry is a duplicate.
func requiredFolders(entries []domain.FileEntry, keepers map[string]string) []string {
	present := make(map[domain.Category]bool)
	needDuplicates := false
	for _, e := range entries {
		if !e.Supported() {
			continue
		}
		present[e.Category] = true
		if _, dup := keepers[e.Path]; dup {
			needDuplicates = true
		}
	}
	var out []string
	for _, c := range domain.Categories() {
		if present[c] {
			out = append(out, c.Folder())
		}
	}
	if needDuplicates {
		out = append(out, domain.DuplicatesFolder)
	}
	return out
}

// duplicateKeepers maps every non-keeper duplicate path to its keeper's path.
func duplicateKeepers(groups []domain.DuplicateGroup) map[string]string {
	out := make(map[string]string)
	for _, g := range groups {
		keeper := g.Keeper().Path
		for _, dup := range g.Duplicates() {
			out[dup.Path] = keeper
		}
	}
	return out
}
