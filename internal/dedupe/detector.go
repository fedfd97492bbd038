package dedupe

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"desktidy/internal/domain"
	"desktidy/internal/failure"
	"desktidy/internal/logging"
)

// Cache remembers digest pairs between runs. Implementations must be safe for
// concurrent use.
type Cache interface {
	Lookup(ctx context.Context, path string, size int64, modified time.Time) (domain.ContentKey, bool)
	Store(ctx context.Context, path string, size int64, modified time.Time, key domain.ContentKey) error
}

// Options configures a Detector.
type Options struct {
	// Workers bounds concurrent hashing. Zero means runtime.NumCPU, one hashes
	// sequentially.
	Workers int
	Cache   Cache
	Logger  *slog.Logger
}

// Detector partitions file entries into duplicate groups.
type Detector struct {
	fsys    afero.Fs
	workers int
	cache   Cache
	logger  *slog.Logger
}

// New constructs a Detector reading file content through fsys.
func New(fsys afero.Fs, opts Options) *Detector {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Detector{
		fsys:    fsys,
		workers: workers,
		cache:   opts.Cache,
		logger:  logging.NewComponentLogger(opts.Logger, "dedupe"),
	}
}

type digestResult struct {
	entry domain.FileEntry
	key   domain.ContentKey
	err   error
}

// FindDuplicates returns every group of two or more byte-identical entries.
// Groups are ordered by their keeper's creation time; members are ordered
// oldest first so Files[0] is the keeper. Only context cancellation is
// returned as an error; unreadable files land in DetectionResult.Failures.
func (d *Detector) FindDuplicates(ctx context.Context, entries []domain.FileEntry) (domain.DetectionResult, error) {
	var result domain.DetectionResult

	candidates := sizeCandidates(entries)
	d.logger.Info("checking for duplicates",
		logging.Int("files", len(entries)),
		logging.Int("candidates", len(candidates)),
		logging.Int("workers", d.workers))
	if len(candidates) == 0 {
		return result, nil
	}

	digests, err := d.digestAll(ctx, candidates)
	if err != nil {
		return result, err
	}

	buckets := make(map[domain.ContentKey][]domain.FileEntry)
	var order []domain.ContentKey
	for _, res := range digests {
		if res.err != nil {
			readErr := &failure.ReadError{Path: res.entry.Path, Err: res.err}
			result.Failures = append(result.Failures, domain.DetectionFailure{Path: res.entry.Path, Err: readErr})
			logging.WarnWithContext(d.logger, "file excluded from duplicate detection", "dedupe_read_failed",
				logging.String(logging.FieldPath, res.entry.Path),
				logging.Error(readErr),
				logging.String(logging.FieldErrorHint, "check file permissions or whether the file was removed"),
				logging.String(logging.FieldImpact, "file is organized without duplicate checking"))
			continue
		}
		if _, seen := buckets[res.key]; !seen {
			order = append(order, res.key)
		}
		buckets[res.key] = append(buckets[res.key], res.entry)
	}

	for _, key := range order {
		files := buckets[key]
		if len(files) < 2 {
			continue
		}
		sortOldestFirst(files)
		group := domain.DuplicateGroup{Key: key, Files: files}
		result.Groups = append(result.Groups, group)

		d.logger.Info("found duplicates",
			logging.String("group", key.Short()),
			logging.String("keeper", group.Keeper().Path),
			logging.Int("duplicates", len(group.Duplicates())))
		for _, dup := range group.Duplicates() {
			d.logger.Debug("duplicate will be quarantined",
				logging.String(logging.FieldPath, dup.Path),
				logging.String("keeper", group.Keeper().Path))
		}
	}

	sort.SliceStable(result.Groups, func(i, j int) bool {
		a, b := result.Groups[i].Keeper(), result.Groups[j].Keeper()
		if !a.Created.Equal(b.Created) {
			return a.Created.Before(b.Created)
		}
		return a.Path < b.Path
	})
	sort.Slice(result.Failures, func(i, j int) bool { return result.Failures[i].Path < result.Failures[j].Path })
	return result, nil
}

// sizeCandidates drops entries whose size is unique; the survivors are
// ordered by size and then path.
func sizeCandidates(entries []domain.FileEntry) []domain.FileEntry {
	bySize := make(map[int64]int, len(entries))
	for _, e := range entries {
		bySize[e.Size]++
	}
	out := make([]domain.FileEntry, 0, len(entries))
	for _, e := range entries {
		if bySize[e.Size] >= 2 {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Size != out[j].Size {
			return out[i].Size < out[j].Size
		}
		return out[i].Path < out[j].Path
	})
	return out
}

func (d *Detector) digestAll(ctx context.Context, candidates []domain.FileEntry) ([]digestResult, error) {
	results := make([]digestResult, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i, entry := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			key, err := d.digest(gctx, entry)
			results[i] = digestResult{entry: entry, key: key, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (d *Detector) digest(ctx context.Context, entry domain.FileEntry) (domain.ContentKey, error) {
	if d.cache != nil {
		if key, ok := d.cache.Lookup(ctx, entry.Path, entry.Size, entry.Modified); ok {
			d.logger.Debug("digest cache hit", logging.String(logging.FieldPath, entry.Path))
			return key, nil
		}
	}

	key, err := Checksum(d.fsys, entry.Path)
	if err != nil {
		return domain.ContentKey{}, err
	}

	if d.cache != nil && key.Size == entry.Size {
		if err := d.cache.Store(ctx, entry.Path, entry.Size, entry.Modified, key); err != nil {
			d.logger.Debug("digest cache store failed",
				logging.String(logging.FieldPath, entry.Path),
				logging.Error(err))
		}
	}
	return key, nil
}

func sortOldestFirst(files []domain.FileEntry) {
	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].Created.Equal(files[j].Created) {
			return files[i].Created.Before(files[j].Created)
		}
		return files[i].Path < files[j].Path
	})
}
