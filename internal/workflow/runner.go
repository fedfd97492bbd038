package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"desktidy/internal/config"
	"desktidy/internal/dedupe"
	"desktidy/internal/digestcache"
	"desktidy/internal/domain"
	"desktidy/internal/failure"
	"desktidy/internal/logging"
	"desktidy/internal/organizer"
	"desktidy/internal/scan"
)

// Options overrides how a Runner is assembled.
type Options struct {
	// Fs defaults to the host filesystem.
	Fs     afero.Fs
	Logger *slog.Logger
	// Workers, when positive, replaces dedupe.workers from the config.
	Workers int
}

// Result collects the output of every stage of one run.
type Result struct {
	Analysis  domain.AnalysisResult
	Detection domain.DetectionResult
	Summary   domain.OrganizationSummary
}

// Runner executes the scan, detect and organize stages.
type Runner struct {
	cfg       *config.Config
	fsys      afero.Fs
	logger    *slog.Logger
	cache     *digestcache.Cache
	scanner   *scan.Scanner
	detector  *dedupe.Detector
	organizer *organizer.Organizer
}

// New builds a Runner from cfg. The caller must Close it.
func New(ctx context.Context, cfg *config.Config, opts Options) (*Runner, error) {
	if cfg == nil {
		return nil, failure.Wrap(failure.ErrConfiguration, "workflow", "init", "config is required", nil)
	}
	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	resolver, err := cfg.CategoryResolver()
	if err != nil {
		return nil, failure.Wrap(failure.ErrConfiguration, "workflow", "init", "category table", err)
	}

	r := &Runner{
		cfg:    cfg,
		fsys:   fsys,
		logger: logging.NewComponentLogger(logger, "workflow"),
	}

	if cfg.Dedupe.CacheEnabled {
		cache, err := digestcache.Open(ctx, cfg.Dedupe.CachePath, logger)
		if err != nil {
			logging.WarnWithContext(r.logger, "digest cache unavailable", "digest_cache_open_failed",
				logging.String(logging.FieldPath, cfg.Dedupe.CachePath),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "delete the cache file or disable dedupe.cache_enabled"),
				logging.String(logging.FieldImpact, "every candidate file is hashed from scratch"))
		} else {
			r.cache = cache
		}
	}

	workers := cfg.Dedupe.Workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}

	r.scanner = scan.New(fsys, scan.Options{
		Resolver:      resolver,
		Ignore:        cfg.Scan.Ignore,
		IncludeHidden: cfg.Scan.IncludeHidden,
		Logger:        logger,
	})
	detectorOpts := dedupe.Options{Workers: workers, Logger: logger}
	if r.cache != nil {
		detectorOpts.Cache = r.cache
	}
	r.detector = dedupe.New(fsys, detectorOpts)
	r.organizer = organizer.New(fsys, organizer.Options{Logger: logger, OnMoved: r.recordMove})
	return r, nil
}

// Close releases the digest cache.
func (r *Runner) Close() error {
	if r == nil || r.cache == nil {
		return nil
	}
	return r.cache.Close()
}

// Ignores reports whether a file called name is excluded from every pass.
func (r *Runner) Ignores(name string) bool {
	return r.scanner.Skips(name)
}

// Analyze scans root and detects duplicates without planning any moves.
func (r *Runner) Analyze(ctx context.Context, root string) (Result, error) {
	ctx, logger := r.begin(ctx, root)
	var result Result

	analysis, err := r.scanner.Scan(ctx, root)
	if err != nil {
		return result, err
	}
	result.Analysis = analysis

	detection, err := r.detect(ctx, analysis)
	if err != nil {
		return result, err
	}
	result.Detection = detection
	logger.Debug("analysis finished", logging.Int("groups", len(detection.Groups)))
	return result, nil
}

// Run performs a full pass over root. With dryRun set no file is moved and no
// folder is created; the summary lists the planned moves instead. Real runs
// take the folder lock before listing the folder and hold it until they return.
func (r *Runner) Run(ctx context.Context, root string, dryRun bool) (Result, error) {
	ctx, logger := r.begin(ctx, root)
	var result Result

	root, err := r.scanner.Root(root)
	if err != nil {
		return result, err
	}

	if !dryRun {
		lock, err := acquireLock(logger, r.cfg.Paths.StateDir, root)
		if err != nil {
			return result, err
		}
		if lock != nil {
			defer func() {
				if err := lock.Unlock(); err != nil {
					logger.Debug("release lock failed", logging.Error(err))
				}
			}()
		}
	}

	analysis, err := r.scanner.Scan(ctx, root)
	if err != nil {
		return result, err
	}
	result.Analysis = analysis

	detection, err := r.detect(ctx, analysis)
	if err != nil {
		return result, err
	}
	result.Detection = detection

	summary, err := r.organizer.Organize(ctx, analysis.Root, analysis.Entries, detection.Groups, dryRun)
	summary.DetectionFailures = detection.Failures
	result.Summary = summary
	if err != nil {
		return result, fmt.Errorf("organize %s: %w", analysis.Root, err)
	}
	counts := summary.Counts()
	logger.Info("run finished",
		logging.Bool("dry_run", dryRun),
		logging.Int("moved", counts.Moved+counts.WouldMove),
		logging.Int("skipped", counts.Skipped),
		logging.Int("failed", counts.Failed),
		logging.Duration("elapsed", summary.FinishedAt.Sub(summary.StartedAt)))
	return result, nil
}

func (r *Runner) begin(ctx context.Context, root string) (context.Context, *slog.Logger) {
	runID := uuid.NewString()
	ctx = logging.ContextWithRunID(ctx, runID)
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("run started", logging.String(logging.FieldPath, root))
	return ctx, logger
}

func (r *Runner) detect(ctx context.Context, analysis domain.AnalysisResult) (domain.DetectionResult, error) {
	if r.cache != nil {
		keep := make(map[string]struct{}, len(analysis.Entries))
		for _, e := range analysis.Entries {
			keep[e.Path] = struct{}{}
		}
		if removed, err := r.cache.Prune(ctx, analysis.Root, keep); err != nil {
			r.logger.Debug("digest cache prune failed", logging.Error(err))
		} else if removed > 0 {
			r.logger.Debug("pruned digest cache", logging.Int64("removed", removed))
		}
	}
	return r.detector.FindDuplicates(ctx, analysis.SupportedEntries())
}

func (r *Runner) recordMove(ctx context.Context, from, to string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Move(ctx, from, to); err != nil {
		r.logger.Debug("digest cache move failed",
			logging.String(logging.FieldPath, from),
			logging.Error(err))
	}
}
