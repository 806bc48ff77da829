// Package batch runs one rename batch end to end: it resolves the source,
// plans the pairs, applies them, writes the requested result map and journals
// the run.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"batchren/internal/config"
	"batchren/internal/dirlock"
	"batchren/internal/fsys"
	"batchren/internal/history"
	"batchren/internal/logging"
	"batchren/internal/pairing"
	"batchren/internal/rename"
	"batchren/internal/source"
	"batchren/internal/template"
)

// Request describes a batch. Exactly one of Pattern, Sort, Mapping or Pairs
// selects the inputs.
type Request struct {
	// Dir is the working directory. Empty means the process working directory.
	Dir string

	Pattern  string
	Depth    int
	MaxDepth int
	Sort     string
	Mapping  string
	Pairs    []source.Entry

	Template  string
	Extension bool
	Overwrite bool
	Mkdir     bool
	DryRun    bool
	// Generate is where the result map is written, relative to Dir.
	Generate string

	Collision      string
	CollisionLimit int

	// UndoOf is recorded in the history when the batch reverses another run.
	UndoOf string
}

// Result describes a finished batch.
type Result struct {
	RunID      string
	Root       string
	Source     *source.Source
	Template   string
	Report     rename.Report
	ResultPath string
	// Recorded is false when history is disabled or journaling failed.
	Recorded bool
}

// Runner executes batches.
type Runner struct {
	cfg     *config.Config
	store   *history.Store
	logger  *slog.Logger
	lockDir string
}

// NewRunner returns a runner. store may be nil to skip journaling.
func NewRunner(cfg *config.Config, store *history.Store, logger *slog.Logger) *Runner {
	r := &Runner{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "batch"),
	}
	if cfg != nil && cfg.History.Enabled {
		r.lockDir = cfg.History.LockDir
	}
	return r
}

// Run executes req. Configuration problems are returned as errors wrapping
// ErrConfiguration before anything is renamed. Per-file failures are reported
// in Result.Report and do not produce an error.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	root, err := fsys.OS(req.Dir)
	if err != nil {
		return nil, configError(err)
	}
	src, err := r.resolveSource(root, req)
	if err != nil {
		return nil, configError(err)
	}
	formatter, err := r.resolveTemplate(src, req.Template)
	if err != nil {
		return nil, configError(err)
	}
	opts, err := r.options(req)
	if err != nil {
		return nil, configError(err)
	}

	runID := history.NewRunID()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, r.logger)

	if !req.DryRun && r.lockDir != "" {
		lock, err := dirlock.Acquire(r.lockDir, root.Root())
		if err != nil {
			return nil, configError(err)
		}
		defer func() {
			if err := lock.Release(); err != nil {
				logging.WarnWithContext(logger, "release directory lock failed", "lock_release_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "the next batch in this directory may report it as busy"),
				)
			}
		}()
	}

	plan, err := pairing.New(src, root, formatter, req.Extension)
	if err != nil {
		return nil, configError(err)
	}

	result := &Result{
		RunID:  runID,
		Root:   root.Root(),
		Source: src,
	}
	if formatter != nil {
		result.Template = formatter.String()
	}

	logger.Info("batch started",
		logging.String("root", root.Root()),
		logging.String("source", src.Kind.String()),
		logging.Int("pairs", plan.Len()),
		logging.Bool("dry_run", req.DryRun),
	)
	started := time.Now()
	result.Report = rename.New(root, opts, r.logger).Execute(ctx, plan.All())
	finished := time.Now()

	renamed, skipped, failed := result.Report.Counts()
	logger.Info("batch finished",
		logging.Int("renamed", renamed),
		logging.Int("skipped", skipped),
		logging.Int("failed", failed),
		logging.Bool("had_error", result.Report.HadError),
	)

	result.Recorded = r.record(ctx, logger, req, result, started, finished)

	if req.Generate != "" {
		result.ResultPath = root.Resolve(req.Generate)
		if err := result.Report.Results.WriteFile(result.ResultPath); err != nil {
			return result, err
		}
		logger.Info("result map written", logging.String("path", result.ResultPath))
	}
	return result, nil
}

func (r *Runner) resolveSource(root *fsys.FS, req Request) (*source.Source, error) {
	selected := 0
	for _, set := range []bool{req.Pattern != "", req.Sort != "", req.Mapping != "", req.Pairs != nil} {
		if set {
			selected++
		}
	}
	switch {
	case selected == 0:
		return nil, ErrNoSource
	case selected > 1:
		return nil, ErrConflictingSources
	}

	switch {
	case req.Pattern != "":
		return source.FromPattern(req.Pattern, req.Depth, req.MaxDepth)
	case req.Sort != "":
		return source.FromSort(req.Sort)
	case req.Mapping != "":
		return source.FromMapping(root.Resolve(req.Mapping))
	default:
		return source.FromPairs(req.Pairs), nil
	}
}

func (r *Runner) resolveTemplate(src *source.Source, text string) (*template.Formatter, error) {
	if src.Kind == source.KindMapping {
		if text != "" {
			logging.WarnWithContext(r.logger, "output template ignored for mapping source", "template_ignored",
				logging.String("template", text),
				logging.String(logging.FieldImpact, "mapping entries are renamed literally"),
			)
		}
		return nil, nil
	}
	scope := pairing.Scope(src)
	if text == "" {
		return template.Default(scope), nil
	}
	return template.Parse(text, scope)
}

func (r *Runner) options(req Request) (rename.Options, error) {
	style := req.Collision
	limit := req.CollisionLimit
	if r.cfg != nil {
		if style == "" {
			style = r.cfg.Rename.Collision
		}
		if limit == 0 {
			limit = r.cfg.Rename.CollisionLimit
		}
	}
	switch style {
	case "", config.CollisionPrefix:
		style = string(rename.CollisionPrefix)
	case config.CollisionCounter:
	default:
		return rename.Options{}, fmt.Errorf("unknown collision style %q: expected %s or %s", style, config.CollisionPrefix, config.CollisionCounter)
	}
	if limit < 0 {
		return rename.Options{}, fmt.Errorf("collision limit must be positive, got %d", limit)
	}
	return rename.Options{
		Overwrite:      req.Overwrite,
		Mkdir:          req.Mkdir,
		DryRun:         req.DryRun,
		RecordResults:  true,
		Collision:      rename.CollisionStyle(style),
		CollisionLimit: limit,
	}, nil
}

func (r *Runner) record(ctx context.Context, logger *slog.Logger, req Request, result *Result, started, finished time.Time) bool {
	if r.store == nil {
		return false
	}
	renamed, skipped, failed := result.Report.Counts()
	run := &history.Run{
		ID:           result.RunID,
		Root:         result.Root,
		SourceKind:   result.Source.Kind.String(),
		SourceDetail: sourceDetail(req, result.Root),
		Template:     result.Template,
		DryRun:       req.DryRun,
		HadError:     result.Report.HadError,
		Renamed:      renamed,
		Skipped:      skipped,
		Failed:       failed,
		UndoOf:       req.UndoOf,
		StartedAt:    started,
		FinishedAt:   finished,
	}
	entries := make([]history.Entry, len(result.Report.Outcomes))
	for i, o := range result.Report.Outcomes {
		entries[i] = history.Entry{
			Input:     o.Input,
			Requested: o.Requested,
			Output:    o.Output,
			Status:    o.Status.String(),
		}
		if o.Err != nil {
			entries[i].Error = o.Err.Error()
		}
	}
	// The renames already happened; a journal failure only loses undo.
	if err := r.store.Record(context.WithoutCancel(ctx), run, entries); err != nil {
		logging.WarnWithContext(logger, "record run history failed", "history_record_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check history.path in the config file"),
			logging.String(logging.FieldImpact, "this batch cannot be undone"),
		)
		return false
	}
	return true
}

func sourceDetail(req Request, root string) string {
	switch {
	case req.Pattern != "":
		return req.Pattern
	case req.Sort != "":
		return req.Sort
	case req.Mapping != "":
		if filepath.IsAbs(req.Mapping) {
			return req.Mapping
		}
		return filepath.Join(root, req.Mapping)
	case req.UndoOf != "":
		return "undo " + req.UndoOf
	default:
		return ""
	}
}
