// Package rename applies planned renames to the filesystem.
//
// Pairs are processed strictly in order. Unless overwriting is enabled a
// destination that already exists, including one produced earlier in the same
// batch, is adjusted until it is free. A failed rename is reported and the
// batch carries on with the next pair.
package rename

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"path/filepath"
	"strings"

	"batchren/internal/fsys"
	"batchren/internal/logging"
	"batchren/internal/pairing"
	"batchren/internal/template"
)

// CollisionStyle selects how an occupied destination is adjusted.
type CollisionStyle string

const (
	// CollisionPrefix prepends underscores to the base name: _out.txt, __out.txt.
	CollisionPrefix CollisionStyle = "prefix"
	// CollisionCounter inserts a counter before the extension: out (1).txt.
	CollisionCounter CollisionStyle = "counter"
)

// DefaultCollisionLimit bounds collision attempts when Options leaves it unset.
const DefaultCollisionLimit = 1024

// Options control a batch.
type Options struct {
	Overwrite      bool
	Mkdir          bool
	DryRun         bool
	RecordResults  bool
	Collision      CollisionStyle
	CollisionLimit int
}

// Executor renames pairs within one filesystem.
type Executor struct {
	fs     *fsys.FS
	opts   Options
	logger *slog.Logger
}

// New returns an executor. A nil logger discards diagnostics.
func New(fs *fsys.FS, opts Options, logger *slog.Logger) *Executor {
	if opts.Collision == "" {
		opts.Collision = CollisionPrefix
	}
	if opts.CollisionLimit <= 0 {
		opts.CollisionLimit = DefaultCollisionLimit
	}
	return &Executor{
		fs:     fs,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "rename"),
	}
}

// Execute processes pairs in order. Cancelling ctx stops the batch before the
// next pair; the rename in flight always completes.
func (e *Executor) Execute(ctx context.Context, pairs iter.Seq[pairing.Pair]) Report {
	logger := logging.WithContext(ctx, e.logger)
	report := Report{}
	if e.opts.RecordResults {
		report.Results = NewResultMap()
	}
	state := newOverlay(e.fs, e.opts.DryRun)

	for pair := range pairs {
		if err := ctx.Err(); err != nil {
			report.Stopped = err
			report.HadError = true
			logging.WarnWithContext(logger, "batch interrupted", "batch_interrupted",
				logging.String("next_input", pair.Input),
				logging.Error(err),
				logging.String(logging.FieldImpact, "remaining files were not renamed"),
			)
			break
		}
		outcome := e.apply(logger, state, pair)
		if outcome.Status == StatusFailed {
			report.HadError = true
		} else if report.Results != nil {
			report.Results.Set(outcome.Output, outcome.Input)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}
	return report
}

func (e *Executor) apply(logger *slog.Logger, state *overlay, pair pairing.Pair) Outcome {
	outcome := Outcome{Input: pair.Input, Requested: pair.Output}

	dst := pair.Output
	if !e.opts.Overwrite {
		free, err := e.freeDestination(state, dst)
		if err != nil {
			return e.fail(logger, outcome, err)
		}
		dst = free
	}
	outcome.Output = dst

	if e.opts.DryRun {
		state.move(pair.Input, dst)
		outcome.Status = StatusSkipped
		logger.Debug("planned rename",
			logging.String("input", pair.Input),
			logging.String("output", dst),
		)
		return outcome
	}

	if e.opts.Mkdir {
		if parent := filepath.Dir(dst); parent != "." {
			if err := e.fs.MkdirAll(parent); err != nil {
				logger.Debug("create parent directory failed",
					logging.String("dir", parent),
					logging.Error(err),
				)
			}
		}
	}

	if err := e.fs.Move(pair.Input, dst, e.opts.Overwrite); err != nil {
		return e.fail(logger, outcome, err)
	}
	outcome.Status = StatusRenamed
	logger.Info("renamed",
		logging.String("input", pair.Input),
		logging.String("output", dst),
	)
	return outcome
}

func (e *Executor) fail(logger *slog.Logger, outcome Outcome, err error) Outcome {
	outcome.Status = StatusFailed
	outcome.Err = &Error{Input: outcome.Input, Output: outcome.Output, Err: err}
	logging.ErrorWithContext(logger, "rename failed", "rename_failed",
		logging.String("input", outcome.Input),
		logging.String("output", outcome.Output),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check that the input exists and the destination directory is writable"),
	)
	return outcome
}

// freeDestination returns dst, or the first adjusted variant of it that does
// not exist.
func (e *Executor) freeDestination(state *overlay, dst string) (string, error) {
	taken, err := state.exists(dst)
	if err != nil {
		return "", err
	}
	if !taken {
		return dst, nil
	}
	for attempt := 1; attempt <= e.opts.CollisionLimit; attempt++ {
		candidate := adjust(dst, e.opts.Collision, attempt)
		taken, err := state.exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s after %d attempts: %w", dst, e.opts.CollisionLimit, ErrCollisionLimit)
}

func adjust(dst string, style CollisionStyle, attempt int) string {
	dir, base := filepath.Split(dst)
	switch style {
	case CollisionCounter:
		ext := template.Ext(base)
		stem := strings.TrimSuffix(base, ext)
		return dir + fmt.Sprintf("%s (%d)%s", stem, attempt, ext)
	default:
		return dir + strings.Repeat("_", attempt) + base
	}
}

// overlay answers existence questions. In a dry run it layers the renames
// already planned on top of the untouched filesystem.
type overlay struct {
	fs       *fsys.FS
	simulate bool
	claimed  map[string]struct{}
	vacated  map[string]struct{}
}

func newOverlay(fs *fsys.FS, simulate bool) *overlay {
	return &overlay{
		fs:       fs,
		simulate: simulate,
		claimed:  make(map[string]struct{}),
		vacated:  make(map[string]struct{}),
	}
}

func (o *overlay) exists(p string) (bool, error) {
	if o.simulate {
		key := o.fs.Resolve(p)
		if _, ok := o.claimed[key]; ok {
			return true, nil
		}
		if _, ok := o.vacated[key]; ok {
			return false, nil
		}
	}
	return o.fs.Exists(p)
}

func (o *overlay) move(from, to string) {
	src, dst := o.fs.Resolve(from), o.fs.Resolve(to)
	delete(o.claimed, src)
	o.vacated[src] = struct{}{}
	delete(o.vacated, dst)
	o.claimed[dst] = struct{}{}
}
