package batch

import (
	"context"
	"fmt"
	"path/filepath"

	"batchren/internal/history"
	"batchren/internal/rename"
)

// UndoRequest selects the run to reverse. An empty RunID picks the newest
// undoable run recorded for Dir.
type UndoRequest struct {
	Dir      string
	RunID    string
	DryRun   bool
	Generate string
}

// Undo reverses a recorded run by feeding its inverted result map back as a
// mapping. The undo is itself recorded so it is not undone twice.
func (r *Runner) Undo(ctx context.Context, req UndoRequest) (*Result, *history.Run, error) {
	if r.store == nil {
		return nil, nil, configError(ErrHistoryDisabled)
	}

	target, err := r.undoTarget(ctx, req)
	if err != nil {
		return nil, nil, configError(err)
	}
	entries, err := r.store.Entries(ctx, target.ID)
	if err != nil {
		return nil, target, err
	}

	forward := rename.NewResultMap()
	for _, entry := range entries {
		if entry.Status == rename.StatusRenamed.String() && entry.Output != "" {
			forward.Set(entry.Output, entry.Input)
		}
	}
	if forward.Len() == 0 {
		return nil, target, configError(fmt.Errorf("run %s renamed nothing: %w", target.ID, ErrNotUndoable))
	}

	result, err := r.Run(ctx, Request{
		Dir:      target.Root,
		Pairs:    forward.Inverted().Entries(),
		Mkdir:    true,
		DryRun:   req.DryRun,
		Generate: req.Generate,
		UndoOf:   target.ID,
	})
	return result, target, err
}

func (r *Runner) undoTarget(ctx context.Context, req UndoRequest) (*history.Run, error) {
	if req.RunID == "" {
		dir := req.Dir
		if dir == "" {
			dir = "."
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("resolve working directory %q: %w", dir, err)
		}
		return r.store.LatestUndoable(ctx, abs)
	}

	run, err := r.store.Get(ctx, req.RunID)
	if err != nil {
		return nil, err
	}
	switch {
	case run.DryRun:
		return nil, fmt.Errorf("run %s was a dry run: %w", run.ID, ErrNotUndoable)
	case run.UndoOf != "":
		return nil, fmt.Errorf("run %s is itself an undo of %s: %w", run.ID, run.UndoOf, ErrNotUndoable)
	}
	undoneBy, undone, err := r.store.UndoneBy(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	if undone {
		return nil, fmt.Errorf("run %s was already undone by %s: %w", run.ID, undoneBy, ErrNotUndoable)
	}
	return run, nil
}
