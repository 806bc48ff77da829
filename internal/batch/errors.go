package batch

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks every error raised before the first rename. Such
	// errors leave the filesystem untouched.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrNoSource reports that none of pattern, sort or mapping was selected.
	ErrNoSource = errors.New("one of --regex, --sort or --map is required")
	// ErrConflictingSources reports that more than one source was selected.
	ErrConflictingSources = errors.New("--regex, --sort and --map are mutually exclusive")
	// ErrHistoryDisabled reports an undo request while the run journal is off.
	ErrHistoryDisabled = errors.New("history is disabled")
	// ErrNotUndoable reports a run that cannot be reversed.
	ErrNotUndoable = errors.New("run cannot be undone")
)

func configError(err error) error {
	if err == nil || errors.Is(err, ErrConfiguration) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrConfiguration, err)
}
