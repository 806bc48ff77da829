package rename

import (
	"errors"
	"fmt"
)

// ErrCollisionLimit reports that no free destination was found within the
// configured number of collision attempts.
var ErrCollisionLimit = errors.New("collision limit reached")

// Status is the result of processing one pair.
type Status int

const (
	StatusRenamed Status = iota + 1
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusRenamed:
		return "renamed"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Error is a per-file rename failure.
type Error struct {
	Input  string
	Output string
	Err    error
}

func (e *Error) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("rename %s: %v", e.Input, e.Err)
	}
	return fmt.Sprintf("rename %s -> %s: %v", e.Input, e.Output, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Outcome records what happened to one pair. Requested is the destination the
// template produced and Output the one actually used after collision avoidance.
type Outcome struct {
	Input     string
	Requested string
	Output    string
	Status    Status
	Err       error
}

// Adjusted reports whether collision avoidance changed the destination.
func (o Outcome) Adjusted() bool {
	return o.Output != "" && o.Output != o.Requested
}

// Report summarises a batch.
type Report struct {
	Outcomes []Outcome
	// Results maps destination to input for every renamed (or, in a dry run,
	// every planned) pair. Nil unless results were requested.
	Results *ResultMap
	// HadError is set when at least one pair failed or the batch was stopped.
	HadError bool
	// Stopped holds the context error when the batch ended early.
	Stopped error
}

// Counts tallies outcomes by status.
func (r Report) Counts() (renamed, skipped, failed int) {
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusRenamed:
			renamed++
		case StatusSkipped:
			skipped++
		case StatusFailed:
			failed++
		}
	}
	return renamed, skipped, failed
}
