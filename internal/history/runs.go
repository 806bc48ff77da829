package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound reports that no run matched.
	ErrNotFound = errors.New("run not found")
	// ErrAmbiguous reports that a run ID prefix matched more than one run.
	ErrAmbiguous = errors.New("run id prefix is ambiguous")
)

// Run is one recorded batch.
type Run struct {
	ID           string
	Root         string
	SourceKind   string
	SourceDetail string
	Template     string
	DryRun       bool
	HadError     bool
	Renamed      int
	Skipped      int
	Failed       int
	// UndoOf names the run this one reversed.
	UndoOf     string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Entry is one pair of a run in processing order.
type Entry struct {
	Seq       int    `json:"seq"`
	Input     string `json:"input"`
	Requested string `json:"requested"`
	Output    string `json:"output,omitempty"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = "id, root, source_kind, source_detail, template, dry_run, had_error, renamed, skipped, failed, undo_of, started_at, finished_at"

// Record stores run and its entries in one transaction. A missing ID is
// filled with a new one.
func (s *Store) Record(ctx context.Context, run *Run, entries []Entry) error {
	ctx = ensureContext(ctx)
	if run.ID == "" {
		run.ID = NewRunID()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin record tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		_, err = tx.ExecContext(ctx,
			`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			run.Root,
			run.SourceKind,
			nullableString(run.SourceDetail),
			nullableString(run.Template),
			boolToInt(run.DryRun),
			boolToInt(run.HadError),
			run.Renamed,
			run.Skipped,
			run.Failed,
			nullableString(run.UndoOf),
			run.StartedAt.UTC().Format(timeLayout),
			run.FinishedAt.UTC().Format(timeLayout),
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO entries (run_id, seq, input, requested, output, status, error_message) VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare entry insert: %w", err)
		}
		defer stmt.Close()
		for i, entry := range entries {
			if _, err := stmt.ExecContext(ctx,
				run.ID,
				i,
				entry.Input,
				entry.Requested,
				nullableString(entry.Output),
				entry.Status,
				nullableString(entry.Error),
			); err != nil {
				return fmt.Errorf("insert entry %d: %w", i, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit run: %w", err)
		}
		return nil
	})
}

// Runs returns the most recent runs first. limit <= 0 returns all of them.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Get returns the run whose ID is id or starts with it.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	ctx = ensureContext(ctx)
	if id == "" {
		return nil, fmt.Errorf("empty run id: %w", ErrNotFound)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR substr(id, 1, ?) = ? LIMIT 2`,
		id, len(id), id)
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	defer rows.Close()

	var found []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%s: %w", id, ErrAmbiguous)
	}
}

// LatestUndoable returns the newest real run in root that is neither an undo
// nor already undone.
func (s *Store) LatestUndoable(ctx context.Context, root string) (*Run, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs
         WHERE root = ? AND dry_run = 0 AND undo_of IS NULL AND renamed > 0
           AND id NOT IN (SELECT undo_of FROM runs WHERE undo_of IS NOT NULL AND dry_run = 0)
         ORDER BY started_at DESC, rowid DESC LIMIT 1`, root)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no undoable run for %s: %w", root, ErrNotFound)
	}
	return run, err
}

// UndoneBy returns the ID of the real run that undid id, if any.
func (s *Store) UndoneBy(ctx context.Context, id string) (string, bool, error) {
	ctx = ensureContext(ctx)
	var undoID string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM runs WHERE undo_of = ? AND dry_run = 0 ORDER BY started_at DESC LIMIT 1`, id,
	).Scan(&undoID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query undo run: %w", err)
	}
	return undoID, true, nil
}

// Entries returns the pairs of run id in processing order.
func (s *Store) Entries(ctx context.Context, id string) ([]Entry, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, input, requested, output, status, error_message FROM entries WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry  Entry
			output sql.NullString
			errMsg sql.NullString
		)
		if err := rows.Scan(&entry.Seq, &entry.Input, &entry.Requested, &output, &entry.Status, &errMsg); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entry.Output = output.String
		entry.Error = errMsg.String
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run        Run
		detail     sql.NullString
		template   sql.NullString
		dryRun     int
		hadError   int
		undoOf     sql.NullString
		startedRaw string
		finishRaw  string
	)
	if err := scanner.Scan(
		&run.ID,
		&run.Root,
		&run.SourceKind,
		&detail,
		&template,
		&dryRun,
		&hadError,
		&run.Renamed,
		&run.Skipped,
		&run.Failed,
		&undoOf,
		&startedRaw,
		&finishRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.SourceDetail = detail.String
	run.Template = template.String
	run.DryRun = dryRun != 0
	run.HadError = hadError != 0
	run.UndoOf = undoOf.String
	var err error
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedRaw); err != nil {
		return nil, fmt.Errorf("parse started_at %q: %w", startedRaw, err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finishRaw); err != nil {
		return nil, fmt.Errorf("parse finished_at %q: %w", finishRaw, err)
	}
	return &run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
