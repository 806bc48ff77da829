package history_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"batchren/internal/history"
	"batchren/internal/testsupport"
)

func TestRecordRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	run := &history.Run{
		Root:         "/work",
		SourceKind:   "pattern",
		SourceDetail: `(\w+)\.txt`,
		Template:     "{1:upper}",
		HadError:     true,
		Renamed:      1,
		Failed:       1,
		StartedAt:    started,
		FinishedAt:   started.Add(time.Second),
	}
	entries := []history.Entry{
		{Input: "a.txt", Requested: "A", Output: "A.txt", Status: "renamed"},
		{Input: "b.txt", Requested: "B", Status: "failed", Error: "permission denied"},
	}
	if err := store.Record(ctx, run, entries); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if run.ID == "" {
		t.Fatal("expected run ID to be assigned")
	}

	fetched, err := store.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(fetched, run) {
		t.Fatalf("fetched run = %+v, want %+v", fetched, run)
	}

	got, err := store.Entries(ctx, run.ID)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	entries[0].Seq, entries[1].Seq = 0, 1
	if !reflect.DeepEqual(got, entries) {
		t.Fatalf("entries = %+v, want %+v", got, entries)
	}

	byPrefix, err := store.Get(ctx, run.ID[:8])
	if err != nil || byPrefix.ID != run.ID {
		t.Fatalf("Get by prefix = %+v, %v", byPrefix, err)
	}
	if _, err := store.Get(ctx, "not-a-run"); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRunsNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first := testsupport.RecordRun(t, store, "/a", base, [2]string{"x", "y"})
	second := testsupport.RecordRun(t, store, "/a", base.Add(500*time.Millisecond), [2]string{"y", "z"})
	third := testsupport.RecordRun(t, store, "/b", base.Add(time.Second), [2]string{"p", "q"})

	runs, err := store.Runs(context.Background(), 0)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	var ids []string
	for _, r := range runs {
		ids = append(ids, r.ID)
	}
	if want := []string{third.ID, second.ID, first.ID}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("run order = %v, want %v", ids, want)
	}

	limited, err := store.Runs(context.Background(), 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("Runs(1) = %d runs, %v", len(limited), err)
	}
}

func TestLatestUndoableSkipsUndoneAndDryRuns(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if _, err := store.LatestUndoable(ctx, "/work"); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty history, got %v", err)
	}

	older := testsupport.RecordRun(t, store, "/work", base, [2]string{"a", "b"})
	newer := testsupport.RecordRun(t, store, "/work", base.Add(time.Minute), [2]string{"c", "d"})
	testsupport.RecordRun(t, store, "/elsewhere", base.Add(2*time.Minute), [2]string{"e", "f"})
	dry := &history.Run{Root: "/work", SourceKind: "sort", DryRun: true, Skipped: 1, StartedAt: base.Add(3 * time.Minute)}
	if err := store.Record(ctx, dry, nil); err != nil {
		t.Fatalf("Record dry run: %v", err)
	}

	latest, err := store.LatestUndoable(ctx, "/work")
	if err != nil || latest.ID != newer.ID {
		t.Fatalf("LatestUndoable = %+v, %v; want %s", latest, err, newer.ID)
	}

	undo := &history.Run{Root: "/work", SourceKind: "mapping", Renamed: 1, UndoOf: newer.ID, StartedAt: base.Add(4 * time.Minute)}
	if err := store.Record(ctx, undo, nil); err != nil {
		t.Fatalf("Record undo: %v", err)
	}
	if by, ok, err := store.UndoneBy(ctx, newer.ID); err != nil || !ok || by != undo.ID {
		t.Fatalf("UndoneBy = %q, %v, %v", by, ok, err)
	}

	latest, err = store.LatestUndoable(ctx, "/work")
	if err != nil || latest.ID != older.ID {
		t.Fatalf("LatestUndoable after undo = %+v, %v; want %s", latest, err, older.ID)
	}
}

func TestOpenReusesExistingDatabase(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	run := testsupport.RecordRun(t, store, "/work", time.Now(), [2]string{"a", "b"})
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := testsupport.MustOpenHistory(t, cfg)
	if _, err := reopened.Get(context.Background(), run.ID); err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
}
