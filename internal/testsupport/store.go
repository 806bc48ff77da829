package testsupport

import (
	"context"
	"testing"
	"time"

	"batchren/internal/config"
	"batchren/internal/history"
)

// MustOpenHistory opens the history store for tests and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// RecordRun stores a real run in root with one renamed entry per
// (input, output) pair and returns it.
func RecordRun(t testing.TB, store *history.Store, root string, started time.Time, pairs ...[2]string) *history.Run {
	t.Helper()

	run := &history.Run{
		Root:       root,
		SourceKind: "sort",
		Renamed:    len(pairs),
		StartedAt:  started,
		FinishedAt: started,
	}
	entries := make([]history.Entry, len(pairs))
	for i, p := range pairs {
		entries[i] = history.Entry{Input: p[0], Requested: p[1], Output: p[1], Status: "renamed"}
	}
	if err := store.Record(context.Background(), run, entries); err != nil {
		t.Fatalf("store.Record: %v", err)
	}
	return run
}
