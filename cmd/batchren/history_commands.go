package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"batchren/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded batches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				runs, err := store.Runs(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, runsJSON(runs))
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No batches recorded")
					return nil
				}
				fmt.Fprintln(out, renderRuns(runs, shouldColorize(out)))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 = all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show the renames of a recorded batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				run, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				entries, err := store.Entries(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				if jsonOutput {
					view := runJSON(*run)
					view.Entries = entries
					return writeJSON(cmd, view)
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintf(out, "Run:       %s\n", run.ID)
				fmt.Fprintf(out, "Directory: %s\n", run.Root)
				fmt.Fprintf(out, "Source:    %s %s\n", run.SourceKind, run.SourceDetail)
				if run.Template != "" {
					fmt.Fprintf(out, "Template:  %s\n", run.Template)
				}
				fmt.Fprintf(out, "Started:   %s\n", run.StartedAt.Local().Format(timestampLayout))
				fmt.Fprintf(out, "Dry run:   %s\n", yesNo(run.DryRun))
				if run.UndoOf != "" {
					fmt.Fprintf(out, "Undo of:   %s\n", run.UndoOf)
				}
				if undoneBy, ok, err := store.UndoneBy(cmd.Context(), run.ID); err != nil {
					return err
				} else if ok {
					fmt.Fprintf(out, "Undone by: %s\n", undoneBy)
				}
				if len(entries) > 0 {
					fmt.Fprintln(out, renderEntries(entries, colorize))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

var errHistoryDisabled = errors.New("history is disabled; enable [history] in the config file")

func withHistory(ctx *commandContext, fn func(*history.Store) error) error {
	store, err := ctx.openHistory()
	if err != nil {
		return err
	}
	if store == nil {
		return errHistoryDisabled
	}
	defer store.Close()
	return fn(store)
}

type runView struct {
	ID           string          `json:"id"`
	Root         string          `json:"root"`
	SourceKind   string          `json:"source_kind"`
	SourceDetail string          `json:"source_detail,omitempty"`
	Template     string          `json:"template,omitempty"`
	DryRun       bool            `json:"dry_run"`
	HadError     bool            `json:"had_error"`
	Renamed      int             `json:"renamed"`
	Skipped      int             `json:"skipped"`
	Failed       int             `json:"failed"`
	UndoOf       string          `json:"undo_of,omitempty"`
	StartedAt    string          `json:"started_at"`
	FinishedAt   string          `json:"finished_at"`
	Entries      []history.Entry `json:"entries,omitempty"`
}

func runJSON(run history.Run) runView {
	return runView{
		ID:           run.ID,
		Root:         run.Root,
		SourceKind:   run.SourceKind,
		SourceDetail: run.SourceDetail,
		Template:     run.Template,
		DryRun:       run.DryRun,
		HadError:     run.HadError,
		Renamed:      run.Renamed,
		Skipped:      run.Skipped,
		Failed:       run.Failed,
		UndoOf:       run.UndoOf,
		StartedAt:    run.StartedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		FinishedAt:   run.FinishedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

func runsJSON(runs []history.Run) []runView {
	views := make([]runView, 0, len(runs))
	for _, run := range runs {
		views = append(views, runJSON(run))
	}
	return views
}
