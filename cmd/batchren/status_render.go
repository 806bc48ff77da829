package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"

	"batchren/internal/batch"
	"batchren/internal/history"
	"batchren/internal/rename"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

const timestampLayout = "2006-01-02 15:04:05"

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func statusColor(status string) string {
	switch status {
	case rename.StatusRenamed.String():
		return ansiGreen
	case rename.StatusSkipped.String():
		return ansiYellow
	case rename.StatusFailed.String():
		return ansiRed
	default:
		return ""
	}
}

func colorStatus(status string, colorize bool) string {
	if !colorize {
		return status
	}
	if color := statusColor(status); color != "" {
		return color + status + ansiReset
	}
	return status
}

func renderOutcomes(outcomes []rename.Outcome, colorize bool) string {
	rows := make([][]string, 0, len(outcomes))
	for i, o := range outcomes {
		output := o.Output
		if o.Adjusted() {
			output = fmt.Sprintf("%s (wanted %s)", o.Output, o.Requested)
		}
		detail := ""
		if o.Err != nil {
			var renameErr *rename.Error
			if errors.As(o.Err, &renameErr) {
				detail = renameErr.Err.Error()
			} else {
				detail = o.Err.Error()
			}
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			o.Input,
			output,
			colorStatus(o.Status.String(), colorize),
			detail,
		})
	}
	return renderTable(
		[]string{"#", "Input", "Output", "Status", "Error"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
		colorize,
	)
}

func renderSummary(result *batch.Result, colorize bool) string {
	renamed, skipped, failed := result.Report.Counts()
	var line string
	switch {
	case skipped > 0 && renamed == 0 && failed == 0:
		line = fmt.Sprintf("Dry run: %d rename(s) planned", skipped)
	default:
		line = fmt.Sprintf("Renamed %d file(s), %d failed", renamed, failed)
	}
	if result.Report.Stopped != nil {
		line += " (interrupted)"
	}
	if result.Recorded && skipped == 0 {
		line += fmt.Sprintf("; undo with `batchren undo %s`", shortID(result.RunID))
	}
	if colorize {
		color := ansiGreen
		if result.Report.HadError {
			color = ansiRed
		}
		return color + line + ansiReset
	}
	return line
}

func renderRuns(runs []history.Run, colorize bool) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		kind := run.SourceKind
		if run.UndoOf != "" {
			kind = "undo"
		}
		rows = append(rows, []string{
			shortID(run.ID),
			run.StartedAt.Local().Format(timestampLayout),
			kind,
			run.SourceDetail,
			run.Root,
			strconv.Itoa(run.Renamed + run.Skipped),
			strconv.Itoa(run.Failed),
			yesNo(run.DryRun),
		})
	}
	return renderTable(
		[]string{"ID", "Started", "Source", "Detail", "Directory", "Files", "Failed", "Dry Run"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
		colorize,
	)
}

func renderEntries(entries []history.Entry, colorize bool) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.Itoa(e.Seq + 1),
			e.Input,
			e.Output,
			colorStatus(e.Status, colorize),
			e.Error,
		})
	}
	return renderTable(
		[]string{"#", "Input", "Output", "Status", "Error"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
		colorize,
	)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
