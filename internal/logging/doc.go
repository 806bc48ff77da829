// Package logging assembles the structured slog loggers used by batchren.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context helpers so every line written during a batch
// carries the run identifier. Console output is meant for people watching a
// terminal: short timestamps, a bracketed level and key=value pairs. JSON
// output is meant for machines.
//
// Logs go to stderr by default so stdout stays free for result tables.
package logging
