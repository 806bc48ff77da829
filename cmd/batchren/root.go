package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"batchren/internal/batch"
)

// errPartialFailure is returned when at least one rename failed. The failures
// were already logged, so main exits 1 without printing it again.
var errPartialFailure = errors.New("one or more renames failed")

type renameFlags struct {
	regex     string
	sort      string
	mapping   string
	depth     int
	maxDepth  int
	output    string
	extension bool
	overwrite bool
	mkdir     bool
	test      bool
	generate  string
	print     bool
	dir       string
	collision string
}

func newRootCommand() *cobra.Command {
	var (
		configFlag    string
		logLevelFlag  string
		logFormatFlag string
		noHistoryFlag bool
		flags         renameFlags
	)

	ctx := newCommandContext(&configFlag, &logLevelFlag, &logFormatFlag, &noHistoryFlag)

	rootCmd := &cobra.Command{
		Use:   "batchren (-r PATTERN | -s asc|desc | -m FILE) [flags]",
		Short: "Rename files in bulk",
		Long: `Rename files in bulk.

Inputs are chosen by exactly one of:
  -r/--regex PATTERN   files whose path relative to the working directory matches
  -s/--sort asc|desc   every file in the working directory, sorted by name
  -m/--map FILE        a JSON or YAML object of {"new name": "old name"}

The output template (-o) uses {} for the next capture group (or the sort index),
{N} for group N, {name} for a named group, and modifiers such as {1:upper} or {:03}.`,
		Example: `  batchren -s asc -o "img-{:03}" -e
  batchren -r '(\w+)-(\d+)\.mkv' -o '{1}/E{2:02}.mkv' -k
  batchren -m renames.json -t -p`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			if _, err := ctx.ensureConfig(); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.regex == "" && flags.sort == "" && flags.mapping == "" {
				_ = cmd.Usage()
				return batch.ErrNoSource
			}
			return runRename(cmd, ctx, flags)
		},
	}

	persistent := rootCmd.PersistentFlags()
	persistent.StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	persistent.StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")
	persistent.StringVar(&logFormatFlag, "log-format", "", "Log format (console, json)")
	persistent.BoolVar(&noHistoryFlag, "no-history", false, "Do not record this run in the history journal")

	fs := rootCmd.Flags()
	fs.StringVarP(&flags.regex, "regex", "r", "", "Select files whose relative path matches PATTERN")
	fs.StringVarP(&flags.sort, "sort", "s", "", "Select every file in the directory sorted asc or desc")
	fs.StringVarP(&flags.mapping, "map", "m", "", "Read {\"new\": \"old\"} pairs from a JSON or YAML file")
	fs.IntVar(&flags.depth, "depth", 0, "Minimum directory depth searched by --regex (default: separators in PATTERN + 1)")
	fs.IntVar(&flags.maxDepth, "max-depth", 0, "Maximum directory depth searched by --regex (0 = unlimited)")
	fs.StringVarP(&flags.output, "output", "o", "", "Output template")
	fs.BoolVarP(&flags.extension, "extension", "e", false, "Keep the input extension when the output has none")
	fs.BoolVarP(&flags.overwrite, "overwrite", "w", false, "Overwrite existing destinations instead of renaming around them")
	fs.BoolVarP(&flags.mkdir, "mkdir", "k", false, "Create missing destination directories")
	fs.BoolVarP(&flags.test, "test", "t", false, "Dry run: show what would happen without renaming")
	fs.StringVarP(&flags.generate, "generate", "g", "", "Write the {\"new\": \"old\"} result map to FILE")
	fs.BoolVarP(&flags.print, "print", "p", false, "Print a table of the renames")
	fs.StringVarP(&flags.dir, "dir", "d", "", "Working directory (default: current directory)")
	fs.StringVar(&flags.collision, "collision", "", "Collision style: prefix (_name) or counter (name (1))")
	rootCmd.MarkFlagsMutuallyExclusive("regex", "sort", "map")

	rootCmd.AddCommand(newUndoCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

func runRename(cmd *cobra.Command, ctx *commandContext, flags renameFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	req := batch.Request{
		Dir:       flags.dir,
		Pattern:   flags.regex,
		Depth:     flags.depth,
		MaxDepth:  flags.maxDepth,
		Sort:      flags.sort,
		Mapping:   flags.mapping,
		Template:  flags.output,
		Extension: flagOrDefault(cmd, "extension", flags.extension, cfg.Rename.Extension),
		Overwrite: flagOrDefault(cmd, "overwrite", flags.overwrite, cfg.Rename.Overwrite),
		Mkdir:     flagOrDefault(cmd, "mkdir", flags.mkdir, cfg.Rename.Mkdir),
		DryRun:    flags.test,
		Generate:  flags.generate,
		Collision: flags.collision,
	}

	return ctx.withRunner(cmd, false, func(runner *batch.Runner) error {
		result, err := runner.Run(cmd.Context(), req)
		if err != nil {
			return err
		}
		return reportResult(cmd, result, flags.print)
	})
}

func flagOrDefault(cmd *cobra.Command, name string, value, fallback bool) bool {
	if cmd.Flags().Changed(name) {
		return value
	}
	return fallback
}

func reportResult(cmd *cobra.Command, result *batch.Result, print bool) error {
	if print {
		out := cmd.OutOrStdout()
		colorize := shouldColorize(out)
		fmt.Fprintln(out, renderOutcomes(result.Report.Outcomes, colorize))
		fmt.Fprintln(out, renderSummary(result, colorize))
	}
	if result.Report.Stopped != nil {
		return result.Report.Stopped
	}
	if result.Report.HadError {
		return errPartialFailure
	}
	return nil
}
