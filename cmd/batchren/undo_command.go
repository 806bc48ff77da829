package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"batchren/internal/batch"
)

func newUndoCommand(ctx *commandContext) *cobra.Command {
	var (
		dir      string
		test     bool
		print    bool
		generate string
	)

	cmd := &cobra.Command{
		Use:   "undo [RUN_ID]",
		Short: "Reverse a recorded batch",
		Long: `Reverse a recorded batch by renaming every output back to its input.

Without RUN_ID the newest batch run in the working directory that has not been
undone yet is reversed. RUN_ID may be shortened to any unique prefix.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := batch.UndoRequest{Dir: dir, DryRun: test, Generate: generate}
			if len(args) == 1 {
				req.RunID = args[0]
			}
			return ctx.withRunner(cmd, true, func(runner *batch.Runner) error {
				result, target, err := runner.Undo(cmd.Context(), req)
				if err != nil {
					return err
				}
				if print || test {
					fmt.Fprintf(cmd.OutOrStdout(), "Undoing run %s in %s\n", shortID(target.ID), target.Root)
				}
				return reportResult(cmd, result, print)
			})
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Working directory used to find the latest batch")
	cmd.Flags().BoolVarP(&test, "test", "t", false, "Dry run: show what would be restored")
	cmd.Flags().BoolVarP(&print, "print", "p", false, "Print a table of the renames")
	cmd.Flags().StringVarP(&generate, "generate", "g", "", "Write the result map of the undo to FILE")
	return cmd
}
