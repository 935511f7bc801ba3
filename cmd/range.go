package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rangeStatFlag bool

// rangeCmd represents the range command.
var rangeCmd = newRangeCmd()

func newRangeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "range",
		Short: "Show the resolved commit range and the files it touches",
		Long: `Resolve the commit range the run command would process, using the same
fallback chain, and list the Python files changed inside it.`,
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()

			if rangeStatFlag {
				rng, stats, err := workflow.DiffStats(ctx)
				if err != nil {
					return err
				}

				return ui.DisplayDiffStats(ctx, rng, stats)
			}

			rng, files, err := workflow.ChangedFiles(ctx)
			if err != nil {
				return err
			}

			ui.DisplayRange(ctx, rng, len(files))

			for _, file := range files {
				cmd.Println(file)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&rangeStatFlag, "stat", false, "show per-file diff statistics instead of file names")

	return cmd
}

func init() {
	rootCmd.AddCommand(rangeCmd)
}
