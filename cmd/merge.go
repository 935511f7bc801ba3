package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	m "autodoc.dev/pkg/autodoc/internal/model"
)

// mergeCmd represents the merge command.
var mergeCmd = newMergeCmd()

func newMergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge",
		Short: "Merge sharded reports into a single directory",
		Long:  "Merge reports from shard_* subdirectories into a single reports directory.",
		Args:  cobra.ExactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			return workflow.Merge(context.Background(), m.Path(viper.GetString(outputFlagName)))
		},
	}
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
