package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"autodoc.dev/pkg/autodoc/internal/domain"
	m "autodoc.dev/pkg/autodoc/internal/model"
)

var runParallelFlag int
var runShardFlag string
var runDryRunFlag bool
var runMessageFlag string

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Update docstrings for changed files",
		Long:  runLongDescription,
		RunE: func(_ *cobra.Command, args []string) error {
			shardIndex, totalShards := parseShardFlag(runShardFlag)
			reportsPath := m.Path(viper.GetString(outputFlagName))

			summary, err := workflow.Run(context.Background(), domain.RunArgs{
				Paths:           parsePaths(args),
				Exclude:         viper.GetStringSlice(excludeConfigKey),
				Reports:         reportsPath,
				Threads:         viper.GetInt(runParallelConfigKey),
				ShardIndex:      shardIndex,
				TotalShardCount: totalShards,
				DryRun:          runDryRunFlag,
				CommitMessage:   viper.GetString(runCommitMessageKey),
			})
			if err != nil {
				return err
			}

			if summary.Failed > 0 {
				return fmt.Errorf("%d file(s) failed validation", summary.Failed)
			}

			return nil
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&runParallelFlag, runParallelFlagName, "p", viper.GetInt(runParallelConfigKey), "number of files processed in parallel")
	bindFlagToConfig(cmd.Flags().Lookup(runParallelFlagName), runParallelConfigKey)
	cmd.Flags().StringVarP(&runShardFlag, "shard", "s", "", "shard index and total shard count in the format INDEX/TOTAL (e.g., 0/3)")
	cmd.Flags().BoolVar(&runDryRunFlag, "dry-run", false, "process files but skip the final commit")
	cmd.Flags().StringVarP(&runMessageFlag, "message", "m", viper.GetString(runCommitMessageKey), "commit message for accepted updates")
	bindFlagToConfig(cmd.Flags().Lookup("message"), runCommitMessageKey)
}

func parseShardFlag(shard string) (int, int) {
	if shard == "" {
		return 0, 1
	}

	var index, total int

	_, err := fmt.Sscanf(shard, "%d/%d", &index, &total)
	if err != nil || total <= 0 || index < 0 || index >= total {
		return 0, 1
	}

	return index, total
}
