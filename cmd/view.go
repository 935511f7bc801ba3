package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	m "autodoc.dev/pkg/autodoc/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "View previously generated processing reports",
		Long:  "View previously generated processing reports from a reports directory.",
		Args:  cobra.ExactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			return workflow.View(context.Background(), m.Path(viper.GetString(outputFlagName)))
		},
	}
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
