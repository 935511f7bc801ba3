package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	m "autodoc.dev/pkg/autodoc/internal/model"
)

// validateCmd represents the validate command.
var validateCmd = newValidateCmd()

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate BEFORE AFTER",
		Short: "Check that two file versions differ only in docstrings",
		Long: `Compare two versions of a Python file and report whether the change is
limited to docstrings. BEFORE is the original file, AFTER the edited one.
Exits non-zero when the structure changed or either version fails to parse.`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx := context.Background()

			before, err := fsAdapter.ReadFile(m.Path(args[0]))
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			after := m.Path(args[1])
			outcome := comparator.Validate(ctx, string(before), after)

			if err := ui.DisplayValidation(ctx, after, outcome); err != nil {
				return err
			}

			if !outcome.Passed {
				return fmt.Errorf("validation failed: %s", outcome.Status)
			}

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
