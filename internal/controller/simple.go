package controller

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "autodoc.dev/pkg/autodoc/internal/model"
)

// SimpleUI implements UI using cobra Command's Println. It is the
// non-interactive fallback for CI logs and piped output.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context) error {
	return ctx.Err()
}

// Close finalizes the UI.
func (s *SimpleUI) Close(_ context.Context) {}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(_ context.Context) {}

// DisplayRange prints the resolved commit window.
func (s *SimpleUI) DisplayRange(ctx context.Context, rng m.DiffRange, fileCount int) {
	if ctx.Err() != nil {
		return
	}

	if !rng.HasDiff() {
		s.printf("diff range %s..%s: nothing to process\n", shortSHA(rng.From), rng.To)
		return
	}

	s.printf("diff range %s..%s: %d file(s) to process\n", shortSHA(rng.From), rng.To, fileCount)
}

// DisplayFileStart announces that a file is being processed.
func (s *SimpleUI) DisplayFileStart(ctx context.Context, file m.Path) {
	if ctx.Err() != nil {
		return
	}

	s.printf("processing %s\n", file)
}

// DisplayFileResult prints the outcome for one file.
func (s *SimpleUI) DisplayFileResult(ctx context.Context, report m.Report) {
	if ctx.Err() != nil {
		return
	}

	switch {
	case !report.Success:
		s.printf("  %s: FAILED (%s)\n", report.File, report.Err)
	case report.ChangesMade:
		s.printf("  %s: updated %d docstring(s)\n", report.File, report.DocChanged)
	default:
		s.printf("  %s: no changes\n", report.File)
	}
}

// DisplaySummary renders the per-file report table and totals.
func (s *SimpleUI) DisplaySummary(ctx context.Context, reports []m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderSummaryTable(reports))

	summary := m.Summarize(reports)
	s.printf("processed %d file(s): %d updated, %d unchanged, %d failed\n",
		summary.Processed, summary.Updated, summary.Skipped, summary.Failed)

	return nil
}

// DisplayValidation renders a single validation outcome with its doc-change
// table.
func (s *SimpleUI) DisplayValidation(ctx context.Context, file m.Path, outcome m.ValidationOutcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !outcome.Passed {
		s.printf("%s: %s", file, outcome.Status)

		if outcome.Reason != "" {
			s.printf(" (%s)", outcome.Reason)
		}

		s.printf("\n")

		return nil
	}

	s.printf("%s: %s, %d docstring change(s)\n", file, outcome.Status, len(outcome.DocChanges))

	if len(outcome.DocChanges) > 0 {
		s.printf("\n%s", renderDocChangeTable(outcome.DocChanges))
	}

	return nil
}

// DisplayDiffStats renders per-file diff statistics for the range.
func (s *SimpleUI) DisplayDiffStats(ctx context.Context, rng m.DiffRange, stats []m.DiffStat) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("diff range %s..%s\n", shortSHA(rng.From), rng.To)

	if len(stats) == 0 {
		s.printf("no changes in range\n")
		return nil
	}

	s.printf("\n%s", renderDiffStatTable(stats))

	return nil
}

func (s *SimpleUI) printf(format string, args ...any) {
	s.cmd.Printf(format, args...)
}

func shortSHA(ref string) string {
	if len(ref) > 8 {
		return ref[:8]
	}

	return ref
}

func renderSummaryTable(reports []m.Report) string {
	buf := &bytes.Buffer{}

	table := tablewriter.NewWriter(buf)
	table.SetHeader([]string{"File", "Result", "Docstrings", "Retries"})
	table.SetBorder(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, r := range reports {
		result := "unchanged"

		switch {
		case !r.Success:
			result = "failed: " + string(r.Status)
		case r.ChangesMade:
			result = "updated"
		}

		table.Append([]string{
			string(r.File),
			result,
			strconv.Itoa(r.DocChanged),
			strconv.Itoa(r.Retries),
		})
	}

	table.Render()

	return buf.String()
}

func renderDocChangeTable(changes []m.DocChange) string {
	buf := &bytes.Buffer{}

	table := tablewriter.NewWriter(buf)
	table.SetHeader([]string{"Scope", "Name", "Change"})
	table.SetBorder(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, c := range changes {
		table.Append([]string{string(c.Kind), c.QualifiedName, describeDocChange(c)})
	}

	table.Render()

	return buf.String()
}

func describeDocChange(c m.DocChange) string {
	switch {
	case c.Before == nil && c.After != nil:
		return "added"
	case c.Before != nil && c.After == nil:
		return "removed"
	default:
		return "modified"
	}
}

func renderDiffStatTable(stats []m.DiffStat) string {
	buf := &bytes.Buffer{}

	table := tablewriter.NewWriter(buf)
	table.SetHeader([]string{"File", "Hunks", "Added", "Deleted"})
	table.SetBorder(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, st := range stats {
		table.Append([]string{
			string(st.File),
			strconv.Itoa(st.Hunks),
			fmt.Sprintf("+%d", st.Added),
			fmt.Sprintf("-%d", st.Deleted),
		})
	}

	table.Render()

	return buf.String()
}
