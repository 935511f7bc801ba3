package controller

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "autodoc.dev/pkg/autodoc/internal/model"
)

var (
	tuiTitleStyle = lipgloss.NewStyle().Bold(true)
	tuiFileStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	tuiOKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	tuiFailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	tuiDimStyle   = lipgloss.NewStyle().Faint(true)
)

// TUI implements UI with an interactive Bubble Tea progress display.
type TUI struct {
	output  io.Writer
	program *tea.Program
	done    sync.WaitGroup
}

// NewTUI creates a new TUI writing to output.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

type rangeMsg struct {
	rng   m.DiffRange
	count int
}

type fileStartMsg struct {
	file m.Path
}

type fileResultMsg struct {
	report m.Report
}

type shutdownMsg struct{}

// Start launches the progress program in the background.
func (t *TUI) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.program = tea.NewProgram(newProgressModel(), tea.WithOutput(t.output))

	t.done.Add(1)

	go func() {
		defer t.done.Done()

		_, _ = t.program.Run()
	}()

	return nil
}

// Close asks the program to quit.
func (t *TUI) Close(_ context.Context) {
	if t.program != nil {
		t.program.Send(shutdownMsg{})
	}
}

// Wait blocks until the program has finished rendering.
func (t *TUI) Wait(_ context.Context) {
	t.done.Wait()
}

// DisplayRange feeds the resolved commit window into the progress display.
func (t *TUI) DisplayRange(_ context.Context, rng m.DiffRange, fileCount int) {
	if t.program != nil {
		t.program.Send(rangeMsg{rng: rng, count: fileCount})
	}
}

// DisplayFileStart marks a file as in-flight.
func (t *TUI) DisplayFileStart(_ context.Context, file m.Path) {
	if t.program != nil {
		t.program.Send(fileStartMsg{file: file})
	}
}

// DisplayFileResult records a finished file.
func (t *TUI) DisplayFileResult(_ context.Context, report m.Report) {
	if t.program != nil {
		t.program.Send(fileResultMsg{report: report})
	}
}

// DisplaySummary prints the final table after the program has quit.
func (t *TUI) DisplaySummary(ctx context.Context, reports []m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	summary := m.Summarize(reports)

	_, err := fmt.Fprintf(t.output, "\n%sprocessed %d file(s): %d updated, %d unchanged, %d failed\n",
		renderSummaryTable(reports), summary.Processed, summary.Updated, summary.Skipped, summary.Failed)

	return err
}

// DisplayValidation renders a validation outcome (non-interactive output).
func (t *TUI) DisplayValidation(ctx context.Context, file m.Path, outcome m.ValidationOutcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	status := tuiOKStyle.Render(string(outcome.Status))
	if !outcome.Passed {
		status = tuiFailStyle.Render(string(outcome.Status))
	}

	if _, err := fmt.Fprintf(t.output, "%s: %s\n", file, status); err != nil {
		return err
	}

	if outcome.Reason != "" {
		if _, err := fmt.Fprintf(t.output, "%s\n", tuiDimStyle.Render(outcome.Reason)); err != nil {
			return err
		}
	}

	if len(outcome.DocChanges) > 0 {
		if _, err := fmt.Fprintf(t.output, "\n%s", renderDocChangeTable(outcome.DocChanges)); err != nil {
			return err
		}
	}

	return nil
}

// DisplayDiffStats renders per-file diff statistics (non-interactive output).
func (t *TUI) DisplayDiffStats(ctx context.Context, rng m.DiffRange, stats []m.DiffStat) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(t.output, "diff range %s..%s\n", shortSHA(rng.From), rng.To); err != nil {
		return err
	}

	if len(stats) == 0 {
		_, err := fmt.Fprintln(t.output, "no changes in range")
		return err
	}

	_, err := fmt.Fprintf(t.output, "\n%s", renderDiffStatTable(stats))

	return err
}

// progressModel is the Bubble Tea model behind the run display.
type progressModel struct {
	spin     spinner.Model
	bar      progress.Model
	rng      m.DiffRange
	total    int
	finished int
	updated  int
	failed   int
	inFlight map[m.Path]struct{}
	lastLine string
	quitting bool
}

func newProgressModel() progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return progressModel{
		spin:     s,
		bar:      progress.New(progress.WithDefaultGradient()),
		inFlight: make(map[m.Path]struct{}),
	}
}

// Init implements tea.Model.
func (pm progressModel) Init() tea.Cmd {
	return pm.spin.Tick
}

// Update implements tea.Model.
func (pm progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case rangeMsg:
		pm.rng = msg.rng
		pm.total = msg.count

		return pm, nil

	case fileStartMsg:
		pm.inFlight[msg.file] = struct{}{}

		return pm, nil

	case fileResultMsg:
		delete(pm.inFlight, msg.report.File)
		pm.finished++

		switch {
		case !msg.report.Success:
			pm.failed++
			pm.lastLine = tuiFailStyle.Render(fmt.Sprintf("%s failed: %s", msg.report.File, msg.report.Err))
		case msg.report.ChangesMade:
			pm.updated++
			pm.lastLine = tuiOKStyle.Render(fmt.Sprintf("%s updated", msg.report.File))
		default:
			pm.lastLine = tuiDimStyle.Render(fmt.Sprintf("%s unchanged", msg.report.File))
		}

		return pm, nil

	case shutdownMsg:
		pm.quitting = true

		return pm, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		pm.spin, cmd = pm.spin.Update(msg)

		return pm, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			pm.quitting = true
			return pm, tea.Quit
		}
	}

	return pm, nil
}

// View implements tea.Model.
func (pm progressModel) View() string {
	if pm.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(tuiTitleStyle.Render("autodoc"))

	if pm.rng.From != "" {
		b.WriteString(tuiDimStyle.Render(fmt.Sprintf("  %s..%s", shortSHA(pm.rng.From), pm.rng.To)))
	}

	b.WriteByte('\n')

	if pm.total > 0 {
		ratio := float64(pm.finished) / float64(pm.total)
		b.WriteString(pm.bar.ViewAs(ratio))
		b.WriteString(fmt.Sprintf(" %d/%d (%d updated, %d failed)", pm.finished, pm.total, pm.updated, pm.failed))
		b.WriteByte('\n')
	}

	for file := range pm.inFlight {
		b.WriteString(pm.spin.View())
		b.WriteString(tuiFileStyle.Render(string(file)))
		b.WriteByte('\n')
	}

	if pm.lastLine != "" {
		b.WriteString(pm.lastLine)
		b.WriteByte('\n')
	}

	return b.String()
}
