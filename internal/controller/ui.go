// Package controller provides output adapters for displaying autodoc
// progress and results.
package controller

import (
	"context"
	"os"

	"golang.org/x/term"

	m "autodoc.dev/pkg/autodoc/internal/model"
)

// UI defines the interface for displaying pipeline progress. Implementations
// can use different output methods (simple text, TUI).
type UI interface {
	Start(ctx context.Context) error
	Close(ctx context.Context)
	Wait(ctx context.Context)
	DisplayRange(ctx context.Context, rng m.DiffRange, fileCount int)
	DisplayFileStart(ctx context.Context, file m.Path)
	DisplayFileResult(ctx context.Context, report m.Report)
	DisplaySummary(ctx context.Context, reports []m.Report) error
	DisplayValidation(ctx context.Context, file m.Path, outcome m.ValidationOutcome) error
	DisplayDiffStats(ctx context.Context, rng m.DiffRange, stats []m.DiffStat) error
}

// IsTTY reports whether f is an interactive terminal.
func IsTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
