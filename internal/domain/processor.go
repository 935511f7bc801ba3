package domain

import (
	"context"
	"fmt"
	"time"

	"autodoc.dev/pkg/autodoc/internal/adapter"
	m "autodoc.dev/pkg/autodoc/internal/model"
)

// ProcessorConfig tunes the per-file retry loop.
type ProcessorConfig struct {
	MaxRetries int
	RetryDelay time.Duration
}

// FileProcessor updates one file's docstrings and validates the result,
// retrying with a restored original when validation rejects the assistant's
// edit. Retry policy lives here; the comparator itself never retries.
type FileProcessor interface {
	Process(ctx context.Context, file m.Path, diff string) m.Report
}

type fileProcessor struct {
	cfg        ProcessorConfig
	files      adapter.SourceFSAdapter
	updater    DocstringUpdater
	comparator StructureComparator
}

// NewFileProcessor constructs a FileProcessor.
func NewFileProcessor(
	cfg ProcessorConfig,
	files adapter.SourceFSAdapter,
	updater DocstringUpdater,
	comparator StructureComparator,
) FileProcessor {
	return &fileProcessor{
		cfg:        cfg,
		files:      files,
		updater:    updater,
		comparator: comparator,
	}
}

// Process runs the update-validate loop for one file.
func (p *fileProcessor) Process(ctx context.Context, file m.Path, diff string) m.Report {
	original, err := p.files.ReadFile(file)
	if err != nil {
		return m.Report{
			File: file,
			Err:  fmt.Sprintf("read file: %v", err),
		}
	}

	var last m.Report

	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		last = p.attempt(ctx, file, original, diff)
		last.Retries = attempt

		if last.Success || ctx.Err() != nil {
			return last
		}

		if attempt < p.cfg.MaxRetries {
			// Roll the file back so the next attempt starts clean.
			if err := p.files.WriteFile(file, original, 0o644); err != nil {
				last.Err = fmt.Sprintf("restore after failed attempt: %v", err)
				return last
			}

			if p.cfg.RetryDelay > 0 {
				select {
				case <-ctx.Done():
					return last
				case <-time.After(p.cfg.RetryDelay):
				}
			}
		}
	}

	return last
}

func (p *fileProcessor) attempt(ctx context.Context, file m.Path, original []byte, diff string) m.Report {
	report := m.Report{File: file}

	result, err := p.updater.Update(ctx, file, diff)
	if err != nil {
		report.Err = err.Error()
		return report
	}

	if !result.ChangesMade {
		report.Success = true
		return report
	}

	outcome := p.comparator.Validate(ctx, string(original), file)
	report.Status = outcome.Status

	if !outcome.Passed {
		report.Err = outcome.Reason
		return report
	}

	report.Success = true
	report.ChangesMade = true
	report.DocChanged = len(outcome.DocChanges)

	return report
}
