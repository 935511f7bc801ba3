package domain

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"autodoc.dev/pkg/autodoc/internal/adapter"
	m "autodoc.dev/pkg/autodoc/internal/model"
)

// docstringPromptTemplate instructs the assistant to add docstrings and
// nothing else. The diff is context only; the whole file is in scope.
const docstringPromptTemplate = `Please add Google-style docstrings to ALL functions, classes, and methods in %[1]s that don't already have them.

Git diff context (what triggered this update):
` + "```\n%[2]s\n```" + `

REQUIREMENTS - MUST FOLLOW EXACTLY:
1. ONLY edit the file %[1]s - no other files
2. ADD docstrings to EVERY function, class, and method in %[1]s that lacks a docstring
3. Follow Google-style docstring conventions exactly
4. Include Args, Returns, and Raises sections as appropriate
5. CRITICAL: Do not modify function signatures, imports, or any logic - ONLY add docstrings
6. If a docstring is already complete, leave it unchanged; improve incomplete ones
7. Process the ENTIRE file %[1]s - not just the changed areas from the diff

Use the Edit tool to make the changes directly to %[1]s.`

// UpdateResult reports one assistant invocation.
type UpdateResult struct {
	ChangesMade bool
	Output      string
}

// DocstringUpdater drives the external assistant for a single file and
// reports whether the file content actually changed.
type DocstringUpdater interface {
	Update(ctx context.Context, file m.Path, diff string) (UpdateResult, error)
}

type docstringUpdater struct {
	files     adapter.SourceFSAdapter
	assistant adapter.AssistantAdapter
}

// NewDocstringUpdater constructs a DocstringUpdater.
func NewDocstringUpdater(files adapter.SourceFSAdapter, assistant adapter.AssistantAdapter) DocstringUpdater {
	return &docstringUpdater{files: files, assistant: assistant}
}

// Update runs the assistant against one file. An empty diff means there is
// nothing to analyze, so the file is skipped without invoking the assistant.
func (u *docstringUpdater) Update(ctx context.Context, file m.Path, diff string) (UpdateResult, error) {
	if strings.TrimSpace(diff) == "" {
		return UpdateResult{}, nil
	}

	original, err := u.files.ReadFile(file)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("read %s: %w", file, err)
	}

	prompt := fmt.Sprintf(docstringPromptTemplate, file, diff)

	output, err := u.assistant.UpdateFile(ctx, filepath.Dir(string(file)), prompt)
	if err != nil {
		return UpdateResult{Output: output}, fmt.Errorf("assistant for %s: %w", file, err)
	}

	current, err := u.files.ReadFile(file)
	if err != nil {
		return UpdateResult{Output: output}, fmt.Errorf("reread %s: %w", file, err)
	}

	return UpdateResult{
		ChangesMade: !bytes.Equal(original, current),
		Output:      output,
	}, nil
}
