package domain

import (
	"context"
	"fmt"

	"autodoc.dev/pkg/autodoc/internal/adapter"
	m "autodoc.dev/pkg/autodoc/internal/model"
)

const structureChangedReason = "function/class signatures, imports, or logic were modified"

// StructureComparator proves that two versions of a source file are identical
// except for docstring content. It is a pure read/compare component: it never
// mutates inputs, never retries, and never logs; callers act on the returned
// outcome.
type StructureComparator interface {
	Validate(ctx context.Context, beforeText string, afterPath m.Path) m.ValidationOutcome
}

type structureComparator struct {
	files  adapter.SourceFSAdapter
	parser adapter.PythonFileAdapter
}

// NewStructureComparator constructs a StructureComparator backed by the
// provided filesystem and parser adapters.
func NewStructureComparator(files adapter.SourceFSAdapter, parser adapter.PythonFileAdapter) StructureComparator {
	return &structureComparator{files: files, parser: parser}
}

// Validate parses both versions, compares their docstring-stripped
// fingerprints, and on a match reports the per-scope docstring changes.
func (c *structureComparator) Validate(ctx context.Context, beforeText string, afterPath m.Path) m.ValidationOutcome {
	afterContent, err := c.files.ReadFile(afterPath)
	if err != nil {
		return failure(m.StatusValidationError, fmt.Sprintf("read %s: %v", afterPath, err))
	}

	beforeContent := []byte(beforeText)

	beforeTree, err := c.parser.Parse(ctx, beforeContent)
	if err != nil {
		return failure(m.StatusValidationError, fmt.Sprintf("parse original: %v", err))
	}
	defer beforeTree.Close()

	afterTree, err := c.parser.Parse(ctx, afterContent)
	if err != nil {
		return failure(m.StatusValidationError, fmt.Sprintf("parse modified: %v", err))
	}
	defer afterTree.Close()

	if reason := c.parser.SyntaxErrorReason(afterTree.RootNode()); reason != "" {
		return failure(m.StatusSyntaxError, "modified file has syntax errors: "+reason)
	}

	if reason := c.parser.SyntaxErrorReason(beforeTree.RootNode()); reason != "" {
		return failure(m.StatusSyntaxError, "original file has syntax errors: "+reason)
	}

	beforeRoot := beforeTree.RootNode()
	afterRoot := afterTree.RootNode()

	if buildFingerprint(beforeRoot, beforeContent) != buildFingerprint(afterRoot, afterContent) {
		return failure(m.StatusStructureChanged, structureChangedReason)
	}

	changes := compareScopeDocs(
		collectScopeDocs(beforeRoot, beforeContent),
		collectScopeDocs(afterRoot, afterContent),
	)

	return m.ValidationOutcome{
		Passed:     true,
		Status:     m.StatusValid,
		DocChanges: changes,
	}
}

func failure(status m.Status, reason string) m.ValidationOutcome {
	return m.ValidationOutcome{
		Passed: false,
		Status: status,
		Reason: reason,
	}
}
