// Package adapter contains infrastructure adapters for the autodoc CLI.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// DefaultMaxFileSize bounds the size of files the parser will accept.
const DefaultMaxFileSize = 10 * 1024 * 1024

// Parsing error sentinels.
var (
	ErrFileTooLarge   = errors.New("file too large")
	ErrInvalidContent = errors.New("invalid content")
)

// PythonFileAdapter encapsulates Python-specific parsing so the domain layer
// can focus on structural comparison while delegating grammar details to an
// infrastructure component.
type PythonFileAdapter interface {
	// Parse builds a syntax tree for the provided source bytes. The returned
	// tree is owned by the caller and must be Close()d. Tree-sitter is
	// error-tolerant, so a tree is returned even for invalid source; use
	// SyntaxErrorReason to detect parse errors.
	Parse(ctx context.Context, content []byte) (*sitter.Tree, error)

	// SyntaxErrorReason returns a human-readable description of the first
	// syntax error in the tree, or "" when the tree parsed cleanly.
	SyntaxErrorReason(root *sitter.Node) string
}

// TreeSitterPythonAdapter provides a concrete PythonFileAdapter backed by
// tree-sitter. Each Parse call creates its own parser instance, so the
// adapter is safe for concurrent use.
type TreeSitterPythonAdapter struct {
	maxFileSize int64
}

// NewTreeSitterPythonAdapter constructs a TreeSitterPythonAdapter.
func NewTreeSitterPythonAdapter() *TreeSitterPythonAdapter {
	return &TreeSitterPythonAdapter{maxFileSize: DefaultMaxFileSize}
}

// Parse builds a syntax tree for the provided source bytes.
func (a *TreeSitterPythonAdapter) Parse(ctx context.Context, content []byte) (*sitter.Tree, error) {
	if int64(len(content)) > a.maxFileSize {
		return nil, fmt.Errorf("%w: size %d exceeds limit %d", ErrFileTooLarge, len(content), a.maxFileSize)
	}

	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: content is not valid UTF-8", ErrInvalidContent)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}

	return tree, nil
}

// SyntaxErrorReason locates the first ERROR or MISSING node in the tree.
func (a *TreeSitterPythonAdapter) SyntaxErrorReason(root *sitter.Node) string {
	if root == nil {
		return "parser returned no syntax tree"
	}

	if !root.HasError() {
		return ""
	}

	node := firstErrorNode(root)
	if node == nil {
		node = root
	}

	point := node.StartPoint()

	if node.IsMissing() {
		return fmt.Sprintf("missing %s at line %d, column %d", node.Type(), point.Row+1, point.Column+1)
	}

	return fmt.Sprintf("invalid syntax at line %d, column %d", point.Row+1, point.Column+1)
}

// firstErrorNode descends to the first concrete error node in document order.
func firstErrorNode(n *sitter.Node) *sitter.Node {
	if !n.HasError() {
		return nil
	}

	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		if found := firstErrorNode(n.Child(i)); found != nil {
			return found
		}
	}

	return n
}
