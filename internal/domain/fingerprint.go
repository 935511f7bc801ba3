// Package domain provides the structural validation and commit-range
// resolution logic for the autodoc tool.
package domain

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Tree-sitter node kinds the comparison logic cares about. Scope detection is
// an explicit closed enumeration checked by kind tag; only module, function
// and class bodies can ever hold a docstring.
const (
	nodeModule        = "module"
	nodeFunction      = "function_definition"
	nodeClass         = "class_definition"
	nodeBlock         = "block"
	nodeComment       = "comment"
	nodeExprStmt      = "expression_statement"
	nodeString        = "string"
	nodeConcatString  = "concatenated_string"
	nodeInterpolation = "interpolation"
)

// buildFingerprint serializes the syntax tree into a canonical string with
// the leading docstring removed from every scope and all comments dropped.
// Two sources are structurally equivalent iff their fingerprints are equal.
func buildFingerprint(root *sitter.Node, content []byte) string {
	var b strings.Builder

	writeNode(&b, root, content)

	return b.String()
}

// writeNode appends the canonical form of n to b. Comments and the leading
// docstring statement of a scope body are dropped in the parent's child loop,
// together with their separators, so skipped nodes leave no positional trace
// in the fingerprint.
func writeNode(b *strings.Builder, n *sitter.Node, content []byte) {
	kind := n.Type()

	childCount := int(n.ChildCount())
	if childCount == 0 && kind != nodeModule {
		// Leaf tokens carry identity through their source text: identifiers,
		// operators, literals, keywords. A childless module is not a token,
		// it is an empty file.
		b.WriteByte('(')
		b.WriteString(kind)
		b.WriteByte(' ')
		b.WriteString(n.Content(content))
		b.WriteByte(')')

		return
	}

	var skip *sitter.Node
	if kind == nodeModule || isScopeBody(n) {
		skip = docstringStatement(n)
	}

	b.WriteByte('(')
	b.WriteString(kind)

	for i := 0; i < childCount; i++ {
		child := n.Child(i)
		if child.Type() == nodeComment {
			continue
		}

		if skip != nil && child.Equal(skip) {
			continue
		}

		b.WriteByte(' ')
		writeNode(b, child, content)
	}

	b.WriteByte(')')
}

// isScopeBody reports whether n is the body block of a function or class
// definition. Blocks under if/for/while/try/with/match clauses are never
// scopes, so no position in them is ever treated as documentation.
func isScopeBody(n *sitter.Node) bool {
	if n.Type() != nodeBlock {
		return false
	}

	parent := n.Parent()
	if parent == nil {
		return false
	}

	switch parent.Type() {
	case nodeFunction, nodeClass:
	default:
		return false
	}

	body := parent.ChildByFieldName("body")

	return body != nil && body.Equal(n)
}

// docstringStatement returns the leading docstring statement of a scope body,
// or nil when the first statement is not a docstring. Comments are invisible
// to statement positions. Only the very first statement qualifies; a string
// literal anywhere else is an ordinary statement.
func docstringStatement(body *sitter.Node) *sitter.Node {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		stmt := body.NamedChild(i)
		if stmt.Type() == nodeComment {
			continue
		}

		if stmt.Type() != nodeExprStmt || stmt.NamedChildCount() != 1 {
			return nil
		}

		if isPlainString(stmt.NamedChild(0)) {
			return stmt
		}

		return nil
	}

	return nil
}

// isPlainString reports whether n is a constant string expression. F-strings
// contain interpolation and never qualify as docstrings.
func isPlainString(n *sitter.Node) bool {
	switch n.Type() {
	case nodeString:
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if n.NamedChild(i).Type() == nodeInterpolation {
				return false
			}
		}

		return true

	case nodeConcatString:
		for i := 0; i < int(n.NamedChildCount()); i++ {
			part := n.NamedChild(i)
			if part.Type() == nodeComment {
				continue
			}

			if !isPlainString(part) {
				return false
			}
		}

		return true
	}

	return false
}

// stringLiteralValue extracts the text content of a string literal, dropping
// prefixes and quotes. Adjacent literal parts are concatenated.
func stringLiteralValue(n *sitter.Node, content []byte) string {
	if n.Type() == nodeConcatString {
		var b strings.Builder

		for i := 0; i < int(n.NamedChildCount()); i++ {
			part := n.NamedChild(i)
			if part.Type() == nodeString {
				b.WriteString(stringLiteralValue(part, content))
			}
		}

		return b.String()
	}

	raw := n.Content(content)

	// Drop prefix letters (r, b, u, f in any combination).
	start := 0
	for start < len(raw) && raw[start] != '"' && raw[start] != '\'' {
		start++
	}

	raw = raw[start:]

	for _, quote := range []string{`"""`, "'''"} {
		if strings.HasPrefix(raw, quote) && strings.HasSuffix(raw, quote) && len(raw) >= 2*len(quote) {
			return raw[len(quote) : len(raw)-len(quote)]
		}
	}

	if len(raw) >= 2 {
		return raw[1 : len(raw)-1]
	}

	return raw
}
