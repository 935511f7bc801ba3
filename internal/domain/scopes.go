package domain

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	m "autodoc.dev/pkg/autodoc/internal/model"
)

// moduleScopeName labels the whole-file scope in doc-change records.
const moduleScopeName = "__module__"

// scopeDoc is one scope's docstring, keyed by its fully-qualified dotted
// name. Qualifying by the enclosing-scope path keeps same-named scopes at
// different nesting depths apart (two __init__ methods, a nested helper
// shadowing an outer one).
type scopeDoc struct {
	kind          m.ScopeKind
	qualifiedName string
	doc           *string
}

// collectScopeDocs gathers every scope's docstring in traversal order, module
// first.
func collectScopeDocs(root *sitter.Node, content []byte) []scopeDoc {
	docs := []scopeDoc{{
		kind:          m.ScopeModule,
		qualifiedName: moduleScopeName,
		doc:           scopeDocstring(root, content),
	}}

	walkScopes(root, content, nil, &docs)

	return docs
}

// walkScopes descends the tree, extending the qualified-name path at every
// function and class definition. Non-scope nodes (if/try bodies, decorated
// definitions) are traversed transparently.
func walkScopes(n *sitter.Node, content []byte, path []string, out *[]scopeDoc) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)

		switch child.Type() {
		case nodeFunction, nodeClass:
			nameNode := child.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}

			childPath := append(append([]string{}, path...), nameNode.Content(content))

			kind := m.ScopeFunction
			if child.Type() == nodeClass {
				kind = m.ScopeClass
			}

			body := child.ChildByFieldName("body")

			var doc *string
			if body != nil {
				doc = scopeDocstring(body, content)
			}

			*out = append(*out, scopeDoc{
				kind:          kind,
				qualifiedName: strings.Join(childPath, "."),
				doc:           doc,
			})

			if body != nil {
				walkScopes(body, content, childPath, out)
			}

		default:
			walkScopes(child, content, path, out)
		}
	}
}

// scopeDocstring returns the docstring text of a scope body, or nil when the
// scope has none. Absent is distinct from empty.
func scopeDocstring(body *sitter.Node, content []byte) *string {
	stmt := docstringStatement(body)
	if stmt == nil {
		return nil
	}

	text := stringLiteralValue(stmt.NamedChild(0), content)

	return &text
}

// compareScopeDocs pairs the two scope lists positionally (the caller has
// already proven the structures identical) and emits a DocChange for every
// scope whose docstring differs.
func compareScopeDocs(before, after []scopeDoc) []m.DocChange {
	var changes []m.DocChange

	count := len(before)
	if len(after) < count {
		count = len(after)
	}

	for i := 0; i < count; i++ {
		b, a := before[i], after[i]
		if docEqual(b.doc, a.doc) {
			continue
		}

		changes = append(changes, m.DocChange{
			Kind:          a.kind,
			QualifiedName: a.qualifiedName,
			Before:        b.doc,
			After:         a.doc,
		})
	}

	return changes
}

func docEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}
