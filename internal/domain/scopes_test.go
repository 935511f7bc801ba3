package domain

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"

	"autodoc.dev/pkg/autodoc/internal/adapter"
	m "autodoc.dev/pkg/autodoc/internal/model"
)

func parsePython(t *testing.T, source string) (*sitter.Node, []byte) {
	t.Helper()

	content := []byte(source)

	tree, err := adapter.NewTreeSitterPythonAdapter().Parse(context.Background(), content)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	t.Cleanup(tree.Close)

	return tree.RootNode(), content
}

func TestCollectScopeDocs(t *testing.T) {
	t.Run("module scope comes first and is named __module__", func(t *testing.T) {
		root, content := parsePython(t, "\"\"\"mod doc\"\"\"\nx = 1\n")

		docs := collectScopeDocs(root, content)
		if len(docs) != 1 {
			t.Fatalf("expected 1 scope, got %d", len(docs))
		}

		if docs[0].qualifiedName != moduleScopeName || docs[0].kind != m.ScopeModule {
			t.Errorf("unexpected module scope: %+v", docs[0])
		}

		if docs[0].doc == nil || *docs[0].doc != "mod doc" {
			t.Errorf("unexpected module docstring: %v", docs[0].doc)
		}
	})

	t.Run("scopes are qualified by their enclosing path", func(t *testing.T) {
		source := "class A:\n" +
			"    def __init__(self):\n" +
			"        pass\n" +
			"\n" +
			"class B:\n" +
			"    def __init__(self):\n" +
			"        pass\n" +
			"    def run(self):\n" +
			"        def helper():\n" +
			"            pass\n"

		root, content := parsePython(t, source)

		docs := collectScopeDocs(root, content)

		names := make([]string, 0, len(docs))
		for _, d := range docs {
			names = append(names, d.qualifiedName)
		}

		expected := []string{
			moduleScopeName, "A", "A.__init__", "B", "B.__init__", "B.run", "B.run.helper",
		}

		if len(names) != len(expected) {
			t.Fatalf("expected %d scopes, got %d: %v", len(expected), len(names), names)
		}

		for i, want := range expected {
			if names[i] != want {
				t.Errorf("scope %d: expected %s, got %s", i, want, names[i])
			}
		}
	})

	t.Run("decorated and conditional definitions are still found", func(t *testing.T) {
		source := "@decorator\n" +
			"def decorated():\n" +
			"    \"\"\"doc\"\"\"\n" +
			"\n" +
			"if True:\n" +
			"    def conditional():\n" +
			"        pass\n"

		root, content := parsePython(t, source)

		docs := collectScopeDocs(root, content)

		found := map[string]*string{}
		for _, d := range docs {
			found[d.qualifiedName] = d.doc
		}

		doc, ok := found["decorated"]
		if !ok || doc == nil || *doc != "doc" {
			t.Errorf("expected decorated with docstring, got %v", found)
		}

		if _, ok := found["conditional"]; !ok {
			t.Error("expected conditional function to be collected")
		}
	})

	t.Run("absent docstring is distinct from empty", func(t *testing.T) {
		root, content := parsePython(t, "def a():\n    pass\n\ndef b():\n    \"\"\"\"\"\"\n")

		docs := collectScopeDocs(root, content)
		if len(docs) != 3 {
			t.Fatalf("expected 3 scopes, got %d", len(docs))
		}

		if docs[1].doc != nil {
			t.Errorf("a has no docstring, got %q", *docs[1].doc)
		}

		if docs[2].doc == nil || *docs[2].doc != "" {
			t.Errorf("b has an empty docstring, got %v", docs[2].doc)
		}
	})
}

func TestScopeDocstringLiteralForms(t *testing.T) {
	cases := []struct {
		name   string
		source string
		want   string
	}{
		{"triple quoted", "\"\"\"doc text\"\"\"\n", "doc text"},
		{"single quoted", "'doc'\n", "doc"},
		{"raw prefix", "r'doc\\n'\n", "doc\\n"},
		{"concatenated", "\"part one \" \"part two\"\n", "part one part two"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			root, content := parsePython(t, tc.source)

			doc := scopeDocstring(root, content)
			if doc == nil {
				t.Fatal("expected a docstring")
			}

			if *doc != tc.want {
				t.Errorf("expected %q, got %q", tc.want, *doc)
			}
		})
	}
}

func TestCompareScopeDocs(t *testing.T) {
	str := func(s string) *string { return &s }

	t.Run("equal docs produce no changes", func(t *testing.T) {
		docs := []scopeDoc{{kind: m.ScopeFunction, qualifiedName: "f", doc: str("d")}}

		if changes := compareScopeDocs(docs, docs); len(changes) != 0 {
			t.Errorf("expected no changes, got %v", changes)
		}
	})

	t.Run("positional pairing reports each differing scope once", func(t *testing.T) {
		before := []scopeDoc{
			{kind: m.ScopeModule, qualifiedName: moduleScopeName, doc: nil},
			{kind: m.ScopeFunction, qualifiedName: "f", doc: str("old")},
		}
		after := []scopeDoc{
			{kind: m.ScopeModule, qualifiedName: moduleScopeName, doc: nil},
			{kind: m.ScopeFunction, qualifiedName: "f", doc: str("new")},
		}

		changes := compareScopeDocs(before, after)
		if len(changes) != 1 {
			t.Fatalf("expected 1 change, got %d", len(changes))
		}

		c := changes[0]
		if c.QualifiedName != "f" || *c.Before != "old" || *c.After != "new" {
			t.Errorf("unexpected change: %+v", c)
		}
	})
}
