package domain

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"autodoc.dev/pkg/autodoc/internal/adapter"
	m "autodoc.dev/pkg/autodoc/internal/model"
)

func validateSources(t *testing.T, before, after string) m.ValidationOutcome {
	t.Helper()

	fs := newFakeFS()
	fs.files["after.py"] = []byte(after)

	comparator := NewStructureComparator(fs, adapter.NewTreeSitterPythonAdapter())

	return comparator.Validate(context.Background(), before, "after.py")
}

func loadExample(t *testing.T, parts ...string) string {
	t.Helper()

	path := filepath.Join(append([]string{"..", "..", "examples"}, parts...)...)

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read example %s: %v", path, err)
	}

	return string(content)
}

func validateExamples(t *testing.T, beforeParts, afterParts []string) m.ValidationOutcome {
	t.Helper()

	before := loadExample(t, beforeParts...)
	afterPath := m.Path(filepath.Join(append([]string{"..", "..", "examples"}, afterParts...)...))

	comparator := NewStructureComparator(
		adapter.NewLocalSourceFSAdapter(),
		adapter.NewTreeSitterPythonAdapter(),
	)

	return comparator.Validate(context.Background(), before, afterPath)
}

func TestStructureComparator_Validate(t *testing.T) {
	t.Run("identical file validates with no doc changes", func(t *testing.T) {
		source := loadExample(t, "basic", "original.py")

		outcome := validateSources(t, source, source)
		if !outcome.Passed {
			t.Fatalf("expected pass, got %s: %s", outcome.Status, outcome.Reason)
		}

		if outcome.Status != m.StatusValid {
			t.Errorf("expected status valid, got %s", outcome.Status)
		}

		if len(outcome.DocChanges) != 0 {
			t.Errorf("expected no doc changes, got %d", len(outcome.DocChanges))
		}
	})

	t.Run("docstring-only edits pass and are listed per scope", func(t *testing.T) {
		outcome := validateExamples(t,
			[]string{"basic", "original.py"},
			[]string{"basic", "docstrings_updated.py"},
		)
		if !outcome.Passed {
			t.Fatalf("expected pass, got %s: %s", outcome.Status, outcome.Reason)
		}

		changed := map[string]bool{}
		for _, c := range outcome.DocChanges {
			changed[c.QualifiedName] = true
		}

		for _, name := range []string{"__module__", "add", "scale", "Calculator", "Calculator.__init__"} {
			if !changed[name] {
				t.Errorf("expected doc change for %s", name)
			}
		}

		if changed["Calculator.sqrt"] {
			t.Error("Calculator.sqrt docstring did not change")
		}

		if len(outcome.DocChanges) != 5 {
			t.Errorf("expected 5 doc changes, got %d", len(outcome.DocChanges))
		}
	})

	t.Run("added docstrings report a nil before", func(t *testing.T) {
		outcome := validateExamples(t,
			[]string{"basic", "original.py"},
			[]string{"basic", "docstrings_updated.py"},
		)
		if !outcome.Passed {
			t.Fatalf("expected pass, got %s", outcome.Status)
		}

		for _, c := range outcome.DocChanges {
			if c.QualifiedName != "scale" {
				continue
			}

			if c.Before != nil {
				t.Errorf("scale had no docstring before, got %q", *c.Before)
			}

			if c.After == nil {
				t.Error("scale docstring was added, After must be set")
			}

			return
		}

		t.Fatal("no doc change recorded for scale")
	})

	t.Run("module docstring added to an empty file passes", func(t *testing.T) {
		outcome := validateSources(t, "", "\"\"\"module doc\"\"\"\n")
		if !outcome.Passed {
			t.Fatalf("expected pass, got %s: %s", outcome.Status, outcome.Reason)
		}

		if len(outcome.DocChanges) != 1 {
			t.Fatalf("expected 1 doc change, got %d", len(outcome.DocChanges))
		}

		c := outcome.DocChanges[0]
		if c.QualifiedName != "__module__" || c.Kind != m.ScopeModule {
			t.Errorf("unexpected change record: %+v", c)
		}

		if c.Before != nil || c.After == nil {
			t.Errorf("expected nil Before and set After, got %+v", c)
		}
	})

	t.Run("docstring added to an undocumented function passes", func(t *testing.T) {
		before := "def f(a, b):\n    return a + b\n"
		after := "def f(a, b):\n    \"\"\"Add a and b.\"\"\"\n    return a + b\n"

		outcome := validateSources(t, before, after)
		if !outcome.Passed {
			t.Fatalf("expected pass, got %s: %s", outcome.Status, outcome.Reason)
		}

		if len(outcome.DocChanges) != 1 {
			t.Fatalf("expected 1 doc change, got %d", len(outcome.DocChanges))
		}

		if c := outcome.DocChanges[0]; c.QualifiedName != "f" || c.Kind != m.ScopeFunction {
			t.Errorf("unexpected change record: %+v", c)
		}
	})

	t.Run("signature change is rejected as structure_changed", func(t *testing.T) {
		outcome := validateExamples(t,
			[]string{"basic", "original.py"},
			[]string{"basic", "structure_changed.py"},
		)
		if outcome.Passed {
			t.Fatal("expected rejection")
		}

		if outcome.Status != m.StatusStructureChanged {
			t.Errorf("expected structure_changed, got %s", outcome.Status)
		}

		if outcome.Reason == "" {
			t.Error("expected a reason")
		}
	})

	t.Run("nested duplicate names are kept apart by qualified path", func(t *testing.T) {
		outcome := validateExamples(t,
			[]string{"nested", "original.py"},
			[]string{"nested", "docstrings_updated.py"},
		)
		if !outcome.Passed {
			t.Fatalf("expected pass, got %s: %s", outcome.Status, outcome.Reason)
		}

		changed := map[string]m.ScopeKind{}
		for _, c := range outcome.DocChanges {
			changed[c.QualifiedName] = c.Kind
		}

		if _, ok := changed["Reader.__init__"]; !ok {
			t.Error("expected doc change for Reader.__init__")
		}

		if _, ok := changed["Writer.__init__"]; ok {
			t.Error("Writer.__init__ docstring did not change")
		}

		if kind, ok := changed["Writer.flush.retry"]; !ok || kind != m.ScopeFunction {
			t.Errorf("expected function doc change for Writer.flush.retry, got %v", changed)
		}
	})

	t.Run("syntax error in modified file is rejected with location", func(t *testing.T) {
		before := loadExample(t, "basic", "original.py")
		after := loadExample(t, "invalid", "broken.py")

		outcome := validateSources(t, before, after)
		if outcome.Passed {
			t.Fatal("expected rejection")
		}

		if outcome.Status != m.StatusSyntaxError {
			t.Errorf("expected syntax_error, got %s", outcome.Status)
		}
	})

	t.Run("missing modified file is a validation_error", func(t *testing.T) {
		fs := newFakeFS()
		comparator := NewStructureComparator(fs, adapter.NewTreeSitterPythonAdapter())

		outcome := comparator.Validate(context.Background(), "x = 1\n", "missing.py")
		if outcome.Passed {
			t.Fatal("expected rejection")
		}

		if outcome.Status != m.StatusValidationError {
			t.Errorf("expected validation_error, got %s", outcome.Status)
		}
	})

	t.Run("comment edits do not affect the comparison", func(t *testing.T) {
		before := "# old note\nx = 1\n"
		after := "x = 1  # inline\n# trailing\n"

		outcome := validateSources(t, before, after)
		if !outcome.Passed {
			t.Fatalf("expected pass, got %s: %s", outcome.Status, outcome.Reason)
		}

		if len(outcome.DocChanges) != 0 {
			t.Errorf("expected no doc changes, got %d", len(outcome.DocChanges))
		}
	})

	t.Run("second string literal in a body is an ordinary statement", func(t *testing.T) {
		before := "def f():\n    \"\"\"doc\"\"\"\n    return 1\n"
		after := "def f():\n    \"\"\"doc\"\"\"\n    \"note\"\n    return 1\n"

		outcome := validateSources(t, before, after)
		if outcome.Passed {
			t.Fatal("expected rejection")
		}

		if outcome.Status != m.StatusStructureChanged {
			t.Errorf("expected structure_changed, got %s", outcome.Status)
		}
	})

	t.Run("string at the top of an if block is not a docstring", func(t *testing.T) {
		before := "if True:\n    pass\n"
		after := "if True:\n    \"doc\"\n    pass\n"

		outcome := validateSources(t, before, after)
		if outcome.Passed {
			t.Fatal("expected rejection")
		}

		if outcome.Status != m.StatusStructureChanged {
			t.Errorf("expected structure_changed, got %s", outcome.Status)
		}
	})

	t.Run("leading f-string is not a docstring", func(t *testing.T) {
		before := "def f(x):\n    f\"a{x}\"\n    return x\n"
		after := "def f(x):\n    f\"b{x}\"\n    return x\n"

		outcome := validateSources(t, before, after)
		if outcome.Passed {
			t.Fatal("expected rejection")
		}

		if outcome.Status != m.StatusStructureChanged {
			t.Errorf("expected structure_changed, got %s", outcome.Status)
		}
	})

	t.Run("removing a function is rejected", func(t *testing.T) {
		before := "def a():\n    return 1\n\ndef b():\n    return 2\n"
		after := "def a():\n    return 1\n"

		outcome := validateSources(t, before, after)
		if outcome.Passed {
			t.Fatal("expected rejection")
		}

		if outcome.Status != m.StatusStructureChanged {
			t.Errorf("expected structure_changed, got %s", outcome.Status)
		}
	})

	t.Run("removing a docstring passes and reports a nil after", func(t *testing.T) {
		before := "def f():\n    \"\"\"doc\"\"\"\n    return 1\n"
		after := "def f():\n    return 1\n"

		outcome := validateSources(t, before, after)
		if !outcome.Passed {
			t.Fatalf("expected pass, got %s: %s", outcome.Status, outcome.Reason)
		}

		if len(outcome.DocChanges) != 1 {
			t.Fatalf("expected 1 doc change, got %d", len(outcome.DocChanges))
		}

		c := outcome.DocChanges[0]
		if c.QualifiedName != "f" || c.Before == nil || c.After != nil {
			t.Errorf("unexpected change record: %+v", c)
		}
	})
}

func TestStructureComparator_Idempotence(t *testing.T) {
	// Validating a file against itself must always pass, whatever the content.
	sources := []string{
		loadExample(t, "basic", "original.py"),
		loadExample(t, "basic", "docstrings_updated.py"),
		loadExample(t, "nested", "original.py"),
		"",
		"x = 1\n",
	}

	for _, source := range sources {
		outcome := validateSources(t, source, source)
		if !outcome.Passed || len(outcome.DocChanges) != 0 {
			t.Errorf("self-comparison failed for %q: %+v", source, outcome)
		}
	}
}
