package domain

import (
	"testing"
)

const sampleDiff = `diff --git a/pkg/util.py b/pkg/util.py
index 83db48f..bf269f4 100644
--- a/pkg/util.py
+++ b/pkg/util.py
@@ -1,3 +1,4 @@
 import os
+import sys

 x = 1
`

func TestParseDiffStats(t *testing.T) {
	t.Run("empty diff yields no stats", func(t *testing.T) {
		stats, err := parseDiffStats("  \n")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(stats) != 0 {
			t.Errorf("expected no stats, got %v", stats)
		}
	})

	t.Run("single file diff is summarized", func(t *testing.T) {
		stats, err := parseDiffStats(sampleDiff)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(stats) != 1 {
			t.Fatalf("expected 1 file, got %d", len(stats))
		}

		st := stats[0]
		if string(st.File) != "pkg/util.py" {
			t.Errorf("expected pkg/util.py, got %s", st.File)
		}

		if st.Hunks != 1 {
			t.Errorf("expected 1 hunk, got %d", st.Hunks)
		}

		if st.Added != 1 || st.Deleted != 0 {
			t.Errorf("expected +1/-0, got +%d/-%d", st.Added, st.Deleted)
		}
	})
}
