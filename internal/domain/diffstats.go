package domain

import (
	"fmt"
	"strings"

	"github.com/sourcegraph/go-diff/diff"

	m "autodoc.dev/pkg/autodoc/internal/model"
)

// parseDiffStats turns raw `git diff` output into per-file hunk and line
// counts.
func parseDiffStats(raw string) ([]m.DiffStat, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	fileDiffs, err := diff.ParseMultiFileDiff([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("parse diff: %w", err)
	}

	stats := make([]m.DiffStat, 0, len(fileDiffs))

	for _, fd := range fileDiffs {
		name := fd.NewName
		if name == "/dev/null" {
			name = fd.OrigName
		}

		name = strings.TrimPrefix(name, "b/")
		name = strings.TrimPrefix(name, "a/")

		st := fd.Stat()

		stats = append(stats, m.DiffStat{
			File:    m.Path(name),
			Hunks:   len(fd.Hunks),
			Added:   int(st.Added + st.Changed),
			Deleted: int(st.Deleted + st.Changed),
		})
	}

	return stats, nil
}
