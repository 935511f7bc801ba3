package model

// Report holds the processing result for a single source file.
type Report struct {
	File        Path   `yaml:"file"`
	Success     bool   `yaml:"success"`
	ChangesMade bool   `yaml:"changes_made"`
	Status      Status `yaml:"status,omitempty"`
	Retries     int    `yaml:"retries"`
	Err         string `yaml:"error,omitempty"`
	DocChanged  int    `yaml:"doc_changed"`
}

// RunSummary aggregates reports for display and exit-code decisions.
type RunSummary struct {
	Processed int
	Updated   int
	Failed    int
	Skipped   int
}

// Summarize folds a report list into totals.
func Summarize(reports []Report) RunSummary {
	var s RunSummary

	for _, r := range reports {
		s.Processed++

		switch {
		case !r.Success:
			s.Failed++
		case r.ChangesMade:
			s.Updated++
		default:
			s.Skipped++
		}
	}

	return s
}
