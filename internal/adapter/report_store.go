package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	m "autodoc.dev/pkg/autodoc/internal/model"
)

const reportsFileName = "reports.yaml"

// ReportStore persists per-file processing reports between runs.
type ReportStore interface {
	SaveReports(dir m.Path, reports []m.Report) error
	LoadReports(dir m.Path) ([]m.Report, error)

	// LoadShardReports collects reports from shard_* subdirectories so a
	// sharded CI run can be merged into a single report set.
	LoadShardReports(dir m.Path) ([]m.Report, error)
}

// YAMLReportStore stores reports as a single YAML document per directory.
type YAMLReportStore struct{}

// NewReportStore constructs a YAMLReportStore.
func NewReportStore() *YAMLReportStore {
	return &YAMLReportStore{}
}

// SaveReports writes reports.yaml into dir, creating it when necessary.
func (s *YAMLReportStore) SaveReports(dir m.Path, reports []m.Report) error {
	if err := os.MkdirAll(string(dir), 0o755); err != nil {
		return fmt.Errorf("create reports dir: %w", err)
	}

	data, err := yaml.Marshal(reports)
	if err != nil {
		return fmt.Errorf("marshal reports: %w", err)
	}

	target := filepath.Join(string(dir), reportsFileName)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}

	return nil
}

// LoadReports reads reports.yaml from dir.
func (s *YAMLReportStore) LoadReports(dir m.Path) ([]m.Report, error) {
	target := filepath.Join(string(dir), reportsFileName)

	data, err := os.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", target, err)
	}

	var reports []m.Report
	if err := yaml.Unmarshal(data, &reports); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", target, err)
	}

	return reports, nil
}

// LoadShardReports merges reports from every shard_* subdirectory of dir.
func (s *YAMLReportStore) LoadShardReports(dir m.Path) ([]m.Report, error) {
	shards, err := filepath.Glob(filepath.Join(string(dir), "shard_*"))
	if err != nil {
		return nil, fmt.Errorf("glob shards: %w", err)
	}

	sort.Strings(shards)

	var merged []m.Report

	for _, shard := range shards {
		reports, err := s.LoadReports(m.Path(shard))
		if err != nil {
			return nil, err
		}

		merged = append(merged, reports...)
	}

	return merged, nil
}
