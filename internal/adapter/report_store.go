package adapter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	m "rift.dev/pkg/rift/internal/model"
)

const reportFileName = "report.json"

// ReportStore persists scenario reports. A report is written exactly once per
// run; LoadReport serves both the view command and incremental reuse.
type ReportStore interface {
	SaveReport(dir m.Path, report m.Report) error
	LoadReport(dir m.Path) (m.Report, error)
	ShardDirs(dir m.Path) ([]m.Path, error)
}

// LocalReportStore stores reports as JSON documents under a directory.
type LocalReportStore struct {
	fsAdapter SourceFSAdapter
}

// NewReportStore constructs a LocalReportStore backed by the provided
// filesystem adapter.
func NewReportStore(fsAdapter SourceFSAdapter) *LocalReportStore {
	return &LocalReportStore{fsAdapter: fsAdapter}
}

// SaveReport writes the report document to dir/report.json.
func (s *LocalReportStore) SaveReport(dir m.Path, report m.Report) error {
	if err := s.fsAdapter.MkdirAll(dir, 0o750); err != nil {
		slog.Error("failed to create reports dir", "dir", dir, "error", err)
		return fmt.Errorf("create reports dir: %w", err)
	}

	content, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	target := m.Path(filepath.Join(string(dir), reportFileName))
	if err := s.fsAdapter.WriteFile(target, content, 0o600); err != nil {
		slog.Error("failed to write report", "path", target, "error", err)
		return fmt.Errorf("write report: %w", err)
	}

	slog.Info("report written", "path", target, "entries", len(report.Entries))

	return nil
}

// LoadReport reads the report document from dir/report.json.
func (s *LocalReportStore) LoadReport(dir m.Path) (m.Report, error) {
	source := m.Path(filepath.Join(string(dir), reportFileName))

	content, err := s.fsAdapter.ReadFile(source)
	if err != nil {
		return m.Report{}, fmt.Errorf("read report: %w", err)
	}

	var report m.Report
	if err := json.Unmarshal(content, &report); err != nil {
		return m.Report{}, fmt.Errorf("parse report: %w", err)
	}

	return report, nil
}

// ShardDirs lists the shard_* subdirectories of a reports directory in
// shard-index order.
func (s *LocalReportStore) ShardDirs(dir m.Path) ([]m.Path, error) {
	entries, err := s.fsAdapter.ListDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list reports dir: %w", err)
	}

	var dirs []m.Path

	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), "shard_") {
			dirs = append(dirs, m.Path(filepath.Join(string(dir), entry.Name())))
		}
	}

	sort.Slice(dirs, func(i, j int) bool { return dirs[i] < dirs[j] })

	return dirs, nil
}
