package adapter

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"gopkg.in/yaml.v3"
	m "rift.dev/pkg/rift/internal/model"
)

// scenarioFile mirrors the on-disk YAML shape of a merge scenario.
type scenarioFile struct {
	Project  string            `yaml:"project"`
	Variants map[string]string `yaml:"variants"`
	Targets  []string          `yaml:"targets"`
}

// ScenarioStore loads merge scenarios from disk. The core consumes the
// already-resolved Scenario value; path resolution and hashing live here.
type ScenarioStore interface {
	LoadScenario(path m.Path) (m.Scenario, error)
}

// LocalScenarioStore reads YAML scenario files.
type LocalScenarioStore struct {
	fsAdapter SourceFSAdapter
}

// NewScenarioStore constructs a LocalScenarioStore backed by the provided
// filesystem adapter.
func NewScenarioStore(fsAdapter SourceFSAdapter) *LocalScenarioStore {
	return &LocalScenarioStore{fsAdapter: fsAdapter}
}

// LoadScenario parses a scenario file, resolves the four variant paths
// relative to it, and fingerprints each variant file.
func (s *LocalScenarioStore) LoadScenario(path m.Path) (m.Scenario, error) {
	content, err := s.fsAdapter.ReadFile(path)
	if err != nil {
		slog.Error("failed to read scenario file", "path", path, "error", err)
		return m.Scenario{}, fmt.Errorf("read scenario file: %w", err)
	}

	var file scenarioFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		slog.Error("failed to parse scenario file", "path", path, "error", err)
		return m.Scenario{}, fmt.Errorf("parse scenario file: %w", err)
	}

	scenario := m.Scenario{
		Project: file.Project,
		Targets: file.Targets,
	}

	baseDir := filepath.Dir(string(path))

	for _, variant := range m.Variants() {
		relative, ok := file.Variants[string(variant)]
		if !ok || relative == "" {
			return m.Scenario{}, fmt.Errorf("scenario %s: missing %q variant", path, variant)
		}

		source, err := s.loadVariantSource(variant, baseDir, relative)
		if err != nil {
			return m.Scenario{}, err
		}

		switch variant {
		case m.VariantBase:
			scenario.Base = source
		case m.VariantLeft:
			scenario.Left = source
		case m.VariantRight:
			scenario.Right = source
		case m.VariantMerge:
			scenario.Merge = source
		}
	}

	return scenario, nil
}

func (s *LocalScenarioStore) loadVariantSource(variant m.Variant, baseDir, relative string) (m.VariantSource, error) {
	file := relative
	if !filepath.IsAbs(file) {
		file = filepath.Join(baseDir, file)
	}

	if _, err := s.fsAdapter.FileInfo(m.Path(file)); err != nil {
		slog.Error("variant file unavailable", "variant", variant, "file", file, "error", err)
		return m.VariantSource{}, fmt.Errorf("%s variant file: %w", variant, err)
	}

	hash, err := s.fsAdapter.HashFile(m.Path(file))
	if err != nil {
		return m.VariantSource{}, fmt.Errorf("hash %s variant file: %w", variant, err)
	}

	return m.VariantSource{Variant: variant, File: m.Path(file), Hash: hash}, nil
}
