package adapter

import (
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"
	m "rift.dev/pkg/rift/internal/model"
)

// poolFile mirrors the on-disk YAML shape of a test pool.
type poolFile struct {
	Tests []m.TestCase `yaml:"tests"`
}

// PoolStore is the boundary to the external test-case producer. The core
// imposes only the structural shape of a call; whether the
// pool came from an AI generator, a search-based generator, or was written by
// hand is invisible behind this interface.
type PoolStore interface {
	LoadPool(path m.Path) ([]m.TestCase, error)
}

// LocalPoolStore reads YAML test pool files.
type LocalPoolStore struct {
	fsAdapter SourceFSAdapter
}

// NewPoolStore constructs a LocalPoolStore backed by the provided filesystem
// adapter.
func NewPoolStore(fsAdapter SourceFSAdapter) *LocalPoolStore {
	return &LocalPoolStore{fsAdapter: fsAdapter}
}

// LoadPool parses a pool file and validates the structural contract: every
// test case has a unique identifier and a target callable.
func (s *LocalPoolStore) LoadPool(path m.Path) ([]m.TestCase, error) {
	content, err := s.fsAdapter.ReadFile(path)
	if err != nil {
		slog.Error("failed to read pool file", "path", path, "error", err)
		return nil, fmt.Errorf("read pool file: %w", err)
	}

	var file poolFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		slog.Error("failed to parse pool file", "path", path, "error", err)
		return nil, fmt.Errorf("parse pool file: %w", err)
	}

	seen := make(map[string]bool, len(file.Tests))

	for i, test := range file.Tests {
		if test.ID == "" {
			return nil, fmt.Errorf("pool %s: test %d has no id", path, i)
		}

		if seen[test.ID] {
			return nil, fmt.Errorf("pool %s: duplicate test id %q", path, test.ID)
		}

		seen[test.ID] = true

		if test.Target == "" {
			return nil, fmt.Errorf("pool %s: test %q has no target", path, test.ID)
		}
	}

	slog.Debug("loaded test pool", "path", path, "tests", len(file.Tests))

	return file.Tests, nil
}
