package domain

import (
	"sort"

	m "rift.dev/pkg/rift/internal/model"
	pkg "rift.dev/pkg/rift/pkg"
)

// AggregateArgs carries the context for assembling one report.
type AggregateArgs struct {
	// Reused holds entries carried over from a previous report of the same
	// scenario fingerprint.
	Reused []m.ReportEntry
	// Order lists the test IDs in pool order; report entries follow it.
	Order []string
	// Partial marks a report truncated by cancellation.
	Partial bool
}

// Aggregator collects the verdicts of a scenario run into a Report. Purely
// additive: no verdict is dropped or deduplicated, every test case yields
// exactly one entry.
type Aggregator interface {
	Aggregate(scenario m.Scenario, verdicts pkg.FileSpill[m.Verdict], args AggregateArgs) (m.Report, error)
}

type aggregator struct{}

// NewAggregator constructs the standard Aggregator.
func NewAggregator() Aggregator {
	return &aggregator{}
}

// Aggregate groups verdicts by category, preserves per-test evidence for
// every conflicting or inconclusive trial, and produces summary counts.
func (a *aggregator) Aggregate(scenario m.Scenario, verdicts pkg.FileSpill[m.Verdict], args AggregateArgs) (m.Report, error) {
	entries := make([]m.ReportEntry, 0, len(args.Reused)+int(verdicts.Len()))
	entries = append(entries, args.Reused...)

	err := verdicts.Range(func(_ uint64, verdict m.Verdict) error {
		entries = append(entries, entryFromVerdict(verdict))
		return nil
	})
	if err != nil {
		return m.Report{}, err
	}

	sortEntries(entries, args.Order)

	report := m.Report{
		Project:     scenario.Project,
		Fingerprint: scenario.Fingerprint(),
		Partial:     args.Partial,
		Entries:     entries,
	}

	for _, entry := range entries {
		report.Summary.Total++

		switch entry.Kind {
		case m.NoConflict:
			report.Summary.NoConflict++
		case m.SemanticConflict:
			report.Summary.SemanticConflict++
		case m.Inconclusive:
			report.Summary.Inconclusive++
		}
	}

	return report, nil
}

// entryFromVerdict keeps the four raw outcomes only when they are needed as
// evidence.
func entryFromVerdict(verdict m.Verdict) m.ReportEntry {
	entry := m.ReportEntry{
		TestID:    verdict.Trial.Test.ID,
		Kind:      verdict.Kind,
		Rationale: verdict.Rationale,
	}

	if verdict.Kind != m.NoConflict {
		entry.Outcomes = verdict.Trial.Outcomes
	}

	return entry
}

// sortEntries restores pool order. Entries for unknown IDs sort after the
// pool, keeping their relative order.
func sortEntries(entries []m.ReportEntry, order []string) {
	position := make(map[string]int, len(order))
	for i, id := range order {
		position[id] = i
	}

	rank := func(entry m.ReportEntry) int {
		if p, ok := position[entry.TestID]; ok {
			return p
		}

		return len(order)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return rank(entries[i]) < rank(entries[j])
	})
}
