package model

// ReportEntry records the verdict for a single test case. Raw outcomes are
// preserved only for conflicting or inconclusive trials.
type ReportEntry struct {
	TestID    string              `json:"test_id"`
	Kind      VerdictKind         `json:"kind"`
	Rationale Rationale           `json:"rationale"`
	Outcomes  map[Variant]Outcome `json:"outcomes,omitempty"`
}

// Summary holds the per-category counts for a scenario run.
type Summary struct {
	Total            int `json:"total"`
	NoConflict       int `json:"no_conflict"`
	SemanticConflict int `json:"semantic_conflict"`
	Inconclusive     int `json:"inconclusive"`
}

// Report is the scenario-level conflict report: one entry per test case in
// pool order, plus summary counts. Written once, never mutated afterwards.
type Report struct {
	Project     string        `json:"project"`
	Fingerprint string        `json:"fingerprint"`
	Partial     bool          `json:"partial,omitempty"`
	Entries     []ReportEntry `json:"entries"`
	Summary     Summary       `json:"summary"`
}

// Count returns the summary count for the given verdict kind.
func (s Summary) Count(kind VerdictKind) int {
	switch kind {
	case NoConflict:
		return s.NoConflict
	case SemanticConflict:
		return s.SemanticConflict
	case Inconclusive:
		return s.Inconclusive
	}

	return 0
}
