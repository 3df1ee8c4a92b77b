package domain

import (
	m "rift.dev/pkg/rift/internal/model"
)

// Classifier turns a fully assembled trial into a Verdict. Classification is
// a pure function of the four outcomes: no hidden state, no ordering
// dependence between test cases.
type Classifier interface {
	Classify(trial m.TrialResult, strictMessages bool) m.Verdict
}

type classifier struct{}

// NewClassifier constructs the standard Classifier.
func NewClassifier() Classifier {
	return &classifier{}
}

// Classify applies the decision rule. A correct merge preserves every
// branch's behavioral delta; when both branches changed behavior differently,
// the merge author must have picked one side; picking neither, or silently
// reverting to base, is a conflict.
func (c *classifier) Classify(trial m.TrialResult, strictMessages bool) m.Verdict {
	if !trial.Complete() {
		return verdict(m.Inconclusive, m.RationaleMalformedTrial, trial)
	}

	if !trial.Stable() {
		return verdict(m.Inconclusive, m.RationaleUnstableOutcome, trial)
	}

	base := trial.Outcomes[m.VariantBase]
	left := trial.Outcomes[m.VariantLeft]
	right := trial.Outcomes[m.VariantRight]
	merge := trial.Outcomes[m.VariantMerge]

	leftChanged := !left.Equals(base, strictMessages)
	rightChanged := !right.Equals(base, strictMessages)

	switch {
	case !leftChanged && !rightChanged:
		if merge.Equals(base, strictMessages) {
			return verdict(m.NoConflict, m.RationaleNoBehaviorChange, trial)
		}

		return verdict(m.SemanticConflict, m.RationaleMergeDivergesFromBase, trial)

	case leftChanged && !rightChanged:
		if merge.Equals(left, strictMessages) {
			return verdict(m.NoConflict, m.RationaleLeftChangePreserved, trial)
		}

		return verdict(m.SemanticConflict, m.RationaleLeftChangeLost, trial)

	case !leftChanged && rightChanged:
		if merge.Equals(right, strictMessages) {
			return verdict(m.NoConflict, m.RationaleRightChangePreserved, trial)
		}

		return verdict(m.SemanticConflict, m.RationaleRightChangeLost, trial)
	}

	// Both branches changed behavior.
	if left.Equals(right, strictMessages) {
		if merge.Equals(left, strictMessages) {
			return verdict(m.NoConflict, m.RationaleConvergentChangeKept, trial)
		}

		return verdict(m.SemanticConflict, m.RationaleConvergentChangeLost, trial)
	}

	// Interfering changes: the merge must match one side to count as a
	// deliberate resolution. Matching base is a regression to stale behavior.
	if merge.Equals(left, strictMessages) || merge.Equals(right, strictMessages) {
		return verdict(m.NoConflict, m.RationaleInterferenceResolved, trial)
	}

	return verdict(m.SemanticConflict, m.RationaleInterferenceUnresolved, trial)
}

func verdict(kind m.VerdictKind, rationale m.Rationale, trial m.TrialResult) m.Verdict {
	return m.Verdict{Kind: kind, Rationale: rationale, Trial: trial}
}
