package model

// VerdictKind categorizes the classification of one trial.
type VerdictKind string

const (
	// NoConflict means the merge behavior is consistent with the combined
	// branch changes for this test case.
	NoConflict VerdictKind = "no_conflict"
	// SemanticConflict means the merge behavior diverges from what the
	// branch changes imply.
	SemanticConflict VerdictKind = "semantic_conflict"
	// Inconclusive means the trial could not be judged (unstable or
	// malformed outcomes).
	Inconclusive VerdictKind = "inconclusive"
)

// Rationale is the short tag explaining why a verdict was reached.
type Rationale string

// Rationale tags, one per branch of the decision rule.
const (
	RationaleNoBehaviorChange       Rationale = "no-behavior-change"
	RationaleMergeDivergesFromBase  Rationale = "merge-diverges-from-unchanged-base"
	RationaleLeftChangePreserved    Rationale = "left-change-preserved"
	RationaleLeftChangeLost         Rationale = "left-change-lost-or-altered"
	RationaleRightChangePreserved   Rationale = "right-change-preserved"
	RationaleRightChangeLost        Rationale = "right-change-lost-or-altered"
	RationaleConvergentChangeKept   Rationale = "convergent-change-preserved"
	RationaleConvergentChangeLost   Rationale = "convergent-change-lost"
	RationaleInterferenceResolved   Rationale = "interfering-changes-resolved"
	RationaleInterferenceUnresolved Rationale = "interfering-changes-unresolved"
	RationaleUnstableOutcome        Rationale = "unstable-outcome"
	RationaleMalformedTrial         Rationale = "malformed-trial"
)

// Verdict is the classification of one trial, carrying the trial itself as
// evidence.
type Verdict struct {
	Kind      VerdictKind `json:"kind"`
	Rationale Rationale   `json:"rationale"`
	Trial     TrialResult `json:"trial"`
}
