package model

// TrialResult pairs a TestCase with the four Outcomes observed when running
// it against every variant. Produced once per test case; immutable.
type TrialResult struct {
	Test     TestCase            `json:"test"`
	Outcomes map[Variant]Outcome `json:"outcomes"`
}

// Outcome returns the Outcome recorded for the named variant.
func (t TrialResult) Outcome(v Variant) (Outcome, bool) {
	outcome, ok := t.Outcomes[v]
	return outcome, ok
}

// Complete reports whether the trial carries exactly one Outcome per variant.
// An incomplete trial is a defect and is classified as inconclusive.
func (t TrialResult) Complete() bool {
	for _, variant := range Variants() {
		if _, ok := t.Outcomes[variant]; !ok {
			return false
		}
	}

	return len(t.Outcomes) == len(Variants())
}

// Stable reports whether none of the outcomes carries the unstable tag.
func (t TrialResult) Stable() bool {
	for _, outcome := range t.Outcomes {
		if outcome.Kind == OutcomeUnstable {
			return false
		}
	}

	return true
}
