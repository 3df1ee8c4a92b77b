// Package model defines the data structures for semantic conflict detection.
package model

// Path represents a file system path.
type Path string

// Variant identifies one of the four program versions under comparison.
type Variant string

const (
	// VariantBase is the common ancestor of both branches.
	VariantBase Variant = "base"
	// VariantLeft is the first parent branch.
	VariantLeft Variant = "left"
	// VariantRight is the second parent branch.
	VariantRight Variant = "right"
	// VariantMerge is the textual merge of left and right.
	VariantMerge Variant = "merge"
)

// Variants lists all four variants in canonical order.
func Variants() [4]Variant {
	return [4]Variant{VariantBase, VariantLeft, VariantRight, VariantMerge}
}

// VariantSource points at the source file backing one variant.
type VariantSource struct {
	Variant Variant `json:"variant"`
	File    Path    `json:"file"`
	Hash    string  `json:"hash,omitempty"`
}

// Scenario identifies the four source locations of a merge scenario and the
// callables to probe. Immutable once loaded.
type Scenario struct {
	Project string        `json:"project"`
	Base    VariantSource `json:"base"`
	Left    VariantSource `json:"left"`
	Right   VariantSource `json:"right"`
	Merge   VariantSource `json:"merge"`
	Targets []string      `json:"targets,omitempty"`
}

// Source returns the VariantSource for the named variant.
func (s Scenario) Source(v Variant) VariantSource {
	switch v {
	case VariantBase:
		return s.Base
	case VariantLeft:
		return s.Left
	case VariantRight:
		return s.Right
	case VariantMerge:
		return s.Merge
	}

	return VariantSource{}
}

// Sources returns the four variant sources in canonical order.
func (s Scenario) Sources() [4]VariantSource {
	return [4]VariantSource{s.Base, s.Left, s.Right, s.Merge}
}

// Fingerprint combines the per-variant file hashes into a stable identifier
// for the scenario. Two runs against byte-identical variants share it.
func (s Scenario) Fingerprint() string {
	return s.Base.Hash + ":" + s.Left.Hash + ":" + s.Right.Hash + ":" + s.Merge.Hash
}
