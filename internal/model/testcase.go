package model

// TestCase is an executable probe supplied by an external generator: a call
// description plus an identifier. The core only executes it against a
// variant and observes behavior; it is agnostic to how the case was produced.
type TestCase struct {
	ID string `json:"id" yaml:"id"`

	// Target is the dotted callable to invoke, e.g. "total" for a module
	// function or "DiscountCalculator.apply" for a method.
	Target string `json:"target" yaml:"target"`

	// Setup holds constructor arguments when Target is a method.
	Setup []any `json:"setup,omitempty" yaml:"setup"`

	// Args are the positional call arguments.
	Args []any `json:"args,omitempty" yaml:"args"`

	// CaptureStdout folds the probe's standard output into the canonical
	// return representation when set.
	CaptureStdout bool `json:"capture_stdout,omitempty" yaml:"capture_stdout"`
}
