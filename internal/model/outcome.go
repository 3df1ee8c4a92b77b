package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// OutcomeKind tags the normalized result of one variant execution.
type OutcomeKind string

const (
	// OutcomeReturned means the callable returned a value.
	OutcomeReturned OutcomeKind = "returned"
	// OutcomeRaised means the callable raised an uncaught exception.
	OutcomeRaised OutcomeKind = "raised"
	// OutcomeTimedOut means the execution exceeded the wall-clock timeout.
	OutcomeTimedOut OutcomeKind = "timed_out"
	// OutcomeCrashed means the isolated process terminated abnormally.
	OutcomeCrashed OutcomeKind = "crashed"
	// OutcomeUnstable means repeated executions disagreed and no majority
	// emerged within the retry budget. Trials carrying it are inconclusive.
	OutcomeUnstable OutcomeKind = "unstable"
)

// LoadErrorType is the exception type reported when a variant's callable
// surface cannot be loaded or resolved (missing symbol, import error).
const LoadErrorType = "LoadError"

// Outcome is the normalized result of executing one TestCase against one
// variant. Immutable.
type Outcome struct {
	Kind OutcomeKind `json:"kind"`

	// Value is the canonical representation of the returned value. Set only
	// for OutcomeReturned.
	Value string `json:"value,omitempty"`

	// Stdout is the captured standard output, present only when the test
	// case requested capture. It is part of the return representation.
	Stdout string `json:"stdout,omitempty"`

	// ExceptionType and Message describe an OutcomeRaised.
	ExceptionType string `json:"exception_type,omitempty"`
	Message       string `json:"message,omitempty"`

	// ExitCode holds the abnormal exit code for OutcomeCrashed. Negative
	// values report the terminating signal number.
	ExitCode int `json:"exit_code,omitempty"`
}

// Returned builds an Outcome for a callable that returned canonical value.
func Returned(value string) Outcome {
	return Outcome{Kind: OutcomeReturned, Value: value}
}

// Raised builds an Outcome for an uncaught exception.
func Raised(exceptionType, message string) Outcome {
	return Outcome{Kind: OutcomeRaised, ExceptionType: exceptionType, Message: message}
}

// TimedOut builds an Outcome for an execution that exceeded its timeout.
func TimedOut() Outcome {
	return Outcome{Kind: OutcomeTimedOut}
}

// Crashed builds an Outcome for an abnormally terminated process.
func Crashed(exitCode int) Outcome {
	return Outcome{Kind: OutcomeCrashed, ExitCode: exitCode}
}

// Unstable builds the Outcome used when retries produced no majority.
func Unstable() Outcome {
	return Outcome{Kind: OutcomeUnstable}
}

// Equals compares two Outcomes structurally. Returned values compare on
// their canonical representation (including captured stdout); Raised compares
// exception type always and message only when strictMessages is set.
func (o Outcome) Equals(other Outcome, strictMessages bool) bool {
	if o.Kind != other.Kind {
		return false
	}

	switch o.Kind {
	case OutcomeReturned:
		return o.Value == other.Value && o.Stdout == other.Stdout
	case OutcomeRaised:
		if o.ExceptionType != other.ExceptionType {
			return false
		}

		if strictMessages {
			return o.Message == other.Message
		}

		return true
	case OutcomeTimedOut, OutcomeUnstable:
		return true
	case OutcomeCrashed:
		return o.ExitCode == other.ExitCode
	}

	return false
}

// String renders a short human-readable form used in logs and UI lines.
func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeReturned:
		return fmt.Sprintf("returned %s", o.Value)
	case OutcomeRaised:
		return fmt.Sprintf("raised %s(%s)", o.ExceptionType, o.Message)
	case OutcomeTimedOut:
		return "timed out"
	case OutcomeCrashed:
		return fmt.Sprintf("crashed (exit %d)", o.ExitCode)
	case OutcomeUnstable:
		return "unstable"
	}

	return "unknown"
}

// CanonicalJSON re-encodes a JSON value deterministically: object keys are
// sorted and numbers keep their literal form. Unordered containers must have
// been serialized in sorted order by the producer; JSON itself has none.
func CanonicalJSON(raw []byte) (string, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return "", fmt.Errorf("decode value: %w", err)
	}

	var buffer bytes.Buffer

	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(value); err != nil {
		return "", fmt.Errorf("encode value: %w", err)
	}

	return string(bytes.TrimRight(buffer.Bytes(), "\n")), nil
}
