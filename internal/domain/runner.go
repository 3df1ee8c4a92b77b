// Package domain implements the differential execution and conflict
// classification engine.
package domain

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"rift.dev/pkg/rift/internal/adapter"
	m "rift.dev/pkg/rift/internal/model"
)

// VariantRunner executes one test case against one variant inside an
// isolated execution boundary and produces a normalized Outcome. It does not
// retry; retry policy belongs to the Orchestrator.
type VariantRunner interface {
	Run(ctx context.Context, source m.VariantSource, test m.TestCase, timeout time.Duration) m.Outcome
}

type variantRunner struct {
	procAdapter adapter.ProcessRunnerAdapter
}

// NewVariantRunner constructs a VariantRunner backed by the provided process
// adapter.
func NewVariantRunner(procAdapter adapter.ProcessRunnerAdapter) VariantRunner {
	return &variantRunner{procAdapter: procAdapter}
}

// probePayload mirrors the JSON line the probe process emits.
type probePayload struct {
	Kind    string          `json:"kind"`
	Value   json.RawMessage `json:"value"`
	Stdout  string          `json:"stdout"`
	Type    string          `json:"type"`
	Message string          `json:"message"`
}

// Run spawns one probe and converts whatever happened into an Outcome. All
// failure modes are evidence, never errors: a variant that cannot even be
// loaded reports Raised(LoadError) so the scenario keeps processing.
func (r *variantRunner) Run(ctx context.Context, source m.VariantSource, test m.TestCase, timeout time.Duration) m.Outcome {
	request := adapter.ProbeRequest{
		ModulePath:    source.File,
		Target:        test.Target,
		Setup:         test.Setup,
		Args:          test.Args,
		CaptureStdout: test.CaptureStdout,
	}

	result, err := r.procAdapter.RunProbe(ctx, request, timeout)
	if err != nil {
		slog.Error("probe launch failed", "variant", source.Variant, "test", test.ID, "error", err)
		return m.Raised(m.LoadErrorType, err.Error())
	}

	if result.TimedOut {
		return m.TimedOut()
	}

	if len(result.Payload) == 0 {
		slog.Debug("probe died without payload", "variant", source.Variant, "test", test.ID, "exitCode", result.ExitCode, "stderr", result.Stderr)
		return m.Crashed(result.ExitCode)
	}

	var payload probePayload
	if err := json.Unmarshal(result.Payload, &payload); err != nil {
		slog.Error("unreadable probe payload", "variant", source.Variant, "test", test.ID, "error", err)
		return m.Crashed(result.ExitCode)
	}

	return r.outcomeFromPayload(source, test, payload, result)
}

func (r *variantRunner) outcomeFromPayload(source m.VariantSource, test m.TestCase, payload probePayload, result adapter.ProbeResult) m.Outcome {
	switch payload.Kind {
	case "returned":
		canonical, err := m.CanonicalJSON(payload.Value)
		if err != nil {
			slog.Error("non-canonical probe value", "variant", source.Variant, "test", test.ID, "error", err)
			return m.Crashed(result.ExitCode)
		}

		outcome := m.Returned(canonical)
		outcome.Stdout = payload.Stdout

		return outcome

	case "raised":
		return m.Raised(payload.Type, payload.Message)

	case "load_error":
		return m.Raised(m.LoadErrorType, payload.Message)
	}

	slog.Error("unknown probe payload kind", "variant", source.Variant, "test", test.ID, "kind", payload.Kind)

	return m.Crashed(result.ExitCode)
}
