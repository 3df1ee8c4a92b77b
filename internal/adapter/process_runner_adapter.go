// Package adapter contains infrastructure adapters for the Rift CLI.
package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	m "rift.dev/pkg/rift/internal/model"
)

// ProbeRequest describes one isolated variant invocation.
type ProbeRequest struct {
	ModulePath    m.Path `json:"module_path"`
	Target        string `json:"target"`
	Setup         []any  `json:"setup,omitempty"`
	Args          []any  `json:"args,omitempty"`
	CaptureStdout bool   `json:"capture_stdout,omitempty"`
}

// ProbeResult is the raw result of one probe process. Payload holds the JSON
// line emitted by the probe; it is empty when the process died before
// reporting (crash or timeout).
type ProbeResult struct {
	Payload  []byte
	Stderr   string
	ExitCode int
	TimedOut bool
}

// ProcessRunnerAdapter abstracts the isolated execution boundary. Every call
// spawns a fresh process so variants never share interpreter state, import
// caches, or file handles.
type ProcessRunnerAdapter interface {
	// RunProbe executes one probe with a wall-clock timeout. The returned
	// error reports a failure to launch the process at all; timeouts and
	// abnormal exits are reported inside ProbeResult.
	RunProbe(ctx context.Context, request ProbeRequest, timeout time.Duration) (ProbeResult, error)
}

// PythonProcessRunnerAdapter runs probes under a python3 interpreter.
type PythonProcessRunnerAdapter struct {
	interpreter string
}

// NewPythonProcessRunnerAdapter constructs a PythonProcessRunnerAdapter using
// the default python3 interpreter from PATH.
func NewPythonProcessRunnerAdapter() *PythonProcessRunnerAdapter {
	return &PythonProcessRunnerAdapter{interpreter: "python3"}
}

// NewPythonProcessRunnerAdapterWithInterpreter constructs an adapter bound to
// a specific interpreter binary.
func NewPythonProcessRunnerAdapterWithInterpreter(interpreter string) *PythonProcessRunnerAdapter {
	return &PythonProcessRunnerAdapter{interpreter: interpreter}
}

// RunProbe spawns one interpreter process for the request and waits for it to
// finish or run out of time.
func (a *PythonProcessRunnerAdapter) RunProbe(ctx context.Context, request ProbeRequest, timeout time.Duration) (ProbeResult, error) {
	input, err := json.Marshal(request)
	if err != nil {
		return ProbeResult{}, fmt.Errorf("encode probe request: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, a.interpreter, "-c", probeScript)
	cmd.Stdin = bytes.NewReader(input)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	configureProbeProcess(cmd)

	cmd.Cancel = func() error {
		terminateProbeProcess(cmd)
		return nil
	}

	runErr := cmd.Run()

	result := ProbeResult{
		Payload: lastLine(stdout.Bytes()),
		Stderr:  stderr.String(),
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		result.TimedOut = true
		slog.Debug("probe timed out", "module", request.ModulePath, "target", request.Target, "timeout", timeout)

		return result, nil
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			slog.Error("failed to launch probe", "interpreter", a.interpreter, "error", runErr)
			return result, fmt.Errorf("launch probe: %w", runErr)
		}

		result.ExitCode = probeExitCode(exitErr)
	}

	return result, nil
}

// lastLine returns the final non-empty line of the probe's stdout, which is
// where the payload lives. Nil when the process produced nothing.
func lastLine(output []byte) []byte {
	trimmed := bytes.TrimRight(output, "\n")
	if len(trimmed) == 0 {
		return nil
	}

	if idx := bytes.LastIndexByte(trimmed, '\n'); idx >= 0 {
		return trimmed[idx+1:]
	}

	return trimmed
}
