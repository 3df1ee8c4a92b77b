package adapter

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "rift.dev/pkg/rift/internal/model"
)

const probeTestModule = `
def add(a, b):
    return a + b

def tags():
    return {"b", "a", "c"}

def pair():
    return (1, "x")

def boom():
    raise ValueError("bad quantity")

def speak():
    print("processing")
    return 1

def loop():
    while True:
        pass

class Counter:
    def __init__(self, start):
        self.start = start

    def bump(self, n):
        return self.start + n

class Basket:
    def __init__(self):
        self.items = []

def make_basket():
    return Basket()

def opaque():
    return object()

CALLS = 0

def tally():
    global CALLS
    CALLS += 1
    return CALLS
`

func requirePython(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}
}

func writeProbeModule(t *testing.T) m.Path {
	t.Helper()

	path := filepath.Join(t.TempDir(), "variant.py")
	require.NoError(t, os.WriteFile(path, []byte(probeTestModule), 0o600))

	return m.Path(path)
}

type testPayload struct {
	Kind    string          `json:"kind"`
	Value   json.RawMessage `json:"value"`
	Stdout  string          `json:"stdout"`
	Type    string          `json:"type"`
	Message string          `json:"message"`
}

func runTestProbe(t *testing.T, request ProbeRequest, timeout time.Duration) (ProbeResult, testPayload) {
	t.Helper()

	adapter := NewPythonProcessRunnerAdapter()

	result, err := adapter.RunProbe(context.Background(), request, timeout)
	require.NoError(t, err)

	var payload testPayload
	if len(result.Payload) > 0 {
		require.NoError(t, json.Unmarshal(result.Payload, &payload), "payload: %s", result.Payload)
	}

	return result, payload
}

func TestRunProbe_ModuleFunction(t *testing.T) {
	requirePython(t)

	_, payload := runTestProbe(t, ProbeRequest{
		ModulePath: writeProbeModule(t),
		Target:     "add",
		Args:       []any{2, 3},
	}, 30*time.Second)

	assert.Equal(t, "returned", payload.Kind)
	assert.JSONEq(t, `5`, string(payload.Value))
}

func TestRunProbe_SetsAreSerializedSorted(t *testing.T) {
	requirePython(t)

	_, payload := runTestProbe(t, ProbeRequest{
		ModulePath: writeProbeModule(t),
		Target:     "tags",
	}, 30*time.Second)

	assert.Equal(t, "returned", payload.Kind)
	assert.Equal(t, `["a", "b", "c"]`, string(payload.Value))
}

func TestRunProbe_PlainObjectsCanonicalizeStructurally(t *testing.T) {
	requirePython(t)

	request := ProbeRequest{
		ModulePath: writeProbeModule(t),
		Target:     "make_basket",
	}

	_, first := runTestProbe(t, request, 30*time.Second)
	_, second := runTestProbe(t, request, 30*time.Second)

	assert.Equal(t, "returned", first.Kind)
	assert.JSONEq(t, `{"Basket": {"items": []}}`, string(first.Value))
	assert.Equal(t, string(first.Value), string(second.Value))
}

func TestRunProbe_OpaqueValuesCanonicalizeWithoutAddresses(t *testing.T) {
	requirePython(t)

	request := ProbeRequest{
		ModulePath: writeProbeModule(t),
		Target:     "opaque",
	}

	_, first := runTestProbe(t, request, 30*time.Second)
	_, second := runTestProbe(t, request, 30*time.Second)

	assert.Equal(t, "returned", first.Kind)
	assert.NotContains(t, string(first.Value), "0x")
	assert.Equal(t, string(first.Value), string(second.Value))
}

func TestRunProbe_GlobalMutationsDoNotLeakAcrossInvocations(t *testing.T) {
	requirePython(t)

	request := ProbeRequest{
		ModulePath: writeProbeModule(t),
		Target:     "tally",
	}

	_, first := runTestProbe(t, request, 30*time.Second)
	_, second := runTestProbe(t, request, 30*time.Second)

	assert.JSONEq(t, `1`, string(first.Value))
	assert.JSONEq(t, `1`, string(second.Value), "module state must not survive into the next probe")
}

func TestRunProbe_TuplesBecomeLists(t *testing.T) {
	requirePython(t)

	_, payload := runTestProbe(t, ProbeRequest{
		ModulePath: writeProbeModule(t),
		Target:     "pair",
	}, 30*time.Second)

	assert.Equal(t, "returned", payload.Kind)
	assert.JSONEq(t, `[1, "x"]`, string(payload.Value))
}

func TestRunProbe_ClassTargetUsesSetupArgs(t *testing.T) {
	requirePython(t)

	_, payload := runTestProbe(t, ProbeRequest{
		ModulePath: writeProbeModule(t),
		Target:     "Counter.bump",
		Setup:      []any{10},
		Args:       []any{5},
	}, 30*time.Second)

	assert.Equal(t, "returned", payload.Kind)
	assert.JSONEq(t, `15`, string(payload.Value))
}

func TestRunProbe_UncaughtException(t *testing.T) {
	requirePython(t)

	_, payload := runTestProbe(t, ProbeRequest{
		ModulePath: writeProbeModule(t),
		Target:     "boom",
	}, 30*time.Second)

	assert.Equal(t, "raised", payload.Kind)
	assert.Equal(t, "ValueError", payload.Type)
	assert.Equal(t, "bad quantity", payload.Message)
}

func TestRunProbe_CapturedStdoutNeverCorruptsPayload(t *testing.T) {
	requirePython(t)

	_, payload := runTestProbe(t, ProbeRequest{
		ModulePath:    writeProbeModule(t),
		Target:        "speak",
		CaptureStdout: true,
	}, 30*time.Second)

	assert.Equal(t, "returned", payload.Kind)
	assert.JSONEq(t, `1`, string(payload.Value))
	assert.Equal(t, "processing\n", payload.Stdout)
}

func TestRunProbe_UncapturedStdoutIsDiscarded(t *testing.T) {
	requirePython(t)

	_, payload := runTestProbe(t, ProbeRequest{
		ModulePath: writeProbeModule(t),
		Target:     "speak",
	}, 30*time.Second)

	assert.Equal(t, "returned", payload.Kind)
	assert.Empty(t, payload.Stdout)
}

func TestRunProbe_MissingTargetIsLoadError(t *testing.T) {
	requirePython(t)

	_, payload := runTestProbe(t, ProbeRequest{
		ModulePath: writeProbeModule(t),
		Target:     "no_such_callable",
	}, 30*time.Second)

	assert.Equal(t, "load_error", payload.Kind)
	assert.Contains(t, payload.Message, "no_such_callable")
}

func TestRunProbe_MissingModuleIsLoadError(t *testing.T) {
	requirePython(t)

	_, payload := runTestProbe(t, ProbeRequest{
		ModulePath: m.Path(filepath.Join(t.TempDir(), "absent.py")),
		Target:     "add",
	}, 30*time.Second)

	assert.Equal(t, "load_error", payload.Kind)
}

func TestRunProbe_Timeout(t *testing.T) {
	requirePython(t)

	result, _ := runTestProbe(t, ProbeRequest{
		ModulePath: writeProbeModule(t),
		Target:     "loop",
	}, 2*time.Second)

	assert.True(t, result.TimedOut)
	assert.Empty(t, result.Payload)
}

func TestRunProbe_LaunchFailure(t *testing.T) {
	adapter := NewPythonProcessRunnerAdapterWithInterpreter("definitely-not-a-python")

	_, err := adapter.RunProbe(context.Background(), ProbeRequest{Target: "add"}, time.Second)
	assert.Error(t, err)
}

func TestLastLine(t *testing.T) {
	assert.Nil(t, lastLine(nil))
	assert.Nil(t, lastLine([]byte("\n\n")))
	assert.Equal(t, []byte(`{"kind":"returned"}`), lastLine([]byte("noise\n{\"kind\":\"returned\"}\n")))
	assert.Equal(t, []byte("single"), lastLine([]byte("single")))
}
