package domain

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "rift.dev/pkg/rift/internal/model"
)

// scriptedRunner replays a fixed sequence of outcomes per variant, repeating
// the last one when the script runs out.
type scriptedRunner struct {
	mu      sync.Mutex
	scripts map[m.Variant][]m.Outcome
	calls   map[m.Variant]int
}

func newScriptedRunner(scripts map[m.Variant][]m.Outcome) *scriptedRunner {
	return &scriptedRunner{
		scripts: scripts,
		calls:   make(map[m.Variant]int),
	}
}

func (r *scriptedRunner) Run(_ context.Context, source m.VariantSource, _ m.TestCase, _ time.Duration) m.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	index := r.calls[source.Variant]
	r.calls[source.Variant]++

	script := r.scripts[source.Variant]
	if index >= len(script) {
		index = len(script) - 1
	}

	return script[index]
}

func (r *scriptedRunner) callCount(variant m.Variant) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.calls[variant]
}

func orchestratorScenario() m.Scenario {
	return m.Scenario{
		Project: "checkout",
		Base:    m.VariantSource{Variant: m.VariantBase, File: "base.py", Hash: "a"},
		Left:    m.VariantSource{Variant: m.VariantLeft, File: "left.py", Hash: "b"},
		Right:   m.VariantSource{Variant: m.VariantRight, File: "right.py", Hash: "c"},
		Merge:   m.VariantSource{Variant: m.VariantMerge, File: "merge.py", Hash: "d"},
	}
}

func TestExecute_AssemblesAllFourOutcomes(t *testing.T) {
	runner := newScriptedRunner(map[m.Variant][]m.Outcome{
		m.VariantBase:  {m.Returned(`1`)},
		m.VariantLeft:  {m.Returned(`2`)},
		m.VariantRight: {m.Raised("ValueError", "boom")},
		m.VariantMerge: {m.Returned(`2`)},
	})

	orch := NewOrchestrator(runner)
	test := m.TestCase{ID: "t1", Target: "cart.total"}

	trial := orch.Execute(context.Background(), orchestratorScenario(), test, ExecConfig{Timeout: time.Second})

	require.True(t, trial.Complete())
	assert.Equal(t, test, trial.Test)
	assert.Equal(t, m.Returned(`1`), trial.Outcomes[m.VariantBase])
	assert.Equal(t, m.Raised("ValueError", "boom"), trial.Outcomes[m.VariantRight])

	for _, variant := range m.Variants() {
		assert.Equal(t, 1, runner.callCount(variant), "no retries without a budget")
	}
}

func TestExecute_ConfirmationRunForStableOutcome(t *testing.T) {
	runner := newScriptedRunner(map[m.Variant][]m.Outcome{
		m.VariantBase:  {m.Returned(`1`)},
		m.VariantLeft:  {m.Returned(`1`)},
		m.VariantRight: {m.Returned(`1`)},
		m.VariantMerge: {m.Returned(`1`)},
	})

	orch := NewOrchestrator(runner)

	trial := orch.Execute(context.Background(), orchestratorScenario(), m.TestCase{ID: "t1"}, ExecConfig{
		Timeout: time.Second,
		Retries: 3,
	})

	assert.Equal(t, m.Returned(`1`), trial.Outcomes[m.VariantMerge])

	for _, variant := range m.Variants() {
		assert.Equal(t, 2, runner.callCount(variant), "stable outcomes stop after one confirmation")
	}
}

func TestExecute_FlakyVariantSettlesOnMajority(t *testing.T) {
	runner := newScriptedRunner(map[m.Variant][]m.Outcome{
		m.VariantBase:  {m.Returned(`1`)},
		m.VariantLeft:  {m.Returned(`7`), m.Returned(`8`), m.Returned(`7`), m.Returned(`7`)},
		m.VariantRight: {m.Returned(`1`)},
		m.VariantMerge: {m.Returned(`7`)},
	})

	orch := NewOrchestrator(runner)

	trial := orch.Execute(context.Background(), orchestratorScenario(), m.TestCase{ID: "t1"}, ExecConfig{
		Timeout: time.Second,
		Retries: 3,
	})

	assert.Equal(t, m.Returned(`7`), trial.Outcomes[m.VariantLeft])
	assert.Equal(t, 4, runner.callCount(m.VariantLeft), "full retry budget spent on the flaky variant")
	assert.Equal(t, 2, runner.callCount(m.VariantBase), "other variants are never re-executed")
}

func TestExecute_NoMajorityYieldsUnstable(t *testing.T) {
	runner := newScriptedRunner(map[m.Variant][]m.Outcome{
		m.VariantBase:  {m.Returned(`1`)},
		m.VariantLeft:  {m.Returned(`7`), m.Returned(`8`)},
		m.VariantRight: {m.Returned(`1`)},
		m.VariantMerge: {m.Returned(`1`)},
	})

	orch := NewOrchestrator(runner)

	trial := orch.Execute(context.Background(), orchestratorScenario(), m.TestCase{ID: "t1"}, ExecConfig{
		Timeout: time.Second,
		Retries: 1,
	})

	assert.Equal(t, m.Unstable(), trial.Outcomes[m.VariantLeft])
	assert.False(t, trial.Stable())
}

func TestExecute_TimeoutIsNeverRetried(t *testing.T) {
	runner := newScriptedRunner(map[m.Variant][]m.Outcome{
		m.VariantBase:  {m.Returned(`1`)},
		m.VariantLeft:  {m.TimedOut()},
		m.VariantRight: {m.Returned(`1`)},
		m.VariantMerge: {m.Returned(`1`)},
	})

	orch := NewOrchestrator(runner)

	trial := orch.Execute(context.Background(), orchestratorScenario(), m.TestCase{ID: "t1"}, ExecConfig{
		Timeout: time.Second,
		Retries: 5,
	})

	assert.Equal(t, m.TimedOut(), trial.Outcomes[m.VariantLeft])
	assert.Equal(t, 1, runner.callCount(m.VariantLeft))
}

func TestExecute_CancelledContextFillsTimedOut(t *testing.T) {
	runner := newScriptedRunner(map[m.Variant][]m.Outcome{})

	orch := NewOrchestrator(runner)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	trial := orch.Execute(ctx, orchestratorScenario(), m.TestCase{ID: "t1"}, ExecConfig{Timeout: time.Second})

	require.True(t, trial.Complete())

	for _, variant := range m.Variants() {
		assert.Equal(t, m.TimedOut(), trial.Outcomes[variant])
		assert.Equal(t, 0, runner.callCount(variant))
	}
}

func TestMajorityOutcome(t *testing.T) {
	a := m.Returned(`1`)
	b := m.Returned(`2`)

	winner, ok := majorityOutcome([]m.Outcome{a, b, a})
	assert.True(t, ok)
	assert.Equal(t, a, winner)

	_, ok = majorityOutcome([]m.Outcome{a, b})
	assert.False(t, ok)
}
