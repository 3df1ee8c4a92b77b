package domain

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	m "rift.dev/pkg/rift/internal/model"
)

// ExecConfig carries the execution knobs for one scenario run.
type ExecConfig struct {
	// Timeout is the shared wall-clock bound for one variant invocation.
	Timeout time.Duration
	// Retries is the flakiness budget R: extra executions spent on a single
	// variant when its outcome is non-deterministic.
	Retries int
	// VariantParallel bounds how many of the four variant executions of a
	// trial run concurrently. Zero means all four.
	VariantParallel int
}

// Orchestrator executes one test case against all four variants and
// assembles a TrialResult. It always produces four Outcomes; every failure
// mode is recorded as evidence rather than propagated as a fault.
type Orchestrator interface {
	Execute(ctx context.Context, scenario m.Scenario, test m.TestCase, cfg ExecConfig) m.TrialResult
}

type orchestrator struct {
	runner VariantRunner
}

// NewOrchestrator constructs an Orchestrator backed by the provided variant
// runner.
func NewOrchestrator(runner VariantRunner) Orchestrator {
	return &orchestrator{runner: runner}
}

// Execute runs the four variants, concurrently up to the configured bound.
// The variants are independent; the classifier only ever sees the fully
// assembled trial.
func (o *orchestrator) Execute(ctx context.Context, scenario m.Scenario, test m.TestCase, cfg ExecConfig) m.TrialResult {
	outcomes := make(map[m.Variant]m.Outcome, len(m.Variants()))

	var (
		mu    sync.Mutex
		group errgroup.Group
	)

	if cfg.VariantParallel > 0 {
		group.SetLimit(cfg.VariantParallel)
	}

	for _, source := range scenario.Sources() {
		currentSource := source

		group.Go(func() error {
			outcome := o.stabilize(ctx, currentSource, test, cfg)

			mu.Lock()
			outcomes[currentSource.Variant] = outcome
			mu.Unlock()

			return nil
		})
	}

	_ = group.Wait()

	return m.TrialResult{Test: test, Outcomes: outcomes}
}

// stabilize runs a single variant, spending the retry budget only when the
// outcome turns out to be non-deterministic. Retries are confined to this
// variant; the other three are never re-executed. Timeouts are not retried
// since they are usually deterministic for infinite loops.
func (o *orchestrator) stabilize(ctx context.Context, source m.VariantSource, test m.TestCase, cfg ExecConfig) m.Outcome {
	if ctx.Err() != nil {
		return m.TimedOut()
	}

	first := o.runner.Run(ctx, source, test, cfg.Timeout)
	if cfg.Retries <= 0 || first.Kind == m.OutcomeTimedOut {
		return first
	}

	confirmation := o.runner.Run(ctx, source, test, cfg.Timeout)
	if confirmation.Equals(first, true) {
		return first
	}

	slog.Warn("non-deterministic outcome", "variant", source.Variant, "test", test.ID,
		"first", first.String(), "confirmation", confirmation.String())

	runs := []m.Outcome{first, confirmation}

	// The confirmation run already consumed one retry.
	for i := 1; i < cfg.Retries; i++ {
		if ctx.Err() != nil {
			break
		}

		runs = append(runs, o.runner.Run(ctx, source, test, cfg.Timeout))
	}

	if winner, ok := majorityOutcome(runs); ok {
		return winner
	}

	slog.Warn("no majority outcome within retry budget", "variant", source.Variant, "test", test.ID, "runs", len(runs))

	return m.Unstable()
}

// majorityOutcome returns the outcome observed in strictly more than half of
// the runs, if any. Comparison is strict, including exception messages.
func majorityOutcome(runs []m.Outcome) (m.Outcome, bool) {
	for _, candidate := range runs {
		count := 0

		for _, run := range runs {
			if run.Equals(candidate, true) {
				count++
			}
		}

		if count*2 > len(runs) {
			return candidate, true
		}
	}

	return m.Outcome{}, false
}
