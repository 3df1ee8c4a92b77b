package domain

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"rift.dev/pkg/rift/internal/adapter"
	"rift.dev/pkg/rift/internal/controller"
	m "rift.dev/pkg/rift/internal/model"
	pkg "rift.dev/pkg/rift/pkg"
)

// RunArgs contains the arguments for running a scenario against its pool.
type RunArgs struct {
	Scenario        m.Path
	Pool            m.Path
	Reports         m.Path
	Threads         int
	ShardIndex      int
	TotalShardCount int
	UseCache        bool
	StrictMessages  bool
	Exec            ExecConfig
}

// PoolArgs contains the arguments for inspecting a scenario's test pool.
type PoolArgs struct {
	Scenario m.Path
	Pool     m.Path
}

// ViewArgs contains the arguments for viewing a saved report.
type ViewArgs struct {
	Reports m.Path
}

// MergeArgs contains the arguments for merging shard reports.
type MergeArgs struct {
	Reports m.Path
}

// Workflow defines the top level operations of the tool.
type Workflow interface {
	Run(ctx context.Context, args RunArgs) error
	Pool(ctx context.Context, args PoolArgs) error
	View(ctx context.Context, args ViewArgs) error
	Merge(ctx context.Context, args MergeArgs) error
}

type workflow struct {
	adapter.ScenarioStore
	adapter.PoolStore
	adapter.ReportStore
	controller.UI
	Orchestrator
	Classifier
	Aggregator
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	scenarioStore adapter.ScenarioStore,
	poolStore adapter.PoolStore,
	reportStore adapter.ReportStore,
	ui controller.UI,
	orchestrator Orchestrator,
	classifier Classifier,
	aggregator Aggregator,
) Workflow {
	return &workflow{
		ScenarioStore: scenarioStore,
		PoolStore:     poolStore,
		ReportStore:   reportStore,
		UI:            ui,
		Orchestrator:  orchestrator,
		Classifier:    classifier,
		Aggregator:    aggregator,
	}
}

// Run executes the full detection pipeline: load the scenario and pool, reuse
// cached verdicts where the scenario is unchanged, execute the remaining
// trials concurrently, classify, aggregate, and persist the report.
func (w *workflow) Run(ctx context.Context, args RunArgs) error {
	scenario, tests, err := w.loadInputs(args.Scenario, args.Pool)
	if err != nil {
		return err
	}

	if err := w.Start(ctx, controller.WithRunMode()); err != nil {
		slog.Error("failed to start UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	reportDir := shardReportDir(args.Reports, args.ShardIndex, args.TotalShardCount)
	selected := shardTests(tests, args.ShardIndex, args.TotalShardCount)
	reused, pending := w.splitCached(scenario, selected, reportDir, args.UseCache)

	w.DisplayConcurrencyInfo(ctx, args.Threads, args.ShardIndex, shardCount(args.TotalShardCount))
	w.DisplayUpcomingTrialsInfo(ctx, len(pending))

	slog.Info("starting scenario run",
		"project", scenario.Project,
		"tests", len(selected),
		"cached", len(reused),
		"threads", args.Threads)

	verdicts, err := pkg.NewFileSpill[m.Verdict]()
	if err != nil {
		return fmt.Errorf("create verdict spill: %w", err)
	}

	defer func() {
		_ = verdicts.Close()
		_ = verdicts.Remove()
	}()

	if err := w.executeTrials(ctx, scenario, pending, args, verdicts); err != nil {
		return err
	}

	report, err := w.Aggregate(scenario, verdicts, AggregateArgs{
		Reused:  reused,
		Order:   testOrder(selected),
		Partial: ctx.Err() != nil,
	})
	if err != nil {
		return fmt.Errorf("aggregate verdicts: %w", err)
	}

	if err := w.SaveReport(reportDir, report); err != nil {
		return fmt.Errorf("save report: %w", err)
	}

	if err := w.DisplayReport(ctx, report); err != nil {
		return err
	}

	w.Wait(ctx)

	return nil
}

// Pool loads the scenario and its test pool and displays them without
// executing anything.
func (w *workflow) Pool(ctx context.Context, args PoolArgs) error {
	scenario, tests, err := w.loadInputs(args.Scenario, args.Pool)

	if startErr := w.Start(ctx, controller.WithPoolMode()); startErr != nil {
		return startErr
	}
	defer w.Close(ctx)

	if displayErr := w.DisplayPool(ctx, scenario, tests, err); displayErr != nil {
		return displayErr
	}

	w.Wait(ctx)

	return nil
}

// View displays a previously saved report.
func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	report, err := w.LoadReport(args.Reports)
	if err != nil {
		return fmt.Errorf("load report: %w", err)
	}

	if err := w.Start(ctx, controller.WithRunMode()); err != nil {
		return err
	}
	defer w.Close(ctx)

	w.DisplayUpcomingTrialsInfo(ctx, report.Summary.Total)

	if err := w.DisplayReport(ctx, report); err != nil {
		return err
	}

	w.Wait(ctx)

	return nil
}

// Merge combines the shard_N reports under the reports directory into a
// single top level report.
func (w *workflow) Merge(ctx context.Context, args MergeArgs) error {
	dirs, err := w.ShardDirs(args.Reports)
	if err != nil {
		return fmt.Errorf("list shard reports: %w", err)
	}

	if len(dirs) == 0 {
		return fmt.Errorf("no shard reports found under %s", args.Reports)
	}

	reports := make([]m.Report, 0, len(dirs))

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return err
		}

		report, err := w.LoadReport(dir)
		if err != nil {
			return fmt.Errorf("load shard report %s: %w", dir, err)
		}

		reports = append(reports, report)
	}

	merged, err := mergeReports(reports)
	if err != nil {
		return err
	}

	if err := w.SaveReport(args.Reports, merged); err != nil {
		return fmt.Errorf("save merged report: %w", err)
	}

	slog.Info("merged shard reports", "shards", len(reports), "tests", merged.Summary.Total)

	if err := w.Start(ctx, controller.WithRunMode()); err != nil {
		return err
	}
	defer w.Close(ctx)

	if err := w.DisplayReport(ctx, merged); err != nil {
		return err
	}

	w.Wait(ctx)

	return nil
}

func (w *workflow) loadInputs(scenarioPath, poolPath m.Path) (m.Scenario, []m.TestCase, error) {
	scenario, err := w.LoadScenario(scenarioPath)
	if err != nil {
		return m.Scenario{}, nil, fmt.Errorf("load scenario: %w", err)
	}

	tests, err := w.LoadPool(poolPath)
	if err != nil {
		return m.Scenario{}, nil, fmt.Errorf("load pool: %w", err)
	}

	return scenario, tests, nil
}

// splitCached partitions the selected tests into entries reusable from a
// previous report and tests that still need to run. A cached entry is only
// valid when the prior report carries the same scenario fingerprint.
func (w *workflow) splitCached(scenario m.Scenario, selected []m.TestCase, reportDir m.Path, useCache bool) ([]m.ReportEntry, []m.TestCase) {
	if !useCache {
		return nil, selected
	}

	prior, err := w.LoadReport(reportDir)
	if err != nil {
		slog.Debug("no cached report", "dir", reportDir, "error", err)
		return nil, selected
	}

	if prior.Fingerprint != scenario.Fingerprint() {
		slog.Debug("cached report is stale", "dir", reportDir)
		return nil, selected
	}

	cached := make(map[string]m.ReportEntry, len(prior.Entries))
	for _, entry := range prior.Entries {
		cached[entry.TestID] = entry
	}

	var (
		reused  []m.ReportEntry
		pending []m.TestCase
	)

	for _, test := range selected {
		if entry, ok := cached[test.ID]; ok {
			reused = append(reused, entry)
		} else {
			pending = append(pending, test)
		}
	}

	return reused, pending
}

func (w *workflow) executeTrials(ctx context.Context, scenario m.Scenario, pending []m.TestCase, args RunArgs, verdicts pkg.FileSpill[m.Verdict]) error {
	var group errgroup.Group
	if args.Threads > 0 {
		group.SetLimit(args.Threads)
	}

	for _, test := range pending {
		if ctx.Err() != nil {
			break
		}

		currentTest := test

		group.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			w.DisplayStartingTrialInfo(ctx, currentTest)

			trial := w.Execute(ctx, scenario, currentTest, args.Exec)

			// An interrupted trial has synthetic outcomes; leave it out and
			// let the report be marked partial instead.
			if ctx.Err() != nil {
				return nil
			}

			verdict := w.Classify(trial, args.StrictMessages)
			w.DisplayCompletedTrialInfo(ctx, verdict)

			if err := verdicts.Append(verdict); err != nil {
				return fmt.Errorf("record verdict for %s: %w", currentTest.ID, err)
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	return nil
}

// shardTests filters tests using round-robin shard assignment over pool order.
func shardTests(tests []m.TestCase, shardIndex, totalShardCount int) []m.TestCase {
	if totalShardCount <= 1 {
		return tests
	}

	var selected []m.TestCase

	for i, test := range tests {
		if i%totalShardCount == shardIndex {
			selected = append(selected, test)
		}
	}

	return selected
}

// shardReportDir returns the directory a shard writes its report to. Unsharded
// runs write directly to the reports root.
func shardReportDir(reports m.Path, shardIndex, totalShardCount int) m.Path {
	if totalShardCount <= 1 {
		return reports
	}

	return m.Path(filepath.Join(string(reports), fmt.Sprintf("shard_%d", shardIndex)))
}

func shardCount(totalShardCount int) int {
	if totalShardCount <= 1 {
		return 1
	}

	return totalShardCount
}

func testOrder(tests []m.TestCase) []string {
	ids := make([]string, 0, len(tests))
	for _, test := range tests {
		ids = append(ids, test.ID)
	}

	return ids
}

// mergeReports concatenates shard entries, refusing mixed fingerprints. The
// first entry wins when shards overlap on a test ID.
func mergeReports(reports []m.Report) (m.Report, error) {
	merged := m.Report{
		Project:     reports[0].Project,
		Fingerprint: reports[0].Fingerprint,
	}

	seen := make(map[string]bool)

	for _, report := range reports {
		if report.Fingerprint != merged.Fingerprint {
			return m.Report{}, fmt.Errorf("shard reports disagree on scenario fingerprint")
		}

		if report.Partial {
			merged.Partial = true
		}

		for _, entry := range report.Entries {
			if seen[entry.TestID] {
				continue
			}

			seen[entry.TestID] = true
			merged.Entries = append(merged.Entries, entry)

			merged.Summary.Total++

			switch entry.Kind {
			case m.NoConflict:
				merged.Summary.NoConflict++
			case m.SemanticConflict:
				merged.Summary.SemanticConflict++
			case m.Inconclusive:
				merged.Summary.Inconclusive++
			}
		}
	}

	return merged, nil
}
