package controller

import (
	"bytes"
	"context"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "rift.dev/pkg/rift/internal/model"
)

// SimpleUI implements UI using cobra Command's Println.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
	// SimpleUI doesn't block - it just prints and continues
}

// DisplayPool prints the scenario and its test pool or the load error.
func (s *SimpleUI) DisplayPool(ctx context.Context, scenario m.Scenario, tests []m.TestCase, err error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err != nil {
		s.printf("pool error: %v\n", err)
		return err
	}

	s.printf("Scenario %s (%s)\n", scenario.Project, shortFingerprint(scenario.Fingerprint()))

	for _, source := range scenario.Sources() {
		s.printf("  %-5s %s\n", source.Variant, source.File)
	}

	s.printf("\n%s", renderPoolTable(tests))

	return nil
}

func renderPoolTable(tests []m.TestCase) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Test", "Target", "Args"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	for _, test := range tests {
		table.Append([]string{test.ID, test.Target, fmt.Sprintf("%d", len(test.Args))})
	}

	table.SetFooter([]string{fmt.Sprintf("Total Tests %d", len(tests)), "", ""})
	table.Render()

	return tableBuffer.String()
}

// DisplayConcurrencyInfo shows concurrency settings.
func (s *SimpleUI) DisplayConcurrencyInfo(ctx context.Context, threads int, shardIndex int, shardCount int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Running with %d worker(s) (Shard %d/%d)\n", threads, shardIndex, shardCount)
}

// DisplayUpcomingTrialsInfo shows the number of trials about to run.
func (s *SimpleUI) DisplayUpcomingTrialsInfo(ctx context.Context, count int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Upcoming trials: %d\n", count)
}

// DisplayStartingTrialInfo shows info about the trial starting.
func (s *SimpleUI) DisplayStartingTrialInfo(ctx context.Context, test m.TestCase) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Starting trial %s (%s)\n", test.ID, test.Target)
}

// DisplayCompletedTrialInfo shows the verdict of a completed trial, with the
// per-variant outcomes when the trial did not come back clean.
func (s *SimpleUI) DisplayCompletedTrialInfo(ctx context.Context, verdict m.Verdict) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Completed trial %s -> %s (%s)\n", verdict.Trial.Test.ID, formatVerdictKind(verdict.Kind), verdict.Rationale)

	if verdict.Kind == m.NoConflict {
		return
	}

	for _, variant := range m.Variants() {
		outcome, ok := verdict.Trial.Outcomes[variant]
		if !ok {
			continue
		}

		s.printf("  %-5s %s\n", variant, outcome)
	}
}

// DisplayReport prints the final conflict report.
func (s *SimpleUI) DisplayReport(ctx context.Context, report m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if report.Partial {
		s.printf("Report is partial: the run was interrupted\n")
	}

	for _, entry := range report.Entries {
		if entry.Kind == m.NoConflict {
			continue
		}

		s.printf("%s: %s (%s)\n", entry.TestID, formatVerdictKind(entry.Kind), entry.Rationale)
	}

	s.printf("\n%s", renderSummaryTable(report.Summary))

	return nil
}

func renderSummaryTable(summary m.Summary) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Verdict", "Tests"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	for _, kind := range []m.VerdictKind{m.NoConflict, m.SemanticConflict, m.Inconclusive} {
		table.Append([]string{formatVerdictKind(kind), fmt.Sprintf("%d", summary.Count(kind))})
	}

	table.SetFooter([]string{"Total", fmt.Sprintf("%d", summary.Total)})
	table.Render()

	return tableBuffer.String()
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func formatVerdictKind(kind m.VerdictKind) string {
	switch kind {
	case m.NoConflict:
		return "no conflict"
	case m.SemanticConflict:
		return "SEMANTIC CONFLICT"
	case m.Inconclusive:
		return "inconclusive"
	}

	return unknownVerdictLabel
}

const unknownVerdictLabel = "unknown"

func shortFingerprint(fingerprint string) string {
	const width = 12
	if len(fingerprint) <= width {
		return fingerprint
	}

	return fingerprint[:width]
}
