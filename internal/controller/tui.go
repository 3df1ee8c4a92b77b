package controller

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	m "rift.dev/pkg/rift/internal/model"
)

// recentTrialLines bounds the rolling window of completed trials on screen.
const recentTrialLines = 8

var (
	titleStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 1)
	okStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	conflictStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	inconclusiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	faintStyle        = lipgloss.NewStyle().Faint(true)
)

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	cmd     *cobra.Command
	program *tea.Program

	mu   sync.Mutex
	done chan struct{}
}

// NewTUI creates a new TUI writing to the command's output.
func NewTUI(cmd *cobra.Command) *TUI {
	return &TUI{cmd: cmd}
}

// Start launches the Bubble Tea program in the background.
func (p *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	config := StartConfig{mode: ModeRun}
	for _, option := range options {
		option(&config)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	model := newTrialProgressModel(config.mode)
	p.program = tea.NewProgram(model, tea.WithOutput(p.cmd.OutOrStdout()))
	p.done = make(chan struct{})

	go func(program *tea.Program, done chan struct{}) {
		defer close(done)

		if _, err := program.Run(); err != nil {
			fmt.Fprintf(p.cmd.ErrOrStderr(), "tui error: %v\n", err)
		}
	}(p.program, p.done)

	return nil
}

// Close asks the program to quit.
func (p *TUI) Close(ctx context.Context) {
	p.mu.Lock()
	program := p.program
	p.mu.Unlock()

	if program == nil {
		return
	}

	program.Send(tea.Quit())

	if done := p.doneChannel(); done != nil {
		<-done
	}
}

// Wait blocks until the user closes the UI or the context is cancelled.
func (p *TUI) Wait(ctx context.Context) {
	done := p.doneChannel()
	if done == nil {
		return
	}

	select {
	case <-ctx.Done():
	case <-done:
	}
}

func (p *TUI) doneChannel() chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.done
}

func (p *TUI) send(msg tea.Msg) {
	p.mu.Lock()
	program := p.program
	p.mu.Unlock()

	if program != nil {
		program.Send(msg)
	}
}

// DisplayPool shows the scenario and its test pool.
func (p *TUI) DisplayPool(ctx context.Context, scenario m.Scenario, tests []m.TestCase, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if err != nil {
		return err
	}

	p.send(poolLoadedMsg{scenario: scenario, tests: tests})

	return nil
}

// DisplayConcurrencyInfo shows concurrency settings.
func (p *TUI) DisplayConcurrencyInfo(ctx context.Context, threads int, shardIndex int, shardCount int) {
	if ctx.Err() != nil {
		return
	}

	p.send(concurrencyMsg{threads: threads, shardIndex: shardIndex, shardCount: shardCount})
}

// DisplayUpcomingTrialsInfo records how many trials are about to run.
func (p *TUI) DisplayUpcomingTrialsInfo(ctx context.Context, count int) {
	if ctx.Err() != nil {
		return
	}

	p.send(upcomingTrialsMsg{count: count})
}

// DisplayStartingTrialInfo marks a trial as in flight.
func (p *TUI) DisplayStartingTrialInfo(ctx context.Context, test m.TestCase) {
	if ctx.Err() != nil {
		return
	}

	p.send(trialStartedMsg{test: test})
}

// DisplayCompletedTrialInfo records the verdict of a finished trial.
func (p *TUI) DisplayCompletedTrialInfo(ctx context.Context, verdict m.Verdict) {
	if ctx.Err() != nil {
		return
	}

	p.send(trialCompletedMsg{verdict: verdict})
}

// DisplayReport shows the final report and leaves the UI open until 'q'.
func (p *TUI) DisplayReport(ctx context.Context, report m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.send(reportReadyMsg{report: report})

	return nil
}

type poolLoadedMsg struct {
	scenario m.Scenario
	tests    []m.TestCase
}

type concurrencyMsg struct {
	threads    int
	shardIndex int
	shardCount int
}

type upcomingTrialsMsg struct {
	count int
}

type trialStartedMsg struct {
	test m.TestCase
}

type trialCompletedMsg struct {
	verdict m.Verdict
}

type reportReadyMsg struct {
	report m.Report
}

// trialProgressModel is the Bubble Tea model tracking a scenario run.
type trialProgressModel struct {
	mode StartMode

	spinner  spinner.Model
	scenario m.Scenario
	tests    []m.TestCase

	threads    int
	shardIndex int
	shardCount int

	upcoming  int
	started   int
	completed int
	conflicts int
	undecided int

	recent []string

	report    *m.Report
	hasReport bool
	quitting  bool
}

func newTrialProgressModel(mode StartMode) trialProgressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return trialProgressModel{
		mode:    mode,
		spinner: sp,
	}
}

func (tm trialProgressModel) Init() tea.Cmd {
	return tm.spinner.Tick
}

func (tm trialProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			tm.quitting = true
			return tm, tea.Quit
		}

		return tm, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		tm.spinner, cmd = tm.spinner.Update(msg)

		return tm, cmd

	case poolLoadedMsg:
		tm.scenario = msg.scenario
		tm.tests = msg.tests

		return tm, nil

	case concurrencyMsg:
		tm.threads = msg.threads
		tm.shardIndex = msg.shardIndex
		tm.shardCount = msg.shardCount

		return tm, nil

	case upcomingTrialsMsg:
		tm.upcoming = msg.count

		return tm, nil

	case trialStartedMsg:
		tm.started++

		return tm, nil

	case trialCompletedMsg:
		tm.completed++
		tm.recordVerdict(msg.verdict)

		return tm, nil

	case reportReadyMsg:
		report := msg.report
		tm.report = &report
		tm.hasReport = true

		return tm, nil
	}

	return tm, nil
}

func (tm *trialProgressModel) recordVerdict(verdict m.Verdict) {
	var line string

	switch verdict.Kind {
	case m.SemanticConflict:
		tm.conflicts++
		line = conflictStyle.Render(fmt.Sprintf("✗ %s: conflict (%s)", verdict.Trial.Test.ID, verdict.Rationale))
	case m.Inconclusive:
		tm.undecided++
		line = inconclusiveStyle.Render(fmt.Sprintf("? %s: inconclusive (%s)", verdict.Trial.Test.ID, verdict.Rationale))
	default:
		line = okStyle.Render(fmt.Sprintf("✓ %s", verdict.Trial.Test.ID))
	}

	tm.recent = append(tm.recent, line)
	if len(tm.recent) > recentTrialLines {
		tm.recent = tm.recent[len(tm.recent)-recentTrialLines:]
	}
}

func (tm trialProgressModel) View() string {
	if tm.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Rift - Semantic Conflict Detection"))
	b.WriteString("\n\n")

	if tm.scenario.Project != "" {
		fmt.Fprintf(&b, "  Scenario: %s\n", tm.scenario.Project)
	}

	if tm.mode == ModePool {
		tm.renderPool(&b)
		return b.String()
	}

	tm.renderProgress(&b)

	if tm.hasReport {
		tm.renderSummary(&b)
	}

	return b.String()
}

func (tm trialProgressModel) renderPool(b *strings.Builder) {
	fmt.Fprintf(b, "  Pool: %d test(s)\n\n", len(tm.tests))

	for _, test := range tm.tests {
		fmt.Fprintf(b, "  %s  %s\n", test.ID, faintStyle.Render(test.Target))
	}

	b.WriteString(faintStyle.Render("\n  q: quit\n"))
}

func (tm trialProgressModel) renderProgress(b *strings.Builder) {
	if tm.threads > 0 {
		fmt.Fprintf(b, "  Workers: %d (shard %d/%d)\n", tm.threads, tm.shardIndex, tm.shardCount)
	}

	if tm.hasReport {
		fmt.Fprintf(b, "  Completed %d/%d trials\n\n", tm.completed, tm.upcoming)
	} else {
		fmt.Fprintf(b, "  %s Running %d/%d trials\n\n", tm.spinner.View(), tm.completed, tm.upcoming)
	}

	for _, line := range tm.recent {
		fmt.Fprintf(b, "  %s\n", line)
	}
}

func (tm trialProgressModel) renderSummary(b *strings.Builder) {
	summary := tm.report.Summary

	b.WriteString("\n")
	fmt.Fprintf(b, "  %s  %s  %s\n",
		okStyle.Render(fmt.Sprintf("no conflict: %d", summary.NoConflict)),
		conflictStyle.Render(fmt.Sprintf("conflicts: %d", summary.SemanticConflict)),
		inconclusiveStyle.Render(fmt.Sprintf("inconclusive: %d", summary.Inconclusive)))

	if tm.report.Partial {
		b.WriteString(inconclusiveStyle.Render("  partial report: the run was interrupted\n"))
	}

	b.WriteString(faintStyle.Render("\n  q: quit\n"))
}
