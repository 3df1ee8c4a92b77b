// Package controller provides output adapters for displaying conflict detection results.
package controller

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "rift.dev/pkg/rift/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModePool StartMode = iota
	ModeRun
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode StartMode
}

// WithPoolMode sets the UI to pool inspection mode.
func WithPoolMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModePool
	}
}

// WithRunMode sets the UI to trial execution mode.
func WithRunMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeRun
	}
}

// UI defines the interface for displaying scenario runs and their reports.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish (user closes it)
	DisplayPool(ctx context.Context, scenario m.Scenario, tests []m.TestCase, err error) error
	DisplayConcurrencyInfo(ctx context.Context, threads int, shardIndex int, shardCount int)
	DisplayUpcomingTrialsInfo(ctx context.Context, count int)
	DisplayStartingTrialInfo(ctx context.Context, test m.TestCase)
	DisplayCompletedTrialInfo(ctx context.Context, verdict m.Verdict)
	DisplayReport(ctx context.Context, report m.Report) error
}

// NewUI selects the UI implementation for the given output: interactive
// terminals get the TUI, everything else the plain printer.
func NewUI(cmd *cobra.Command, isTTY bool) UI {
	if isTTY {
		return NewTUI(cmd)
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether the file is attached to an interactive terminal.
func IsTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
