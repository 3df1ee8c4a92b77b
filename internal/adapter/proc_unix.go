//go:build !windows

package adapter

import (
	"os/exec"
	"syscall"
)

// configureProbeProcess places the probe in its own process group so a
// timeout can tear down the probe and anything it spawned.
func configureProbeProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func terminateProbeProcess(cmd *exec.Cmd) {
	if cmd == nil || cmd.Process == nil {
		return
	}

	pid := cmd.Process.Pid
	if pid <= 0 {
		return
	}

	if pgid, err := syscall.Getpgid(pid); err == nil && pgid > 0 {
		// Negative PGID targets the full process group.
		_ = syscall.Kill(-pgid, syscall.SIGKILL)
		return
	}

	_ = cmd.Process.Kill()
}

// probeExitCode maps an abnormal exit to a code; death by signal is reported
// as the negated signal number.
func probeExitCode(exitErr *exec.ExitError) int {
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return -int(status.Signal())
	}

	return exitErr.ExitCode()
}
