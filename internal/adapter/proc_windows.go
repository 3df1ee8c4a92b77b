//go:build windows

package adapter

import "os/exec"

func configureProbeProcess(_ *exec.Cmd) {}

func terminateProbeProcess(cmd *exec.Cmd) {
	if cmd == nil || cmd.Process == nil {
		return
	}

	_ = cmd.Process.Kill()
}

func probeExitCode(exitErr *exec.ExitError) int {
	return exitErr.ExitCode()
}
