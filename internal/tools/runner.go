// Package tools abstracts host process execution for the action layer.
package tools

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// CommandRunner abstracts foreground command execution.
type CommandRunner interface {
	Run(name string, args ...string) ([]byte, []byte, int32, error)
}

// Launcher abstracts detached, fire-and-forget process spawning. Output
// goes to the named log file only; nothing is surfaced back to the
// display.
type Launcher interface {
	Start(logPath, name string, args ...string) (int, error)
}

// ExecRunner executes commands on the local host.
type ExecRunner struct{}

// Run executes a command to completion, capturing output and exit code.
func (r ExecRunner) Run(name string, args ...string) ([]byte, []byte, int32, error) {
	cmd := exec.Command(name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), stderr.Bytes(), 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.Bytes(), stderr.Bytes(), int32(exitErr.ExitCode()), err
	}

	exitCode := int32(1)
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		exitCode = 127
	}
	return stdout.Bytes(), stderr.Bytes(), exitCode, err
}

// Start spawns a detached process in its own session so it outlives the
// daemon and cannot hold the dispatch path.
func (r ExecRunner) Start(logPath, name string, args ...string) (int, error) {
	cmd := exec.Command(name, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if logPath != "" {
		out, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			cmd.Stdout = out
			cmd.Stderr = out
			defer out.Close()
		}
	}
	if err := cmd.Start(); err != nil {
		return 0, err
	}
	pid := cmd.Process.Pid
	// Reap in the background so the child never zombies.
	go func() { _ = cmd.Wait() }()
	return pid, nil
}

// Installed reports whether a command resolves on PATH.
func Installed(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
