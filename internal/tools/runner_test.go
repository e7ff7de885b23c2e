package tools

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRunCapturesOutputAndExitCode(t *testing.T) {
	r := ExecRunner{}
	stdout, _, code, err := r.Run("sh", "-c", "echo hello")
	if err != nil || code != 0 {
		t.Fatalf("code=%d err=%v", code, err)
	}
	if strings.TrimSpace(string(stdout)) != "hello" {
		t.Fatalf("stdout=%q", stdout)
	}

	_, stderr, code, err := r.Run("sh", "-c", "echo boom >&2; exit 3")
	if err == nil || code != 3 {
		t.Fatalf("code=%d err=%v", code, err)
	}
	if strings.TrimSpace(string(stderr)) != "boom" {
		t.Fatalf("stderr=%q", stderr)
	}
}

func TestRunMissingCommand(t *testing.T) {
	r := ExecRunner{}
	_, _, code, err := r.Run("definitely-not-a-command-xyz")
	if err == nil {
		t.Fatalf("expected error")
	}
	if code != 127 {
		t.Fatalf("code=%d", code)
	}
}

func TestStartDetachedWritesLog(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "actions.log")
	r := ExecRunner{}
	pid, err := r.Start(logPath, "sh", "-c", "echo spawned")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if pid <= 0 {
		t.Fatalf("pid=%d", pid)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		data, err := os.ReadFile(logPath)
		if err == nil && strings.Contains(string(data), "spawned") {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("log output never appeared")
}

func TestInstalled(t *testing.T) {
	if !Installed("sh") {
		t.Fatalf("sh should resolve")
	}
	if Installed("definitely-not-a-command-xyz") {
		t.Fatalf("bogus command resolved")
	}
}
