package scriptrun

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestBuildEnvironOrderAndContent(t *testing.T) {
	os.Setenv("PATH", "/usr/bin:/bin")
	os.Setenv("PWD", "/home/scan")
	os.Setenv("USER", "scanner")
	os.Setenv("HOME", "/home/scanner")

	env := BuildEnviron("SCANBD_DEVICE", "scanner0", "SCANBD_ACTION", "scan",
		[]EnvPair{{Key: "SCANBD_RESOLUTION", Value: "300"}}, nil)

	want := []string{
		"PATH=/usr/bin:/bin",
		"PWD=/home/scan",
		"USER=scanner",
		"HOME=/home/scanner",
		"SCANBD_DEVICE=scanner0",
		"SCANBD_ACTION=scan",
		"SCANBD_RESOLUTION=300",
	}
	if len(env) != len(want) {
		t.Fatalf("expected %d entries, got %d: %v", len(want), len(env), env)
	}
	for i, e := range want {
		if env[i] != e {
			t.Errorf("entry %d: want %q, got %q", i, e, env[i])
		}
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present.sh")
	if err := os.WriteFile(present, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	if !Exists(present) {
		t.Error("expected Exists to report true for a file that was just created")
	}
	if Exists(filepath.Join(dir, "absent.sh")) {
		t.Error("expected Exists to report false for a missing file")
	}
}

func TestRunReportsExitCode(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "exit2.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nexit 2\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	result, err := Run(context.Background(), script, os.Environ(), nil)
	if err != nil {
		t.Fatalf("Run returned an error for a script that merely exits non-zero: %v", err)
	}
	if result.ExitCode != 2 {
		t.Errorf("expected exit code 2, got %d", result.ExitCode)
	}
	if result.Signaled {
		t.Error("expected a clean non-zero exit, not a signal")
	}
}

func TestRunCompletesAfterContextCancellation(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "sleep.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nsleep 0.3\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	result, err := Run(ctx, script, os.Environ(), nil)
	if err != nil {
		t.Fatalf("expected the script to run to completion despite the context being cancelled mid-run: %v", err)
	}
	if result.Signaled {
		t.Error("expected the script to exit cleanly, not be killed by context cancellation")
	}
	if result.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %d", result.ExitCode)
	}
}

func TestRunExecFailure(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "does-not-exist.sh")

	result, err := Run(context.Background(), missing, os.Environ(), nil)
	if err == nil {
		t.Fatal("expected an error execing a missing script")
	}
	if !result.ExecFailed {
		t.Error("expected ExecFailed to be set")
	}
}
