package scriptrun

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"syscall"
)

// Result reports how a script invocation ended: its exit code, or the
// signal that terminated it (WIFEXITED/WIFSIGNALED in POSIX terms).
type Result struct {
	ExitCode   int
	Signaled   bool
	Signal     string
	ExecFailed bool
}

// Run execs path with argv[0] == path (matching execle(path, path, NULL,
// envp)) and the given environment, and blocks for completion — the Go
// equivalent of fork + execle + waitpid with no flags. A non-zero exit or
// an abnormal signal is reported in Result, never returned as an error;
// only a failure to start the child at all (exec failure) is an error.
//
// The wait is never interrupted by ctx's cancellation: once a script has
// forked, shutdown waits it out rather than killing it, so ctx is stripped
// of its Done channel (context.WithoutCancel) before starting the child.
func Run(ctx context.Context, path string, env []string, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cmd := exec.CommandContext(context.WithoutCancel(ctx), path)
	cmd.Env = env

	err := cmd.Run()
	if err == nil {
		logger.Info("scriptrun: script exited", "path", path, "exit_code", 0)
		return Result{ExitCode: 0}, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		logger.Error("scriptrun: exec failed", "path", path, "error", err.Error())
		return Result{ExecFailed: true}, err
	}

	result := Result{ExitCode: exitErr.ExitCode()}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		result.Signaled = true
		result.Signal = ws.Signal().String()
		logger.Info("scriptrun: script terminated by signal", "path", path, "signal", result.Signal)
	} else {
		logger.Info("scriptrun: script exited", "path", path, "exit_code", result.ExitCode)
	}
	return result, nil
}
