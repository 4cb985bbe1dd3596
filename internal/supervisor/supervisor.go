// Package supervisor runs the user's build command under a prepared
// environment, forwards termination signals cooperatively, and
// surfaces its exit status (spec.md §4.6/C6).
//
// Grounded on
// _examples/original_source/bear/src/intercept/supervise.rs's
// supervise(): a shared signal-pending flag and a try_wait-style poll
// loop at 100ms, with each pending signal forwarded to the child rather
// than killing it, translated from
// Rust's AtomicUsize + signal_hook to Go's os/signal channel, which is
// the idiom _examples/banksean-sand/sand/mux.go uses for its own
// shutdown-signal handling. Go's os/exec has no native try_wait, so
// the 100ms poll loop is expressed as a select between a background
// Wait() goroutine's completion channel and a timer, rather than a
// literal non-blocking poll. Signal numbers come from
// golang.org/x/sys/unix (a type alias for syscall.Signal) rather than
// the stdlib syscall package, the same dependency cmd/bear-wrapper uses
// for unix.Exec.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// pollInterval caps the supervisor loop's CPU usage while waiting for
// the child, matching the reference implementation's 100ms poll.
const pollInterval = 100 * time.Millisecond

// FailureExitCode is returned when the build was terminated by a
// signal rather than exiting normally (spec.md §6).
const FailureExitCode = 1

// ErrEmptyCommand is returned by Run when argv is empty: the supervisor
// refuses to spawn an empty build command (spec.md §8 boundary case).
var ErrEmptyCommand = errors.New("supervisor: build command is empty")

// Run starts argv as a child process with the given working directory
// and environment ("KEY=VALUE" strings, as for exec.Cmd.Env), forwards
// SIGINT/SIGTERM/SIGHUP/SIGQUIT to it for as long as it runs, and
// returns its exit code once it terminates.
//
// If the child was killed by a signal rather than exiting normally,
// Run returns FailureExitCode, matching the reference's "no numeric
// exit code means FAILURE" rule.
func Run(ctx context.Context, argv []string, dir string, env []string) (int, error) {
	if len(argv) == 0 {
		return 0, ErrEmptyCommand
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("supervisor: spawn build command: %w", err)
	}
	slog.InfoContext(ctx, "supervisor: build command started", "argv", argv, "pid", cmd.Process.Pid)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, unix.SIGINT, unix.SIGTERM, unix.SIGHUP, unix.SIGQUIT)
	defer signal.Stop(sigCh)

	waitDone := make(chan error, 1)
	go func() { waitDone <- cmd.Wait() }()

	for {
		select {
		case sig := <-sigCh:
			slog.InfoContext(ctx, "supervisor: forwarding signal to build command", "signal", sig)
			if err := cmd.Process.Signal(sig); err != nil {
				slog.WarnContext(ctx, "supervisor: failed to forward signal", "signal", sig, "error", err)
			}
		case waitErr := <-waitDone:
			code := exitCodeOf(waitErr)
			slog.InfoContext(ctx, "supervisor: build command exited", "code", code)
			return code, nil
		case <-time.After(pollInterval):
			// Wake periodically so a signal delivered between the two
			// select cases above is never missed for long.
		}
	}
}

func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// exec.ExitError.Sys() is populated by os/exec as the stdlib
		// syscall.WaitStatus, not unix.WaitStatus, even though this file
		// otherwise uses unix for signal constants.
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			if status.Signaled() {
				return FailureExitCode
			}
			return status.ExitStatus()
		}
		return FailureExitCode
	}
	return FailureExitCode
}
