package main

import (
	"errors"
	"log/slog"

	"github.com/banksean/bear/internal/supervisor"
)

// exitFailure is returned for configuration, setup and worker errors
// (any error other than exitError), matching spec.md §6/§7.
const exitFailure = supervisor.FailureExitCode

// exitError carries the build child's exit code out of a subcommand's
// Run so main can exit with it even though kong only sees a plain
// error return. Subcommands that ran a build pass its exit code through
// newExitError, which yields an exitError for a non-zero code and nil
// for 0; only a non-nil plain error (configuration, setup, or a worker
// failure) maps to exitFailure.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return "build command exited non-zero" }

// newExitError reports code as the process's exit status unless code
// is already 0, in which case nil is returned so callers can return it
// directly as an error without a spurious non-nil result.
func newExitError(code int) error {
	if code == 0 {
		return nil
	}
	return &exitError{code: code}
}

// exitCodeFor derives the process exit code from a subcommand's
// returned error: exitError carries the build's own exit code through
// unchanged, any other error is a configuration/setup/worker failure
// and maps to exitFailure, and nil means success.
func exitCodeFor(err error, logger *slog.Logger) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	logger.Error("bear: command failed", "error", err)
	return exitFailure
}
