// Package bearlog wires up the orchestrator's structured logging: a
// JSON slog handler writing to a rotated log file.
//
// Grounded on _examples/banksean-sand/cmd/sand/main.go's initSlog
// (JSON handler, level from a CLI flag, log file creation), with the
// rotation handled by gopkg.in/natefinch/lumberjack.v2 instead of the
// teacher's single os.File — the orchestrator's log covers an entire
// build, which can run far longer than the teacher's CLI invocations.
package bearlog

import (
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures Init.
type Options struct {
	// LogFile is the path to write JSON log lines to. Empty disables
	// file logging; logs go to stderr instead.
	LogFile string
	// Level is one of "debug", "info", "warn", "error".
	Level string
	// Verbose raises the effective level to debug regardless of Level,
	// matching the --verbose/-v repeatable flag (SPEC_FULL's
	// supplemented feature, modeled on bear/src/config.rs's verbosity
	// handling).
	Verbose bool
}

// Init builds a JSON slog.Logger per opts and installs it as the
// process default, returning an io.Closer-like cleanup function for
// the underlying file sink (no-op when logging to stderr).
func Init(opts Options) (*slog.Logger, func() error, error) {
	level := parseLevel(opts.Level)
	if opts.Verbose {
		level = slog.LevelDebug
	}

	var w interface {
		Write([]byte) (int, error)
	}
	closer := func() error { return nil }

	if opts.LogFile == "" {
		w = os.Stderr
	} else {
		if err := os.MkdirAll(filepath.Dir(opts.LogFile), 0o755); err != nil {
			return nil, nil, err
		}
		lj := &lumberjack.Logger{
			Filename:   opts.LogFile,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		w = lj
		closer = lj.Close
	}

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, closer, nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
