// Command bear-wrapper stands in for a real compiler when wrapper-mode
// interception is in effect. It is installed as a hardlink under the
// compiler's own basename (gcc, c++, clang, ...) inside a temporary
// directory placed ahead of the real compilers on PATH.
//
// Grounded on _examples/original_source/bear/src/intercept/executor.rs
// and supervise.rs for the "build a command from an Execution and run
// it" shape, and _examples/banksean-sand/cmd/sand/exec_cmd.go's
// argv-splicing pattern (sc.Arg[0], sc.Arg[1:]).
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/banksean/bear/internal/buildenv"
	"github.com/banksean/bear/internal/event"
	"github.com/banksean/bear/internal/transport"
)

func main() {
	os.Exit(run())
}

func run() int {
	self, err := os.Executable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "bear-wrapper: resolve own path: %v\n", err)
		return 1
	}

	invokedAs := filepath.Base(os.Args[0])
	realCompiler, err := buildenv.ResolveWrapperInvocation(self, invokedAs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bear-wrapper: %v\n", err)
		return 1
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "bear-wrapper: getwd: %v\n", err)
		return 1
	}

	environ := os.Environ()
	ex := event.Execution{
		Executable:  realCompiler,
		Arguments:   append([]string{invokedAs}, os.Args[1:]...),
		WorkingDir:  cwd,
		Environment: envToMap(environ),
	}

	if destination, ok := ex.Environment[buildenv.KeyDestination]; ok {
		reporter := transport.NewReporter(destination)
		if err := reporter.Report(event.Event{Pid: os.Getpid(), Execution: ex}); err != nil {
			slog.Warn("bear-wrapper: failed to report execution", "error", err)
		}
	} else {
		slog.Warn("bear-wrapper: no collector destination in environment, skipping report")
	}

	argv := append([]string{realCompiler}, os.Args[1:]...)
	if execErr := unix.Exec(realCompiler, argv, environ); execErr != nil {
		fmt.Fprintf(os.Stderr, "bear-wrapper: exec %q: %v\n", realCompiler, execErr)
		return 1
	}
	// unix.Exec only returns on error; unreachable on success.
	return 0
}

func envToMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		if key, value, ok := strings.Cut(kv, "="); ok {
			m[key] = value
		}
	}
	return m
}
