package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/banksean/bear/internal/event"
	"github.com/banksean/bear/internal/output"
	"github.com/banksean/bear/internal/pipeline"
	"github.com/banksean/bear/internal/supervisor"
	"github.com/banksean/bear/internal/transport"
)

// InterceptCmd runs the intercept-only topology (spec.md §6): capture
// a build's executions without analyzing them, writing a newline-
// delimited execution event log for a later `bear semantic` run.
type InterceptCmd struct {
	Output   string   `required:"" short:"o" placeholder:"<path>" help:"execution event log output path"`
	BuildCmd []string `arg:"" name:"build-cmd" passthrough:"" help:"the build command to run, e.g. -- make -j8"`
}

func (ic *InterceptCmd) Run(cctx *Context) error {
	ctx := context.Background()

	collector, err := transport.NewCollector()
	if err != nil {
		return fmt.Errorf("bear intercept: %w", err)
	}
	defer collector.Close()

	benv, err := buildBuildEnvironment(cctx.Config, collector.Address())
	if err != nil {
		return fmt.Errorf("bear intercept: prepare build environment: %w", err)
	}
	defer func() {
		if closeErr := benv.Close(); closeErr != nil {
			slog.WarnContext(ctx, "bear intercept: failed to clean up build environment", "error", closeErr)
		}
	}()

	out, err := os.Create(ic.Output)
	if err != nil {
		return fmt.Errorf("bear intercept: create %q: %w", ic.Output, err)
	}
	defer out.Close()

	consume := func(ctx context.Context, ev event.Event) error {
		return output.AppendExecutionEvent(out, ev)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("bear intercept: getwd: %w", err)
	}
	env := benv.Environ(os.Environ())

	build := func(ctx context.Context) (int, error) {
		return supervisor.Run(ctx, ic.BuildCmd, cwd, env)
	}

	exitCode, workerErr, err := pipeline.RunIntercept(ctx, collector, consume, build, ic.BuildCmd)
	if err != nil {
		return fmt.Errorf("bear intercept: %w", err)
	}
	if workerErr != nil {
		slog.WarnContext(ctx, "bear intercept: producer/consumer reported an error", "error", workerErr)
	}
	return newExitError(exitCode)
}
