package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/banksean/bear/internal/output"
	"github.com/banksean/bear/internal/output/clang"
	"github.com/banksean/bear/internal/pipeline"
	"github.com/banksean/bear/internal/supervisor"
	"github.com/banksean/bear/internal/transport"
)

// RunCmd is the default combined mode (spec.md §6's "(default /
// combined)"): intercept and analyze a build in a single pass, with no
// event log ever touching disk.
type RunCmd struct {
	Output   string   `default:"compile_commands.json" short:"o" placeholder:"<path>" help:"compilation database output path"`
	Append   bool     `help:"merge into an existing compilation database at --output instead of overwriting it"`
	BuildCmd []string `arg:"" name:"build-cmd" passthrough:"" help:"the build command to run, e.g. -- make -j8"`
}

func (rc *RunCmd) Run(cctx *Context) error {
	ctx := context.Background()

	analyzer, err := buildAnalyzer(cctx.Config)
	if err != nil {
		return fmt.Errorf("bear: %w", err)
	}

	collector, err := transport.NewCollector()
	if err != nil {
		return fmt.Errorf("bear: %w", err)
	}
	defer collector.Close()

	benv, err := buildBuildEnvironment(cctx.Config, collector.Address())
	if err != nil {
		return fmt.Errorf("bear: prepare build environment: %w", err)
	}
	defer func() {
		if closeErr := benv.Close(); closeErr != nil {
			slog.WarnContext(ctx, "bear: failed to clean up build environment", "error", closeErr)
		}
	}()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("bear: getwd: %w", err)
	}
	env := benv.Environ(os.Environ())

	build := func(ctx context.Context) (int, error) {
		return supervisor.Run(ctx, rc.BuildCmd, cwd, env)
	}

	if rc.Append {
		return rc.runAppend(ctx, cctx, analyzer, collector, build)
	}
	return rc.runOverwrite(ctx, cctx, analyzer, collector, build)
}

// runOverwrite streams every recognized, deduplicated entry straight
// to --output as the build runs, via the same incremental DBWriter the
// intercept topology's consumer was built for.
func (rc *RunCmd) runOverwrite(ctx context.Context, cctx *Context, analyzer *pipeline.Analyzer, collector *transport.Collector, build pipeline.BuildFunc) error {
	out, err := os.Create(rc.Output)
	if err != nil {
		return fmt.Errorf("bear: create %q: %w", rc.Output, err)
	}
	defer out.Close()

	dbWriter := output.NewDBWriter(out)
	dedup := clang.NewDeduplicator(cctx.Config.Output.DedupFields())
	consume := pipeline.ConsumeInto(analyzer, dedup, dbWriter)

	exitCode, workerErr, err := pipeline.RunIntercept(ctx, collector, consume, build, rc.BuildCmd)
	if err != nil {
		return fmt.Errorf("bear: %w", err)
	}
	if workerErr != nil {
		slog.WarnContext(ctx, "bear: producer/consumer reported an error", "error", workerErr)
	}
	if closeErr := dbWriter.Close(); closeErr != nil {
		slog.WarnContext(ctx, "bear: failed to finalize compilation database", "error", closeErr)
	}
	return newExitError(exitCode)
}

// runAppend collects entries in memory during the build (no
// deduplication yet, since the existing database's entries haven't
// been loaded), then merges them with --output's current contents once
// the build has finished.
func (rc *RunCmd) runAppend(ctx context.Context, cctx *Context, analyzer *pipeline.Analyzer, collector *transport.Collector, build pipeline.BuildFunc) error {
	var fresh []clang.Entry
	consume := collectInto(analyzer, &fresh)

	exitCode, workerErr, err := pipeline.RunIntercept(ctx, collector, consume, build, rc.BuildCmd)
	if err != nil {
		return fmt.Errorf("bear: %w", err)
	}
	if workerErr != nil {
		slog.WarnContext(ctx, "bear: producer/consumer reported an error", "error", workerErr)
	}

	dedup := clang.NewDeduplicator(cctx.Config.Output.DedupFields())

	var existing []clang.Entry
	if existingFile, openErr := os.Open(rc.Output); openErr == nil {
		existing, err = output.LoadCompilationDatabase(existingFile)
		existingFile.Close()
		if err != nil {
			return fmt.Errorf("bear: load existing database %q: %w", rc.Output, err)
		}
	}

	merged := output.MergeCompilationDatabases(dedup, existing, fresh)

	outFile, err := os.Create(rc.Output)
	if err != nil {
		return fmt.Errorf("bear: create %q: %w", rc.Output, err)
	}
	defer outFile.Close()

	if err := output.WriteCompilationDatabaseFile(outFile, merged); err != nil {
		return fmt.Errorf("bear: %w", err)
	}
	return newExitError(exitCode)
}
