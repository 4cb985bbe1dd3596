package main

import (
	"context"
	"fmt"
	"os"

	"github.com/banksean/bear/internal/output"
	"github.com/banksean/bear/internal/output/clang"
	"github.com/banksean/bear/internal/pipeline"
)

// SemanticCmd replays a previously captured execution event log
// through C8/C9/C10 without running a build (spec.md §2's "Replay mode
// skips C2-C6 and reads pre-recorded events from the newline-delimited
// log").
type SemanticCmd struct {
	Input  string `required:"" short:"i" placeholder:"<path>" help:"execution event log to replay"`
	Output string `required:"" short:"o" placeholder:"<path>" help:"compilation database output path"`
	Append bool   `help:"merge into an existing compilation database at --output instead of overwriting it"`
}

func (sc *SemanticCmd) Run(cctx *Context) error {
	ctx := context.Background()

	analyzer, err := buildAnalyzer(cctx.Config)
	if err != nil {
		return fmt.Errorf("bear semantic: %w", err)
	}

	in, err := os.Open(sc.Input)
	if err != nil {
		return fmt.Errorf("bear semantic: open %q: %w", sc.Input, err)
	}
	defer in.Close()

	var fresh []clang.Entry
	consume := collectInto(analyzer, &fresh)

	if err := pipeline.RunReplay(ctx, output.ReadExecutionEventLog(in), consume); err != nil {
		return fmt.Errorf("bear semantic: %w", err)
	}

	dedup := clang.NewDeduplicator(cctx.Config.Output.DedupFields())

	var existing []clang.Entry
	if sc.Append {
		if existingFile, err := os.Open(sc.Output); err == nil {
			existing, err = output.LoadCompilationDatabase(existingFile)
			existingFile.Close()
			if err != nil {
				return fmt.Errorf("bear semantic: load existing database %q: %w", sc.Output, err)
			}
		}
	}

	merged := output.MergeCompilationDatabases(dedup, existing, fresh)

	outFile, err := os.Create(sc.Output)
	if err != nil {
		return fmt.Errorf("bear semantic: create %q: %w", sc.Output, err)
	}
	defer outFile.Close()

	if err := output.WriteCompilationDatabaseFile(outFile, merged); err != nil {
		return fmt.Errorf("bear semantic: %w", err)
	}
	return nil
}
