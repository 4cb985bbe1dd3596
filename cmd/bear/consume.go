package main

import (
	"context"

	"github.com/banksean/bear/internal/event"
	"github.com/banksean/bear/internal/output/clang"
	"github.com/banksean/bear/internal/pipeline"
)

// collectInto builds a pipeline.Consume that appends every entry
// analyzer.Analyze produces to *dst, without deduplicating. It backs
// --append runs, where deduplication has to happen once, after the
// freshly captured entries are merged with whatever the existing
// compilation database already held (see output.MergeCompilationDatabases).
//
// Safe without a mutex: RunIntercept/RunReplay invoke a single Consume
// from one consumer goroutine at a time, and *dst is only read back
// after that goroutine has been joined.
func collectInto(analyzer *pipeline.Analyzer, dst *[]clang.Entry) pipeline.Consume {
	return func(ctx context.Context, ev event.Event) error {
		*dst = append(*dst, analyzer.Analyze(ctx, ev.Execution)...)
		return nil
	}
}
