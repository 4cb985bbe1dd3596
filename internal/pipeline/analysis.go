package pipeline

import (
	"context"
	"log/slog"

	"github.com/banksean/bear/internal/event"
	"github.com/banksean/bear/internal/output/clang"
	"github.com/banksean/bear/internal/semantic"
	"github.com/banksean/bear/internal/semantic/compilers"
	"github.com/banksean/bear/internal/semantic/filter"
	"github.com/banksean/bear/internal/telemetry"
)

// Analyzer composes C8 (recognition), C9 (filtering) and C10
// (formatting) into the single per-Event step the semantic-analysis
// consumer applies: dispatch.Recognize, then filter.Apply, then
// converter.ToEntries.
//
// Grounded on
// _examples/original_source/bear/src/modes/semantic.rs's
// SemanticAnalysis::analyze, which composes the same three steps
// behind one call.
type Analyzer struct {
	dispatch  *compilers.Dispatch
	filter    *filter.Filter
	converter *clang.Converter
}

// NewAnalyzer wires a fully configured Analyzer.
func NewAnalyzer(dispatch *compilers.Dispatch, f *filter.Filter, converter *clang.Converter) *Analyzer {
	return &Analyzer{dispatch: dispatch, filter: f, converter: converter}
}

// Analyze recognizes ex, applies policy filtering, and returns the
// compilation-database entries the surviving command yields (possibly
// none).
func (a *Analyzer) Analyze(ctx context.Context, ex event.Execution) (entries []clang.Entry) {
	_, span := telemetry.StartAnalyze(ctx, ex.Executable)
	defer span.End()

	cmd, ok := a.dispatch.Recognize(ex)
	if !ok {
		slog.Debug("pipeline.Analyzer: execution not recognized", "executable", ex.Executable)
		return nil
	}

	cmd = a.filter.Apply(cmd)
	if cmd.Tag == semantic.CommandIgnored {
		slog.Debug("pipeline.Analyzer: command ignored", "executable", ex.Executable, "reason", cmd.Reason)
		return nil
	}

	return a.converter.ToEntries(cmd)
}

// ConsumeInto builds a Consume that runs every Event's Execution
// through an Analyzer and appends resulting entries (after duplicate
// suppression) to dst.
func ConsumeInto(analyzer *Analyzer, dedup *clang.Deduplicator, dst *clang.DBWriter) Consume {
	return func(ctx context.Context, ev event.Event) error {
		for _, entry := range analyzer.Analyze(ctx, ev.Execution) {
			if !dedup.Keep(entry) {
				continue
			}
			if err := dst.Write(entry); err != nil {
				return err
			}
		}
		return nil
	}
}
