// Package pipeline wires the producer/consumer/supervisor topologies
// that drive the two runtime modes (spec.md §4.12/C12): intercept (a
// live build observed through the collector) and replay (a
// previously recorded event log). Both topologies share the same
// consumer; only the producer and the presence of a foreground build
// differ.
//
// Grounded on
// _examples/original_source/bear/src/modes/{execution,mod}.rs's
// Interceptor/Replayer (three-thread and two-thread topologies,
// cancel-then-join shutdown, thread-panic-as-error) and
// _examples/banksean-sand/sand/mux.go's goroutine+shutdown-channel
// wiring, generalized here with golang.org/x/sync/errgroup instead of
// Rust's raw std::thread::spawn/JoinHandle or the teacher's bespoke
// channel, since an errgroup already gives first-error-wins
// aggregation across the worker goroutines.
package pipeline

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/banksean/bear/internal/event"
	"github.com/banksean/bear/internal/telemetry"
	"github.com/banksean/bear/internal/transport"
)

// replayChannelCapacity bounds the replay topology's event channel so
// a slow consumer provides backpressure on the log reader (spec.md
// §4.12).
const replayChannelCapacity = 10

// BuildFunc runs the user's build command to completion and returns
// its exit code. It is the foreground thread of the intercept
// topology (T-build in spec.md §5).
type BuildFunc func(ctx context.Context) (exitCode int, err error)

// Consume is called once per captured Event, in the order the
// collector accepted the underlying connections. Implementations
// typically either append to the execution event log (intercept-only
// mode) or run it through recognition/filter/format and write
// resulting entries (semantic analysis mode). The context is the
// worker group's context; the consumer goroutine opens no span of its
// own, so spans that implementations (notably Analyzer.Analyze) open
// are children of whatever span the caller's context carries.
type Consume func(context.Context, event.Event) error

// RunIntercept drives the three-stage intercept topology: an accept
// loop on collector feeding a channel (the producer), a goroutine
// applying consume to every Event (the consumer), and build running on
// the calling goroutine (the foreground "thread"). When build returns,
// the producer is cancelled via collector.Stop and both workers are
// joined; a worker error is returned alongside the build's exit code,
// but never replaces it as the process exit status (spec.md §4.12).
// buildArgv is used only to label the supervise span; it does not
// affect execution.
func RunIntercept(ctx context.Context, collector *transport.Collector, consume Consume, build BuildFunc, buildArgv []string) (exitCode int, workerErr error, err error) {
	events := make(chan event.Event)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		spanCtx, span := telemetry.StartAccept(gctx)
		defer telemetry.End(span, &err)
		defer close(events)
		if err = collector.Collect(spanCtx, events); err != nil {
			return fmt.Errorf("pipeline: producer: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		for ev := range events {
			if err := consume(gctx, ev); err != nil {
				slog.ErrorContext(gctx, "pipeline: consumer failed on event", "pid", ev.Pid, "error", err)
			}
		}
		return nil
	})

	superviseCtx, superviseSpan := telemetry.StartSupervise(ctx, buildArgv)
	exitCode, err = build(superviseCtx)
	telemetry.End(superviseSpan, &err)

	if stopErr := collector.Stop(); stopErr != nil {
		slog.WarnContext(ctx, "pipeline: failed to stop collector", "error", stopErr)
	}

	if joinErr := g.Wait(); joinErr != nil {
		workerErr = joinErr
	}
	return exitCode, workerErr, err
}

// RunReplay drives the two-stage replay topology: a producer goroutine
// feeding events from a previously recorded log into a bounded
// channel, and a consumer goroutine identical in shape to intercept
// mode's. There is no foreground build; RunReplay blocks until both
// goroutines finish.
func RunReplay(ctx context.Context, events iter.Seq[event.Event], consume Consume) error {
	ch := make(chan event.Event, replayChannelCapacity)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		spanCtx, span := telemetry.StartAccept(gctx)
		defer telemetry.End(span, &err)
		defer close(ch)
		for ev := range events {
			select {
			case ch <- ev:
			case <-spanCtx.Done():
				err = spanCtx.Err()
				return err
			}
		}
		return nil
	})
	g.Go(func() error {
		for ev := range ch {
			if err := consume(gctx, ev); err != nil {
				slog.ErrorContext(gctx, "pipeline: consumer failed on event", "pid", ev.Pid, "error", err)
			}
		}
		return nil
	})

	return g.Wait()
}
