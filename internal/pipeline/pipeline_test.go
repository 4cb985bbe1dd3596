package pipeline

import (
	"context"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/banksean/bear/internal/event"
	"github.com/banksean/bear/internal/transport"
)

func TestRunInterceptDeliversEventsAndExitCode(t *testing.T) {
	collector, err := transport.NewCollector()
	assert.NilError(t, err)
	defer collector.Close()

	var received []event.Event
	consume := func(ctx context.Context, ev event.Event) error {
		received = append(received, ev)
		return nil
	}

	build := func(ctx context.Context) (int, error) {
		reporter := transport.NewReporter(collector.Address())
		assert.NilError(t, reporter.Report(event.Event{Pid: 1, Execution: event.Execution{Executable: "/usr/bin/gcc"}}))
		return 42, nil
	}

	code, workerErr, err := RunIntercept(context.Background(), collector, consume, build, []string{"make"})
	assert.NilError(t, err)
	assert.NilError(t, workerErr)
	assert.Equal(t, code, 42)
	assert.Equal(t, len(received), 1)
	assert.Equal(t, received[0].Execution.Executable, "/usr/bin/gcc")
}

func TestRunReplayConsumesAllEvents(t *testing.T) {
	events := []event.Event{
		{Pid: 1, Execution: event.Execution{Executable: "/usr/bin/gcc"}},
		{Pid: 2, Execution: event.Execution{Executable: "/usr/bin/clang"}},
	}
	seq := func(yield func(event.Event) bool) {
		for _, ev := range events {
			if !yield(ev) {
				return
			}
		}
	}

	var received []event.Event
	consume := func(ctx context.Context, ev event.Event) error {
		received = append(received, ev)
		return nil
	}

	err := RunReplay(context.Background(), seq, consume)
	assert.NilError(t, err)
	assert.Equal(t, len(received), 2)
}
