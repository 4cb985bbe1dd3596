package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"github.com/banksean/bear/internal/event"
)

// WriteExecutionEventLog streams events to w as newline-delimited JSON,
// one event per line, flushing each line as it's written (spec.md
// §4.11).
func WriteExecutionEventLog(w io.Writer, events iter.Seq[event.Event]) error {
	bw := bufio.NewWriter(w)
	var writeErr error
	events(func(ev event.Event) bool {
		payload, err := json.Marshal(ev)
		if err != nil {
			writeErr = fmt.Errorf("write execution event log: %w", err)
			return false
		}
		if _, err := bw.Write(payload); err != nil {
			writeErr = fmt.Errorf("write execution event log: %w", err)
			return false
		}
		if err := bw.WriteByte('\n'); err != nil {
			writeErr = fmt.Errorf("write execution event log: %w", err)
			return false
		}
		if err := bw.Flush(); err != nil {
			writeErr = fmt.Errorf("write execution event log: %w", err)
			return false
		}
		return true
	})
	return writeErr
}

// AppendExecutionEvent writes one event as a newline-delimited JSON
// line to w and flushes immediately, for callers appending events one
// at a time as a build progresses (the intercept topology's consumer
// in internal/pipeline, when run in capture-only mode) rather than
// handing WriteExecutionEventLog a complete collection up front.
func AppendExecutionEvent(w io.Writer, ev event.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("append execution event: %w", err)
	}
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(payload); err != nil {
		return fmt.Errorf("append execution event: %w", err)
	}
	if err := bw.WriteByte('\n'); err != nil {
		return fmt.Errorf("append execution event: %w", err)
	}
	return bw.Flush()
}

// ReadExecutionEventLog streams events out of r's newline-delimited
// JSON. Malformed lines are logged via slog and skipped rather than
// aborting the whole read, per spec.md §4.11.
func ReadExecutionEventLog(r io.Reader) iter.Seq[event.Event] {
	return func(yield func(event.Event) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 64<<20)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			var ev event.Event
			if err := json.Unmarshal(line, &ev); err != nil {
				slog.Warn("output.ReadExecutionEventLog: skipping malformed line", "error", err)
				continue
			}
			if !yield(ev) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			slog.Warn("output.ReadExecutionEventLog: scanner error", "error", err)
		}
	}
}
