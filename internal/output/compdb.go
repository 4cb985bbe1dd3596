// Package output implements the on-disk file formats this project reads
// and writes: the streaming JSON compilation database, and the
// newline-delimited execution event log.
//
// Grounded on _examples/original_source/bear/src/output/formats.rs's
// FileFormat<T> trait, adapted to Go's iter.Seq2 for streaming instead
// of buffering a whole collection in memory.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"iter"

	"github.com/banksean/bear/internal/output/clang"
)

// WriteCompilationDatabase streams entries to w as a JSON array without
// buffering the whole collection, per spec.md §4.11. It validates every
// entry before encoding and stops at the first invalid one.
func WriteCompilationDatabase(w io.Writer, entries iter.Seq[clang.Entry]) error {
	if _, err := io.WriteString(w, "["); err != nil {
		return fmt.Errorf("write compilation database: %w", err)
	}

	enc := json.NewEncoder(w)
	first := true
	var writeErr error
	entries(func(e clang.Entry) bool {
		if err := e.Validate(); err != nil {
			writeErr = fmt.Errorf("write compilation database: invalid entry for %q: %w", e.File, err)
			return false
		}
		if !first {
			if _, err := io.WriteString(w, ","); err != nil {
				writeErr = fmt.Errorf("write compilation database: %w", err)
				return false
			}
		}
		first = false
		if err := enc.Encode(e); err != nil {
			writeErr = fmt.Errorf("write compilation database: %w", err)
			return false
		}
		return true
	})
	if writeErr != nil {
		return writeErr
	}

	if _, err := io.WriteString(w, "]"); err != nil {
		return fmt.Errorf("write compilation database: %w", err)
	}
	return nil
}

// DBWriter incrementally appends entries to a JSON-array compilation
// database as they become available, for callers that receive entries
// one at a time over the lifetime of a build (the intercept topology's
// consumer in internal/pipeline) rather than having the whole
// collection ready to hand to WriteCompilationDatabase up front.
type DBWriter struct {
	w       io.Writer
	enc     *json.Encoder
	first   bool
	started bool
	closed  bool
}

// NewDBWriter wraps w for incremental compilation-database writes.
func NewDBWriter(w io.Writer) *DBWriter {
	return &DBWriter{w: w, enc: json.NewEncoder(w), first: true}
}

// Write validates and appends one entry, writing the opening "[" on
// the first call.
func (d *DBWriter) Write(e clang.Entry) error {
	if d.closed {
		return fmt.Errorf("write compilation database entry: writer already closed")
	}
	if err := e.Validate(); err != nil {
		return fmt.Errorf("write compilation database entry for %q: %w", e.File, err)
	}
	if !d.started {
		if _, err := io.WriteString(d.w, "["); err != nil {
			return fmt.Errorf("write compilation database: %w", err)
		}
		d.started = true
	}
	if !d.first {
		if _, err := io.WriteString(d.w, ","); err != nil {
			return fmt.Errorf("write compilation database: %w", err)
		}
	}
	d.first = false
	if err := d.enc.Encode(e); err != nil {
		return fmt.Errorf("write compilation database entry: %w", err)
	}
	return nil
}

// Close writes the closing "]", opening it first if no entry was ever
// written (yielding a valid, empty "[]" database).
func (d *DBWriter) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if !d.started {
		if _, err := io.WriteString(d.w, "["); err != nil {
			return fmt.Errorf("write compilation database: %w", err)
		}
	}
	if _, err := io.WriteString(d.w, "]"); err != nil {
		return fmt.Errorf("write compilation database: %w", err)
	}
	return nil
}

// ReadCompilationDatabase streams entries out of r's JSON array one at a
// time. Entries that fail Entry.Validate (missing directory/file, both
// or neither of arguments/command) are yielded as a zero Entry together
// with the validation error; the caller decides whether to keep
// iterating.
// Reading stops after the first decode error, since a JSON tokenizer
// cannot safely resynchronize mid-stream.
func ReadCompilationDatabase(r io.Reader) iter.Seq2[clang.Entry, error] {
	return func(yield func(clang.Entry, error) bool) {
		dec := json.NewDecoder(r)

		tok, err := dec.Token()
		if err == io.EOF {
			return
		}
		if err != nil {
			yield(clang.Entry{}, fmt.Errorf("read compilation database: %w", err))
			return
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '[' {
			yield(clang.Entry{}, fmt.Errorf("read compilation database: expected a JSON array"))
			return
		}

		for dec.More() {
			var e clang.Entry
			if err := dec.Decode(&e); err != nil {
				yield(clang.Entry{}, fmt.Errorf("read compilation database: %w", err))
				return
			}
			if err := e.Validate(); err != nil {
				if !yield(clang.Entry{}, fmt.Errorf("read compilation database: %q: %w", e.File, err)) {
					return
				}
				continue
			}
			if !yield(e, nil) {
				return
			}
		}
	}
}
