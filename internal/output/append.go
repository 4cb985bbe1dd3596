package output

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/banksean/bear/internal/output/clang"
)

// LoadCompilationDatabase collects every entry out of r, tolerating (and
// logging) individually invalid entries, so that a previously generated
// database with format drift never blocks an append-mode run.
//
// Grounded on original_source/src/io/clang/builder.rs's
// Builder::build, which loads the previous database with a
// tolerant(true) flag before merging in newly observed entries.
func LoadCompilationDatabase(r io.Reader) ([]clang.Entry, error) {
	var entries []clang.Entry
	for e, err := range ReadCompilationDatabase(r) {
		if err != nil {
			slog.Warn("output.LoadCompilationDatabase: skipping invalid entry", "error", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// MergeCompilationDatabases combines a previously loaded database with
// freshly generated entries, keeping the first occurrence under dedup's
// key and preserving existing-then-fresh ordering.
func MergeCompilationDatabases(dedup *clang.Deduplicator, existing, fresh []clang.Entry) []clang.Entry {
	merged := make([]clang.Entry, 0, len(existing)+len(fresh))
	for _, e := range existing {
		if dedup.Keep(e) {
			merged = append(merged, e)
		}
	}
	for _, e := range fresh {
		if dedup.Keep(e) {
			merged = append(merged, e)
		}
	}
	return merged
}

// WriteCompilationDatabaseFile is a convenience wrapper around
// WriteCompilationDatabase for whole-slice writes, used by append mode
// where the merged result already lives in memory.
func WriteCompilationDatabaseFile(w io.Writer, entries []clang.Entry) error {
	if err := WriteCompilationDatabase(w, func(yield func(clang.Entry) bool) {
		for _, e := range entries {
			if !yield(e) {
				return
			}
		}
	}); err != nil {
		return fmt.Errorf("write compilation database file: %w", err)
	}
	return nil
}
