package output

import (
	"bytes"
	"testing"

	"github.com/banksean/bear/internal/output/clang"
)

func TestMergeCompilationDatabasesDeduplicatesAcrossExistingAndFresh(t *testing.T) {
	existing := []clang.Entry{
		clang.WithArguments("/home/user", "a.c", "", []string{"gcc", "a.c"}),
	}
	fresh := []clang.Entry{
		clang.WithArguments("/home/user", "a.c", "", []string{"gcc", "a.c"}),
		clang.WithArguments("/home/user", "b.c", "", []string{"gcc", "b.c"}),
	}

	dedup := clang.NewDeduplicator(nil)
	merged := MergeCompilationDatabases(dedup, existing, fresh)

	if len(merged) != 2 {
		t.Fatalf("expected 2 entries after dedup, got %d: %+v", len(merged), merged)
	}
	if merged[0].File != "a.c" || merged[1].File != "b.c" {
		t.Errorf("unexpected merge result: %+v", merged)
	}
}

func TestLoadCompilationDatabaseSkipsInvalidEntries(t *testing.T) {
	content := `[
		{"directory": "/home/user", "file": "a.c", "arguments": ["gcc", "a.c"]},
		{"file": "bad.c", "arguments": ["gcc", "bad.c"]},
		{"directory": "/home/user", "file": "b.c", "arguments": ["gcc", "b.c"]}
	]`
	entries, err := LoadCompilationDatabase(bytes.NewReader([]byte(content)))
	if err != nil {
		t.Fatalf("LoadCompilationDatabase: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected the entry missing a directory to be skipped, got %d entries: %+v", len(entries), entries)
	}
}

func TestWriteCompilationDatabaseFileRoundTrips(t *testing.T) {
	entries := []clang.Entry{
		clang.WithArguments("/home/user", "a.c", "", []string{"gcc", "a.c"}),
	}
	var buf bytes.Buffer
	if err := WriteCompilationDatabaseFile(&buf, entries); err != nil {
		t.Fatalf("WriteCompilationDatabaseFile: %v", err)
	}
	got, err := LoadCompilationDatabase(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("LoadCompilationDatabase: %v", err)
	}
	if len(got) != 1 || got[0].File != "a.c" {
		t.Errorf("unexpected round trip result: %+v", got)
	}
}
