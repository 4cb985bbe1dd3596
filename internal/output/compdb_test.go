package output

import (
	"bytes"
	"encoding/json"
	"slices"
	"testing"

	"github.com/banksean/bear/internal/output/clang"
)

func TestWriteReadCompilationDatabaseRoundTrip(t *testing.T) {
	entries := []clang.Entry{
		clang.WithArguments("/home/user", "./file_a.c", "", []string{"cc", "-c", "./file_a.c", "-o", "./file_a.o"}),
		clang.WithArguments("/home/user", "./file_b.c", "./file_b.o", []string{"cc", "-c", "./file_b.c", "-o", "./file_b.o"}),
	}

	var buf bytes.Buffer
	if err := WriteCompilationDatabase(&buf, slices.Values(entries)); err != nil {
		t.Fatalf("WriteCompilationDatabase: %v", err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatalf("written output is not a JSON array: %v", err)
	}
	if len(raw) != 2 {
		t.Fatalf("expected 2 array elements, got %d", len(raw))
	}

	var got []clang.Entry
	for e, err := range ReadCompilationDatabase(bytes.NewReader(buf.Bytes())) {
		if err != nil {
			t.Fatalf("ReadCompilationDatabase: %v", err)
		}
		got = append(got, e)
	}
	if len(got) != len(entries) {
		t.Fatalf("expected %d entries back, got %d", len(entries), len(got))
	}
	for i := range entries {
		if got[i].File != entries[i].File || got[i].Directory != entries[i].Directory {
			t.Errorf("entry %d mismatch: got %+v, want %+v", i, got[i], entries[i])
		}
	}
}

func TestReadCompilationDatabaseEmptyArray(t *testing.T) {
	var count int
	for range ReadCompilationDatabase(bytes.NewReader([]byte("[]"))) {
		count++
	}
	if count != 0 {
		t.Errorf("expected no entries from an empty array, got %d", count)
	}
}

func TestReadCompilationDatabaseRejectsEntryMissingDirectory(t *testing.T) {
	content := `[{"file": "./file_a.c", "command": "cc source.c"}]`
	var gotErr error
	var count int
	for _, err := range ReadCompilationDatabase(bytes.NewReader([]byte(content))) {
		count++
		gotErr = err
	}
	if count != 1 {
		t.Fatalf("expected exactly one yielded item, got %d", count)
	}
	if gotErr == nil {
		t.Error("expected an error for a missing directory field")
	}
}

func TestReadCompilationDatabaseRejectsBothArgumentsAndCommand(t *testing.T) {
	content := `[{"directory": "/home/user", "file": "./file_a.c", "command": "cc source.c", "arguments": ["cc", "source.c"]}]`
	var gotErr error
	for _, err := range ReadCompilationDatabase(bytes.NewReader([]byte(content))) {
		gotErr = err
	}
	if gotErr == nil {
		t.Error("expected an error when both arguments and command are present")
	}
}

func TestReadCompilationDatabaseRejectsNonJSON(t *testing.T) {
	var gotErr error
	var count int
	for _, err := range ReadCompilationDatabase(bytes.NewReader([]byte("this is not json"))) {
		count++
		gotErr = err
	}
	if count != 1 || gotErr == nil {
		t.Errorf("expected a single decode error, got count=%d err=%v", count, gotErr)
	}
}

func TestWriteCompilationDatabaseFailsOnInvalidEntry(t *testing.T) {
	entries := []clang.Entry{{File: "main.cpp", Arguments: []string{"clang", "-c"}}}
	var buf bytes.Buffer
	err := WriteCompilationDatabase(&buf, slices.Values(entries))
	if err == nil {
		t.Fatal("expected an error writing an entry with an empty directory")
	}
}
