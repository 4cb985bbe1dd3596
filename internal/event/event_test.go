package event

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func fixtureEvents() []Event {
	return []Event{
		{
			Pid: 3425,
			Execution: Execution{
				Executable:  "/usr/bin/ls",
				Arguments:   []string{"ls", "-l"},
				WorkingDir:  "/tmp",
				Environment: map[string]string{},
			},
		},
		{
			Pid: 3492,
			Execution: Execution{
				Executable: "/usr/bin/cc",
				Arguments:  []string{"cc", "-c", "./file_a.c", "-o", "./file_a.o"},
				WorkingDir: "/home/user",
				Environment: map[string]string{
					"PATH": "/usr/bin:/bin",
					"HOME": "/home/user",
				},
			},
		},
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	for _, e := range fixtureEvents() {
		if _, err := WriteInto(&buf, e); err != nil {
			t.Fatalf("WriteInto: %v", err)
		}
	}

	for _, want := range fixtureEvents() {
		got, err := ReadFrom(&buf)
		if err != nil {
			t.Fatalf("ReadFrom: %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("event mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestReadFromTruncatedFrameIsError(t *testing.T) {
	var buf bytes.Buffer
	if _, err := WriteInto(&buf, fixtureEvents()[0]); err != nil {
		t.Fatalf("WriteInto: %v", err)
	}

	truncated := bytes.NewReader(buf.Bytes()[:buf.Len()-2])
	if _, err := ReadFrom(truncated); err == nil {
		t.Fatal("expected error reading truncated frame, got nil")
	}
}

func TestPreloadStateEncodeDecode(t *testing.T) {
	want := PreloadState{Destination: "127.0.0.1:54321", LibraryPath: "/usr/lib/bear-preload.so"}
	encoded, err := want.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := DecodePreloadState(encoded)
	if err != nil {
		t.Fatalf("DecodePreloadState: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("preload state mismatch (-want +got):\n%s", diff)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	e := Execution{
		Arguments:   []string{"gcc", "-c", "a.c"},
		Environment: map[string]string{"PATH": "/bin"},
	}
	clone := e.Clone()
	clone.Arguments[0] = "clang"
	clone.Environment["PATH"] = "/usr/bin"

	if e.Arguments[0] != "gcc" {
		t.Errorf("mutating clone's arguments mutated original: %v", e.Arguments)
	}
	if e.Environment["PATH"] != "/bin" {
		t.Errorf("mutating clone's environment mutated original: %v", e.Environment)
	}
}
