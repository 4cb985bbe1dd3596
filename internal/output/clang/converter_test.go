package clang

import (
	"testing"

	"github.com/banksean/bear/internal/semantic"
	"github.com/google/go-cmp/cmp"
)

func TestSimpleCompileYieldsOneEntry(t *testing.T) {
	cmd := semantic.NewCompilerCommand("/home/u", "/usr/bin/gcc", []semantic.Argument{
		semantic.CompilerArg([]string{"gcc"}),
		semantic.OtherArg([]string{"-c"}, semantic.StopsAt(semantic.Compiling)),
		semantic.OtherArg([]string{"-Wall"}, semantic.None()),
		semantic.SourceArg([]string{"main.c"}, false),
		semantic.OutputArg([]string{"-o", "main.o"}),
	})

	c := NewConverter(Format{PathFormatting: AsIs, UseArrayFormat: true, IncludeOutputField: true})
	entries := c.ToEntries(cmd)

	want := []Entry{
		WithArguments("/home/u", "main.c", "main.o", []string{"gcc", "-c", "-Wall", "main.c", "-o", "main.o"}),
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestMultiSourceCompileYieldsOneEntryPerSource(t *testing.T) {
	cmd := semantic.NewCompilerCommand("/home/u", "g++", []semantic.Argument{
		semantic.CompilerArg([]string{"g++"}),
		semantic.OtherArg([]string{"-c"}, semantic.StopsAt(semantic.Compiling)),
		semantic.SourceArg([]string{"a.cpp"}, false),
		semantic.SourceArg([]string{"b.cpp"}, false),
	})

	c := NewConverter(Format{PathFormatting: AsIs, UseArrayFormat: true})
	entries := c.ToEntries(cmd)

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(entries), entries)
	}
	if entries[0].File != "a.cpp" || entries[1].File != "b.cpp" {
		t.Errorf("unexpected file ordering: %+v", entries)
	}
	if entries[0].Arguments[len(entries[0].Arguments)-1] != "a.cpp" {
		t.Errorf("expected entry argv to end with its own source, got %+v", entries[0].Arguments)
	}
}

func TestInfoOnlyYieldsNoEntries(t *testing.T) {
	cmd := semantic.NewCompilerCommand("/home/u", "gcc", []semantic.Argument{
		semantic.CompilerArg([]string{"gcc"}),
		semantic.OtherArg([]string{"--version"}, semantic.InfoAndExit()),
	})
	c := NewConverter(Format{PathFormatting: AsIs, UseArrayFormat: true})
	if entries := c.ToEntries(cmd); len(entries) != 0 {
		t.Errorf("expected no entries for an info-only command, got %+v", entries)
	}
}

func TestPreprocessingOnlyYieldsNoEntries(t *testing.T) {
	cmd := semantic.NewCompilerCommand("/home/u", "gcc", []semantic.Argument{
		semantic.CompilerArg([]string{"gcc"}),
		semantic.OtherArg([]string{"-E"}, semantic.StopsAt(semantic.Preprocessing)),
		semantic.OtherArg([]string{"-DFOO"}, semantic.Configures(semantic.Preprocessing)),
		semantic.SourceArg([]string{"main.c"}, false),
	})
	c := NewConverter(Format{PathFormatting: AsIs, UseArrayFormat: true})
	if entries := c.ToEntries(cmd); len(entries) != 0 {
		t.Errorf("expected no entries for a preprocessing-only command, got %+v", entries)
	}
}

func TestLinkOnlyYieldsNoEntries(t *testing.T) {
	cmd := semantic.NewCompilerCommand("/home/u", "gcc", []semantic.Argument{
		semantic.CompilerArg([]string{"gcc"}),
		semantic.SourceArg([]string{"a.o"}, true),
		semantic.OtherArg([]string{"-o"}, semantic.None()),
	})
	c := NewConverter(Format{PathFormatting: AsIs, UseArrayFormat: true})
	if entries := c.ToEntries(cmd); len(entries) != 0 {
		t.Errorf("expected no entries for a link-only (binary-source-only) command, got %+v", entries)
	}
}

func TestCompileAndLinkFiltersLinkingArguments(t *testing.T) {
	cmd := semantic.NewCompilerCommand("/home/u", "gcc", []semantic.Argument{
		semantic.CompilerArg([]string{"gcc"}),
		semantic.SourceArg([]string{"main.c"}, false),
		semantic.OtherArg([]string{"-L/usr/lib"}, semantic.Configures(semantic.Linking)),
		semantic.OtherArg([]string{"-lmath"}, semantic.Configures(semantic.Linking)),
		semantic.OtherArg([]string{"-Wall"}, semantic.None()),
	})
	c := NewConverter(Format{PathFormatting: AsIs, UseArrayFormat: true})
	entries := c.ToEntries(cmd)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	for _, a := range entries[0].Arguments {
		if a == "-L/usr/lib" || a == "-lmath" {
			t.Errorf("expected linking arguments to be filtered out, found %q in %v", a, entries[0].Arguments)
		}
	}
	found := false
	for _, a := range entries[0].Arguments {
		if a == "-Wall" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected -Wall to survive, got %v", entries[0].Arguments)
	}
}

func TestCommandFormUsesShellQuoting(t *testing.T) {
	cmd := semantic.NewCompilerCommand("/home/u", "gcc", []semantic.Argument{
		semantic.CompilerArg([]string{"gcc"}),
		semantic.SourceArg([]string{"my file.c"}, false),
	})
	c := NewConverter(Format{PathFormatting: AsIs, UseArrayFormat: false})
	entries := c.ToEntries(cmd)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Arguments != nil {
		t.Errorf("expected array form to be empty when use_array_format is false, got %v", entries[0].Arguments)
	}
	if entries[0].Command != "gcc 'my file.c'" {
		t.Errorf("expected shell-quoted command %q, got %q", "gcc 'my file.c'", entries[0].Command)
	}
}

func TestEntryValidateXOR(t *testing.T) {
	both := Entry{Directory: "/d", File: "f.c", Arguments: []string{"gcc"}, Command: "gcc"}
	if err := both.Validate(); err != ErrBothArgumentsForms {
		t.Errorf("expected ErrBothArgumentsForms, got %v", err)
	}

	neither := Entry{Directory: "/d", File: "f.c"}
	if err := neither.Validate(); err != ErrMissingArgumentsForm {
		t.Errorf("expected ErrMissingArgumentsForm, got %v", err)
	}
}

func TestDeduplicatorDefaultFieldsFileAndArguments(t *testing.T) {
	d := NewDeduplicator(nil)
	e1 := WithArguments("/a", "main.c", "", []string{"gcc", "main.c"})
	e2 := WithArguments("/b", "main.c", "", []string{"gcc", "main.c"})

	if !d.Keep(e1) {
		t.Fatal("expected the first entry to be kept")
	}
	if d.Keep(e2) {
		t.Fatal("expected the second entry (same file+arguments, different directory) to be suppressed")
	}
}
