package compilers

import (
	"testing"

	"github.com/banksean/bear/internal/event"
	"github.com/banksean/bear/internal/semantic"
)

func TestDispatchRecognizesGcc(t *testing.T) {
	d := NewDispatch(nil)
	cmd, ok := d.Recognize(event.Execution{
		Executable: "/usr/bin/gcc",
		Arguments:  []string{"gcc", "-c", "main.c", "-o", "main.o"},
		WorkingDir: "/src",
	})
	if !ok {
		t.Fatal("expected gcc to be recognized")
	}
	if cmd.Tag != semantic.CommandCompiler {
		t.Fatalf("expected a compiler command, got %+v", cmd)
	}
}

func TestDispatchRecognizesVersionedGccName(t *testing.T) {
	d := NewDispatch(nil)
	_, ok := d.Recognize(event.Execution{
		Executable: "/usr/bin/x86_64-linux-gnu-gcc-12",
		Arguments:  []string{"x86_64-linux-gnu-gcc-12", "-c", "main.c"},
	})
	if !ok {
		t.Fatal("expected versioned/target-prefixed gcc name to be recognized")
	}
}

func TestDispatchUnknownExecutableIsNotRecognized(t *testing.T) {
	d := NewDispatch(nil)
	_, ok := d.Recognize(event.Execution{Executable: "/bin/ls", Arguments: []string{"ls", "-l"}})
	if ok {
		t.Fatal("expected ls to be unrecognized")
	}
}

func TestDispatchUnwrapsCcacheToGcc(t *testing.T) {
	d := NewDispatch(nil)
	cmd, ok := d.Recognize(event.Execution{
		Executable: "/usr/bin/ccache",
		Arguments:  []string{"ccache", "gcc", "-c", "main.c"},
		WorkingDir: "/src",
	})
	if !ok {
		t.Fatal("expected ccache-wrapped gcc to be recognized")
	}
	if cmd.Tag != semantic.CommandCompiler || cmd.Executable != "gcc" {
		t.Fatalf("expected unwrapped gcc command, got %+v", cmd)
	}
}

func TestDispatchUnwrapsDistccWithOptions(t *testing.T) {
	d := NewDispatch(nil)
	cmd, ok := d.Recognize(event.Execution{
		Executable: "/usr/bin/distcc",
		Arguments:  []string{"distcc", "-j", "4", "gcc", "-c", "main.c"},
	})
	if !ok {
		t.Fatal("expected distcc-wrapped gcc to be recognized")
	}
	if cmd.Executable != "gcc" {
		t.Fatalf("expected distcc to unwrap to gcc, got %+v", cmd)
	}
}

func TestDispatchNestedWrapperIsNotUnwrapped(t *testing.T) {
	d := NewDispatch(nil)
	cmd, ok := d.Recognize(event.Execution{
		Executable: "/usr/bin/ccache",
		Arguments:  []string{"ccache", "distcc", "gcc", "-c", "main.c"},
	})
	if !ok {
		t.Fatal("expected the outer wrapper to be recognized even if not unwrapped")
	}
	if cmd.Tag != semantic.CommandIgnored {
		t.Fatalf("expected nested wrapper to be ignored, got %+v", cmd)
	}
}

func TestDispatchConfigHintOverridesRecognition(t *testing.T) {
	d := NewDispatch([]Hint{{Path: "/custom/path/my-gcc", Family: FamilyGCC}})
	cmd, ok := d.Recognize(event.Execution{
		Executable: "/custom/path/my-gcc",
		Arguments:  []string{"my-gcc", "-c", "main.c"},
	})
	if !ok || cmd.Tag != semantic.CommandCompiler {
		t.Fatalf("expected config hint to recognize custom path as gcc, got ok=%v cmd=%+v", ok, cmd)
	}
}

func TestDispatchConfigHintCanIgnore(t *testing.T) {
	d := NewDispatch([]Hint{{Path: "/usr/bin/gcc", Ignore: true}})
	cmd, ok := d.Recognize(event.Execution{Executable: "/usr/bin/gcc", Arguments: []string{"gcc", "-c", "main.c"}})
	if !ok || cmd.Tag != semantic.CommandIgnored {
		t.Fatalf("expected ignored command, got ok=%v cmd=%+v", ok, cmd)
	}
}

func TestEnvironmentIncludesBecomeSyntheticIFlags(t *testing.T) {
	d := NewDispatch(nil)
	cmd, ok := d.Recognize(event.Execution{
		Executable:  "/usr/bin/gcc",
		Arguments:   []string{"gcc", "-c", "main.c"},
		Environment: map[string]string{"CPATH": "/opt/include:/opt/include2"},
	})
	if !ok {
		t.Fatal("expected gcc to be recognized")
	}
	found := 0
	for _, a := range cmd.Arguments {
		if a.Kind == semantic.KindOther && len(a.Tokens) == 2 && a.Tokens[0] == "-I" &&
			(a.Tokens[1] == "/opt/include" || a.Tokens[1] == "/opt/include2") {
			found++
		}
	}
	if found != 2 {
		t.Fatalf("expected 2 synthetic -I arguments from CPATH, found %d in %+v", found, cmd.Arguments)
	}
}
