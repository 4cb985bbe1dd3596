package matcher

import (
	"testing"

	"github.com/banksean/bear/internal/semantic"
	"github.com/google/go-cmp/cmp"
)

func testAnalyzer() *FlagAnalyzer {
	return NewFlagAnalyzer([]FlagRule{
		Rule(ExactlyPattern("-c", 0), semantic.StopsAt(semantic.Compiling)),
		Rule(ExactlyPattern("-E", 0), semantic.StopsAt(semantic.Preprocessing)),
		OutputRule(GluedOrSepPattern("-o")),
		Rule(PrefixPattern("-I", 0), semantic.Configures(semantic.Preprocessing)),
		Rule(PrefixPattern("-idirafter", 0), semantic.Configures(semantic.Preprocessing)),
		Rule(PrefixPattern("-g", 0), semantic.Configures(semantic.Compiling)),
		Rule(EqOrSepPattern("-std"), semantic.Configures(semantic.Compiling)),
		Rule(ExactlyPattern("-pipe", 0), semantic.DriverOption()),
	})
}

func args(a ...semantic.Argument) []semantic.Argument { return a }

func TestParseClassifiesArguments(t *testing.T) {
	a := testAnalyzer()
	argv := []string{"gcc", "-c", "./file_a.c", "-o", "./file_a.o", "-Iinclude", "-std=c99"}

	got := a.Parse(argv)

	want := args(
		semantic.CompilerArg([]string{"gcc"}),
		semantic.OtherArg([]string{"-c"}, semantic.StopsAt(semantic.Compiling)),
		semantic.SourceArg([]string{"./file_a.c"}, false),
		semantic.OutputArg([]string{"-o", "./file_a.o"}),
		semantic.OtherArg([]string{"-Iinclude"}, semantic.Configures(semantic.Preprocessing)),
		semantic.OtherArg([]string{"-std=c99"}, semantic.Configures(semantic.Compiling)),
	)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestLongestLiteralWinsOverShorterPrefix(t *testing.T) {
	a := testAnalyzer()
	got := a.Parse([]string{"gcc", "-idirafter/usr/include"})

	if len(got) != 2 {
		t.Fatalf("expected 2 arguments, got %d: %+v", len(got), got)
	}
	if got[1].Effect.Pass != semantic.Preprocessing {
		t.Errorf("expected -idirafter to classify as Preprocessing, got %+v", got[1].Effect)
	}
	if got[1].Tokens[0] != "-idirafter/usr/include" {
		t.Errorf("expected -idirafter to consume the full glued token, got %q", got[1].Tokens[0])
	}
}

func TestBinarySourceDetected(t *testing.T) {
	a := testAnalyzer()
	got := a.Parse([]string{"gcc", "file_a.o", "file_b.c"})

	if !got[1].Binary {
		t.Errorf("expected file_a.o to be a binary source argument, got %+v", got[1])
	}
	if got[2].Binary {
		t.Errorf("expected file_b.c to be a non-binary source argument, got %+v", got[2])
	}
}

func TestResponseFileIsPreservedVerbatim(t *testing.T) {
	a := testAnalyzer()
	got := a.Parse([]string{"gcc", "@build.rsp"})

	if got[1].Kind != semantic.KindOther || got[1].Tokens[0] != "@build.rsp" {
		t.Errorf("expected @build.rsp preserved as an Other argument, got %+v", got[1])
	}
}

func TestUnrecognizedFlagIsOtherWithNoEffect(t *testing.T) {
	a := testAnalyzer()
	got := a.Parse([]string{"gcc", "-Wall"})

	if got[1].Kind != semantic.KindOther || got[1].Effect.Kind != semantic.EffectNone {
		t.Errorf("expected -Wall to be an Other argument with no effect, got %+v", got[1])
	}
}

func TestGluedOrSepConsumesSeparateArgument(t *testing.T) {
	a := testAnalyzer()
	got := a.Parse([]string{"gcc", "-o", "out.o"})

	if len(got) != 2 {
		t.Fatalf("expected 2 arguments, got %d: %+v", len(got), got)
	}
	if diff := cmp.Diff([]string{"-o", "out.o"}, got[1].Tokens); diff != "" {
		t.Errorf("output tokens mismatch (-want +got):\n%s", diff)
	}
}
