package filter

import (
	"testing"

	"github.com/banksean/bear/internal/semantic"
)

func compilerCommand(workingDir, executable string, argv ...string) semantic.Command {
	var args []semantic.Argument
	args = append(args, semantic.CompilerArg(argv[:1]))
	for _, tok := range argv[1:] {
		args = append(args, semantic.OtherArg([]string{tok}, semantic.None()))
	}
	return semantic.NewCompilerCommand(workingDir, executable, args)
}

func TestValidateCompilerRulesRejectsAlwaysWithMatchArgs(t *testing.T) {
	err := ValidateCompilerRules([]CompilerRule{{Path: "/usr/bin/gcc", Instr: Always, MatchArgs: []string{"-DX"}}})
	if err == nil {
		t.Fatal("expected an error for Always with match_args")
	}
}

func TestValidateCompilerRulesRejectsConditionalWithoutMatchArgs(t *testing.T) {
	err := ValidateCompilerRules([]CompilerRule{{Path: "/usr/bin/gcc", Instr: Conditional}})
	if err == nil {
		t.Fatal("expected an error for Conditional without match_args")
	}
}

func TestValidateCompilerRulesRejectsAlwaysAfterConditional(t *testing.T) {
	err := ValidateCompilerRules([]CompilerRule{
		{Path: "/usr/bin/gcc", Instr: Conditional, MatchArgs: []string{"-g"}},
		{Path: "/usr/bin/gcc", Instr: Always},
	})
	if err == nil {
		t.Fatal("expected an error for Always following Conditional")
	}
}

func TestValidateCompilerRulesAcceptsWellFormedOrdering(t *testing.T) {
	err := ValidateCompilerRules([]CompilerRule{
		{Path: "/usr/bin/gcc", Instr: Conditional, MatchArgs: []string{"-g"}},
		{Path: "/usr/bin/gcc", Instr: Never},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCompilerFilterAlwaysDropsCommand(t *testing.T) {
	cf := NewCompilerFilter([]CompilerRule{{Path: "/usr/bin/gcc", Instr: Always}})
	f := NewFilter(cf, NewSourceFilter(nil, false))

	cmd := compilerCommand("/src", "/usr/bin/gcc", "gcc", "-c", "main.c")
	got := f.Apply(cmd)
	if got.Tag != semantic.CommandIgnored {
		t.Fatalf("expected command to be ignored, got %+v", got)
	}
}

func TestCompilerFilterConditionalDropsOnlyWhenArgumentPresent(t *testing.T) {
	cf := NewCompilerFilter([]CompilerRule{{Path: "/usr/bin/gcc", Instr: Conditional, MatchArgs: []string{"-DDEBUG"}}})
	f := NewFilter(cf, NewSourceFilter(nil, false))

	dropped := compilerCommand("/src", "/usr/bin/gcc", "gcc", "-DDEBUG", "main.c")
	if got := f.Apply(dropped); got.Tag != semantic.CommandIgnored {
		t.Fatalf("expected conditional match to drop the command, got %+v", got)
	}

	kept := compilerCommand("/src", "/usr/bin/gcc", "gcc", "-O2", "main.c")
	if got := f.Apply(kept); got.Tag != semantic.CommandCompiler {
		t.Fatalf("expected no match to keep the command, got %+v", got)
	}
}

func TestSourceFilterDropsOnlyWhenAllSourcesFiltered(t *testing.T) {
	sf := NewSourceFilter([]DirectoryRule{{Directory: "/src/tests", Instr: Always}}, false)
	f := NewFilter(NewCompilerFilter(nil), sf)

	var args []semantic.Argument
	args = append(args, semantic.CompilerArg([]string{"gcc"}))
	args = append(args, semantic.SourceArg([]string{"tests/a.c"}, false))
	cmd := semantic.NewCompilerCommand("/src", "/usr/bin/gcc", args)

	got := f.Apply(cmd)
	if got.Tag != semantic.CommandIgnored {
		t.Fatalf("expected all-filtered sources to drop the command, got %+v", got)
	}
}

func TestSourceFilterKeepsWhenAnySourceSurvives(t *testing.T) {
	sf := NewSourceFilter([]DirectoryRule{{Directory: "/src/tests", Instr: Always}}, false)
	f := NewFilter(NewCompilerFilter(nil), sf)

	var args []semantic.Argument
	args = append(args, semantic.CompilerArg([]string{"gcc"}))
	args = append(args, semantic.SourceArg([]string{"tests/a.c"}, false))
	args = append(args, semantic.SourceArg([]string{"src/b.c"}, false))
	cmd := semantic.NewCompilerCommand("/src", "/usr/bin/gcc", args)

	got := f.Apply(cmd)
	if got.Tag != semantic.CommandCompiler {
		t.Fatalf("expected command with at least one surviving source to be kept, got %+v", got)
	}
}

func TestFilterPassesThroughNonCompilerCommands(t *testing.T) {
	f := NewFilter(NewCompilerFilter(nil), NewSourceFilter(nil, false))
	ignored := semantic.Ignored("already dropped upstream")

	got := f.Apply(ignored)
	if got.Tag != semantic.CommandIgnored || got.Reason != "already dropped upstream" {
		t.Fatalf("expected pass-through of already-ignored command, got %+v", got)
	}
}
