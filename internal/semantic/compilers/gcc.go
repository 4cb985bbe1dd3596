package compilers

import (
	"github.com/banksean/bear/internal/event"
	"github.com/banksean/bear/internal/semantic"
	"github.com/banksean/bear/internal/semantic/matcher"
)

// GccInterpreter recognizes GCC and GCC-compatible command lines.
//
// Grounded on
// _examples/original_source/bear/src/semantic/interpreters/compilers/gcc.rs's
// GCC_FLAGS table. Where the original's single ArgumentKind::Other(pass)
// variant doesn't distinguish "configures a pass" from "stops the driver
// after a pass" (see gcc.rs's -c/-E/-S/-r rules, all just Other(Some(pass))),
// this port assigns StopsAt to -c/-E/-S (matching
// semantic.PassEffect's EffectStopsAt, which §4.10's entry-generation
// policy reads directly) and Configures to everything else, including -r
// (partial-link relocatable output, which does not itself halt the
// driver).
type GccInterpreter struct {
	matcher *matcher.FlagAnalyzer
}

func NewGccInterpreter() *GccInterpreter {
	return &GccInterpreter{matcher: matcher.NewFlagAnalyzer(gccFlags())}
}

func (g *GccInterpreter) Recognize(ex event.Execution) (semantic.Command, bool) {
	args := g.matcher.Parse(withEnvironmentIncludes(ex))
	return semantic.NewCompilerCommand(ex.WorkingDir, ex.Executable, args), true
}

func gccFlags() []matcher.FlagRule {
	return []matcher.FlagRule{
		matcher.Rule(matcher.ExactlyPattern("-c", 0), semantic.StopsAt(semantic.Compiling)),
		matcher.Rule(matcher.ExactlyPattern("-E", 0), semantic.StopsAt(semantic.Preprocessing)),
		matcher.Rule(matcher.ExactlyPattern("-S", 0), semantic.StopsAt(semantic.Assembling)),
		matcher.Rule(matcher.ExactlyPattern("-r", 0), semantic.Configures(semantic.Linking)),
		matcher.Rule(matcher.ExactlyPattern("-pipe", 0), semantic.DriverOption()),
		matcher.Rule(matcher.ExactlyPattern("-v", 0), semantic.DriverOption()),
		matcher.Rule(matcher.ExactlyPattern("-###", 0), semantic.InfoAndExit()),
		matcher.Rule(matcher.PrefixPattern("--help", 0), semantic.InfoAndExit()),
		matcher.Rule(matcher.ExactlyPattern("--version", 0), semantic.InfoAndExit()),
		matcher.Rule(matcher.ExactlyPattern("-ansi", 0), semantic.Configures(semantic.Compiling)),

		matcher.Rule(matcher.PrefixPattern("-g", 0), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.PrefixPattern("-O", 0), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.ExactlyPattern("-w", 0), semantic.None()),
		matcher.Rule(matcher.PrefixPattern("-W", 0), semantic.None()),
		matcher.Rule(matcher.PrefixPattern("-f", 0), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.PrefixPattern("-m", 0), semantic.Configures(semantic.Compiling)),

		matcher.Rule(matcher.GluedOrSepPattern("-I"), semantic.Configures(semantic.Preprocessing)),
		matcher.Rule(matcher.ExactlyPattern("-isystem", 1), semantic.Configures(semantic.Preprocessing)),
		matcher.Rule(matcher.ExactlyPattern("-iquote", 1), semantic.Configures(semantic.Preprocessing)),
		matcher.Rule(matcher.ExactlyPattern("-idirafter", 1), semantic.Configures(semantic.Preprocessing)),
		matcher.Rule(matcher.ExactlyPattern("-iprefix", 1), semantic.Configures(semantic.Preprocessing)),
		matcher.Rule(matcher.ExactlyPattern("-iwithprefix", 1), semantic.Configures(semantic.Preprocessing)),
		matcher.Rule(matcher.ExactlyPattern("-iwithprefixbefore", 1), semantic.Configures(semantic.Preprocessing)),
		matcher.Rule(matcher.ExactlyPattern("-imultilib", 1), semantic.Configures(semantic.Preprocessing)),
		matcher.Rule(matcher.ExactlyPattern("-isysroot", 1), semantic.Configures(semantic.Preprocessing)),
		matcher.Rule(matcher.EqOrSepPattern("--sysroot"), semantic.Configures(semantic.Preprocessing)),
		matcher.Rule(matcher.ExactlyPattern("-nostdinc", 0), semantic.Configures(semantic.Preprocessing)),
		matcher.Rule(matcher.ExactlyPattern("-nostdinc++", 0), semantic.Configures(semantic.Preprocessing)),

		matcher.Rule(matcher.GluedOrSepPattern("-L"), semantic.Configures(semantic.Linking)),
		matcher.Rule(matcher.GluedOrSepPattern("-l"), semantic.Configures(semantic.Linking)),
		matcher.Rule(matcher.ExactlyPattern("-nostartfiles", 0), semantic.Configures(semantic.Linking)),
		matcher.Rule(matcher.ExactlyPattern("-nodefaultlibs", 0), semantic.Configures(semantic.Linking)),
		matcher.Rule(matcher.ExactlyPattern("-nostdlib", 0), semantic.Configures(semantic.Linking)),
		matcher.Rule(matcher.ExactlyPattern("-nostdlib++", 0), semantic.Configures(semantic.Linking)),
		matcher.Rule(matcher.ExactlyPattern("-static", 0), semantic.Configures(semantic.Linking)),
		matcher.Rule(matcher.ExactlyPattern("-static-libgcc", 0), semantic.Configures(semantic.Linking)),
		matcher.Rule(matcher.ExactlyPattern("-static-libstdc++", 0), semantic.Configures(semantic.Linking)),
		matcher.Rule(matcher.ExactlyPattern("-shared", 0), semantic.Configures(semantic.Linking)),
		matcher.Rule(matcher.ExactlyPattern("-shared-libgcc", 0), semantic.Configures(semantic.Linking)),
		matcher.Rule(matcher.ExactlyPattern("-pie", 0), semantic.Configures(semantic.Linking)),
		matcher.Rule(matcher.ExactlyPattern("-rdynamic", 0), semantic.Configures(semantic.Linking)),

		matcher.Rule(matcher.GluedOrSepPattern("-D"), semantic.Configures(semantic.Preprocessing)),
		matcher.Rule(matcher.GluedOrSepPattern("-U"), semantic.Configures(semantic.Preprocessing)),
		matcher.Rule(matcher.GluedOrSepPattern("-include"), semantic.Configures(semantic.Preprocessing)),

		matcher.OutputRule(matcher.GluedOrSepPattern("-o")),

		matcher.Rule(matcher.EqOrSepPattern("-std"), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.GluedOrSepPattern("-x"), semantic.Configures(semantic.Compiling)),

		matcher.Rule(matcher.ExactlyPattern("-M", 0), semantic.Configures(semantic.Preprocessing)),
		matcher.Rule(matcher.ExactlyPattern("-MM", 0), semantic.Configures(semantic.Preprocessing)),
		matcher.Rule(matcher.ExactlyPattern("-MD", 0), semantic.Configures(semantic.Preprocessing)),
		matcher.Rule(matcher.ExactlyPattern("-MMD", 0), semantic.Configures(semantic.Preprocessing)),
		matcher.Rule(matcher.ExactlyPattern("-MF", 1), semantic.Configures(semantic.Preprocessing)),
		matcher.Rule(matcher.ExactlyPattern("-MG", 0), semantic.Configures(semantic.Preprocessing)),
		matcher.Rule(matcher.ExactlyPattern("-MP", 0), semantic.Configures(semantic.Preprocessing)),
		matcher.Rule(matcher.ExactlyPattern("-MT", 1), semantic.Configures(semantic.Preprocessing)),
		matcher.Rule(matcher.ExactlyPattern("-MQ", 1), semantic.Configures(semantic.Preprocessing)),

		matcher.Rule(matcher.PrefixPattern("-Wl,", 0), semantic.Configures(semantic.Linking)),
		matcher.Rule(matcher.ExactlyPattern("-Xlinker", 1), semantic.Configures(semantic.Linking)),
		matcher.Rule(matcher.ExactlyPattern("-T", 1), semantic.Configures(semantic.Linking)),
		matcher.Rule(matcher.ExactlyPattern("-u", 1), semantic.Configures(semantic.Linking)),
		matcher.Rule(matcher.ExactlyPattern("-z", 1), semantic.Configures(semantic.Linking)),

		matcher.Rule(matcher.PrefixPattern("-Wa,", 0), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.ExactlyPattern("-Xassembler", 1), semantic.Configures(semantic.Compiling)),

		matcher.Rule(matcher.PrefixPattern("-Wp,", 0), semantic.Configures(semantic.Preprocessing)),
		matcher.Rule(matcher.ExactlyPattern("-Xpreprocessor", 1), semantic.Configures(semantic.Preprocessing)),

		matcher.Rule(matcher.GluedOrSepPattern("-B"), semantic.Configures(semantic.Compiling)),

		matcher.Rule(matcher.EqOrSepPattern("-fplugin"), semantic.Configures(semantic.Compiling)),

		matcher.Rule(matcher.ExactlyPattern("-pthread", 0), semantic.Configures(semantic.Linking)),

		matcher.Rule(matcher.ExactlyPattern("-p", 0), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.ExactlyPattern("-pg", 0), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.ExactlyPattern("--coverage", 0), semantic.Configures(semantic.Compiling)),

		matcher.Rule(matcher.ExactlyPattern("-C", 0), semantic.Configures(semantic.Preprocessing)),
		matcher.Rule(matcher.ExactlyPattern("-CC", 0), semantic.Configures(semantic.Preprocessing)),
		matcher.Rule(matcher.ExactlyPattern("-P", 0), semantic.Configures(semantic.Preprocessing)),
		matcher.Rule(matcher.ExactlyPattern("-traditional", 0), semantic.Configures(semantic.Preprocessing)),
		matcher.Rule(matcher.ExactlyPattern("-traditional-cpp", 0), semantic.Configures(semantic.Preprocessing)),
		matcher.Rule(matcher.ExactlyPattern("-trigraphs", 0), semantic.Configures(semantic.Preprocessing)),
		matcher.Rule(matcher.ExactlyPattern("-undef", 0), semantic.Configures(semantic.Preprocessing)),

		matcher.Rule(matcher.PrefixPattern("-d", 0), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.PrefixPattern("-save-temps", 0), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.EqOrSepPattern("-specs"), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.ExactlyPattern("-wrapper", 1), semantic.Configures(semantic.Compiling)),
	}
}

// environmentIncludeVars are the include-path environment variables GCC
// and Clang both honor, paired with the flag prefix their entries are
// synthesized as: CPATH/C_INCLUDE_PATH/CPLUS_INCLUDE_PATH become -I,
// OBJC_INCLUDE_PATH becomes -isystem.
var environmentIncludeVars = []struct {
	key    string
	prefix string
}{
	{"CPATH", "-I"},
	{"C_INCLUDE_PATH", "-I"},
	{"CPLUS_INCLUDE_PATH", "-I"},
	{"OBJC_INCLUDE_PATH", "-isystem"},
}

// withEnvironmentIncludes appends synthetic include-flag tokens to argv
// for every directory named by the recognized include-path environment
// variables, resolving the Open Question from spec.md §9 (kept per
// DESIGN.md: env-derived includes must appear in the generated entry's
// argv, not just be tracked invisibly).
func withEnvironmentIncludes(ex event.Execution) []string {
	argv := ex.Arguments
	for _, v := range environmentIncludeVars {
		val, ok := ex.Environment[v.key]
		if !ok || val == "" {
			continue
		}
		for _, dir := range splitPathList(val) {
			if dir == "" {
				continue
			}
			// Emitted as two separate tokens ("-I", dir) rather than glued,
			// matching the entry-argv shape from spec.md §8 scenario 6.
			argv = append(argv, v.prefix, dir)
		}
	}
	return argv
}

func splitPathList(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
