package compilers

import (
	"github.com/banksean/bear/internal/event"
	"github.com/banksean/bear/internal/semantic"
	"github.com/banksean/bear/internal/semantic/matcher"
)

// ClangInterpreter recognizes Clang/LLVM command lines. It extends the
// GCC-compatible flag table with Clang-only flags that have no GCC
// prefix equivalent, listed first so they take priority.
//
// Grounded on
// _examples/original_source/bear/src/semantic/interpreters/compilers/clang.rs.
type ClangInterpreter struct {
	matcher *matcher.FlagAnalyzer
}

func NewClangInterpreter() *ClangInterpreter {
	rules := append(clangOnlyFlags(), gccFlags()...)
	return &ClangInterpreter{matcher: matcher.NewFlagAnalyzer(rules)}
}

func (c *ClangInterpreter) Recognize(ex event.Execution) (semantic.Command, bool) {
	args := c.matcher.Parse(withEnvironmentIncludes(ex))
	return semantic.NewCompilerCommand(ex.WorkingDir, ex.Executable, args), true
}

func clangOnlyFlags() []matcher.FlagRule {
	return []matcher.FlagRule{
		matcher.Rule(matcher.EqOrSepPattern("--target"), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.ExactlyPattern("-target", 1), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.ExactlyPattern("-triple", 1), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.ExactlyPattern("--analyze", 0), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.ExactlyPattern("-Xanalyzer", 1), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.ExactlyPattern("-analyzer-config", 1), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.ExactlyPattern("-emit-llvm", 0), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.ExactlyPattern("-resource-dir", 1), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.ExactlyPattern("-MJ", 1), semantic.Configures(semantic.Preprocessing)),
		matcher.Rule(matcher.EqOrSepPattern("--cuda-path"), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.ExactlyPattern("--cuda-gpu-arch", 1), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.ExactlyPattern("-fsyntax-only", 0), semantic.StopsAt(semantic.Compiling)),
	}
}

// FlangInterpreter recognizes gfortran/flang invocations. Flang shares
// GCC's driver flag surface closely enough that the reference
// implementation (cray_fortran.rs, intel_fortran.rs) layers a handful of
// Fortran-only flags on top of the same base table; this port does the
// same rather than duplicating the whole GCC table a third time.
type FlangInterpreter struct {
	matcher *matcher.FlagAnalyzer
}

func NewFlangInterpreter() *FlangInterpreter {
	rules := append(fortranOnlyFlags(), gccFlags()...)
	return &FlangInterpreter{matcher: matcher.NewFlagAnalyzer(rules)}
}

func (f *FlangInterpreter) Recognize(ex event.Execution) (semantic.Command, bool) {
	args := f.matcher.Parse(withEnvironmentIncludes(ex))
	return semantic.NewCompilerCommand(ex.WorkingDir, ex.Executable, args), true
}

func fortranOnlyFlags() []matcher.FlagRule {
	return []matcher.FlagRule{
		matcher.Rule(matcher.PrefixPattern("-ffree-", 0), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.PrefixPattern("-ffixed-", 0), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.GluedOrSepPattern("-J"), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.ExactlyPattern("-fmodule-private", 0), semantic.Configures(semantic.Compiling)),
	}
}
