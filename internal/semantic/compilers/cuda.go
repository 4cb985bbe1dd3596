package compilers

import (
	"github.com/banksean/bear/internal/event"
	"github.com/banksean/bear/internal/semantic"
	"github.com/banksean/bear/internal/semantic/matcher"
)

// CudaInterpreter recognizes nvcc invocations. nvcc's driver is
// GCC/Clang-compatible for most host-side flags and adds CUDA-specific
// device-compilation options.
//
// Grounded on
// _examples/original_source/bear/src/semantic/interpreters/compilers/cuda.rs.
type CudaInterpreter struct {
	matcher *matcher.FlagAnalyzer
}

func NewCudaInterpreter() *CudaInterpreter {
	rules := append(cudaOnlyFlags(), gccFlags()...)
	return &CudaInterpreter{matcher: matcher.NewFlagAnalyzer(rules)}
}

func (c *CudaInterpreter) Recognize(ex event.Execution) (semantic.Command, bool) {
	args := c.matcher.Parse(withEnvironmentIncludes(ex))
	return semantic.NewCompilerCommand(ex.WorkingDir, ex.Executable, args), true
}

func cudaOnlyFlags() []matcher.FlagRule {
	return []matcher.FlagRule{
		matcher.Rule(matcher.GluedOrSepPattern("-gencode"), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.EqOrSepPattern("--generate-code"), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.GluedOrSepPattern("-arch"), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.ExactlyPattern("-dc", 0), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.ExactlyPattern("-rdc=true", 0), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.ExactlyPattern("--compiler-options", 1), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.ExactlyPattern("-Xcompiler", 1), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.ExactlyPattern("-Xptxas", 1), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.ExactlyPattern("--cudart", 1), semantic.Configures(semantic.Linking)),
		matcher.Rule(matcher.ExactlyPattern("-cudart", 1), semantic.Configures(semantic.Linking)),
	}
}

// IntelFortranInterpreter recognizes ifort/ifx invocations.
//
// Grounded on
// _examples/original_source/bear/src/semantic/interpreters/compilers/intel_fortran.rs.
type IntelFortranInterpreter struct {
	matcher *matcher.FlagAnalyzer
}

func NewIntelFortranInterpreter() *IntelFortranInterpreter {
	rules := append(intelFortranOnlyFlags(), fortranOnlyFlags()...)
	rules = append(rules, gccFlags()...)
	return &IntelFortranInterpreter{matcher: matcher.NewFlagAnalyzer(rules)}
}

func (i *IntelFortranInterpreter) Recognize(ex event.Execution) (semantic.Command, bool) {
	args := i.matcher.Parse(withEnvironmentIncludes(ex))
	return semantic.NewCompilerCommand(ex.WorkingDir, ex.Executable, args), true
}

func intelFortranOnlyFlags() []matcher.FlagRule {
	return []matcher.FlagRule{
		matcher.Rule(matcher.ExactlyPattern("-fpp", 0), semantic.Configures(semantic.Preprocessing)),
		matcher.Rule(matcher.GluedOrSepPattern("-module"), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.ExactlyPattern("-qopenmp", 0), semantic.Configures(semantic.Compiling)),
	}
}

// CrayFortranInterpreter recognizes the Cray Fortran driver (ftn).
//
// Grounded on
// _examples/original_source/bear/src/semantic/interpreters/compilers/cray_fortran.rs.
type CrayFortranInterpreter struct {
	matcher *matcher.FlagAnalyzer
}

func NewCrayFortranInterpreter() *CrayFortranInterpreter {
	rules := append(crayFortranOnlyFlags(), fortranOnlyFlags()...)
	rules = append(rules, gccFlags()...)
	return &CrayFortranInterpreter{matcher: matcher.NewFlagAnalyzer(rules)}
}

func (c *CrayFortranInterpreter) Recognize(ex event.Execution) (semantic.Command, bool) {
	args := c.matcher.Parse(withEnvironmentIncludes(ex))
	return semantic.NewCompilerCommand(ex.WorkingDir, ex.Executable, args), true
}

func crayFortranOnlyFlags() []matcher.FlagRule {
	return []matcher.FlagRule{
		matcher.Rule(matcher.ExactlyPattern("-eZ", 0), semantic.Configures(semantic.Preprocessing)),
		matcher.Rule(matcher.GluedOrSepPattern("-em"), semantic.Configures(semantic.Compiling)),
		matcher.Rule(matcher.ExactlyPattern("-hfp0", 0), semantic.Configures(semantic.Compiling)),
	}
}
