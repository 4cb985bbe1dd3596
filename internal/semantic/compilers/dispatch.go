package compilers

import (
	"path/filepath"
	"strings"

	"github.com/banksean/bear/internal/event"
	"github.com/banksean/bear/internal/semantic"
)

// wrapperUnwrapDepth bounds how many wrapper layers Unwrap will peel
// before giving up. The Open Question in spec.md §9 (should nested
// wrappers, e.g. "ccache distcc gcc", recurse?) is resolved in
// DESIGN.md as: no, cap at depth 1. A wrapper that itself wraps another
// wrapper is reported as an Ignored command rather than walked further.
const wrapperUnwrapDepth = 1

// Dispatch recognizes an Execution by first classifying its executable
// into a Family (the Recognizer, stateless and reusable on its own),
// then delegating to that Family's Interpreter. This two-pass structure
// is what lets the wrapper case unwrap and re-dispatch without either
// side needing a reference to the other before both exist.
type Dispatch struct {
	recognizer   *Recognizer
	interpreters map[Family]semantic.Interpreter
}

// NewDispatch builds a fully wired dispatcher for every supported
// compiler family plus wrapper unwrapping.
func NewDispatch(hints []Hint) *Dispatch {
	return &Dispatch{
		recognizer: NewRecognizer(hints),
		interpreters: map[Family]semantic.Interpreter{
			FamilyGCC:          NewGccInterpreter(),
			FamilyClang:        NewClangInterpreter(),
			FamilyFlang:        NewFlangInterpreter(),
			FamilyCuda:         NewCudaInterpreter(),
			FamilyIntelFortran: NewIntelFortranInterpreter(),
			FamilyCrayFortran:  NewCrayFortranInterpreter(),
		},
	}
}

// Recognize is the semantic.Interpreter entry point: it classifies
// ex.Executable, unwraps at most one layer of build wrapper, and
// delegates to the matched family's flag table.
func (d *Dispatch) Recognize(ex event.Execution) (semantic.Command, bool) {
	return d.recognizeAt(ex, wrapperUnwrapDepth)
}

func (d *Dispatch) recognizeAt(ex event.Execution, depthRemaining int) (semantic.Command, bool) {
	family, ok := d.recognizer.Recognize(ex.Executable)
	if !ok {
		return semantic.Command{}, false
	}
	if family == FamilyUnknown {
		// Recognized via a config Hint with Ignore=true.
		return semantic.Ignored("excluded by configuration"), true
	}

	if family == FamilyWrapper {
		if depthRemaining <= 0 {
			return semantic.Ignored("nested compiler wrapper not unwrapped"), true
		}
		unwrapped, ok := unwrapWrapper(ex)
		if !ok {
			return semantic.Command{}, false
		}
		return d.recognizeAt(unwrapped, depthRemaining-1)
	}

	interp, ok := d.interpreters[family]
	if !ok {
		return semantic.Command{}, false
	}
	return interp.Recognize(ex)
}

// unwrapWrapper extracts the real compiler invocation from a ccache/
// distcc/sccache wrapper call.
//
// Grounded on
// _examples/original_source/bear/src/semantic/interpreters/compilers/wrapper.rs.
func unwrapWrapper(ex event.Execution) (event.Execution, bool) {
	base := filepath.Base(ex.Executable)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)

	var compiler string
	var rest []string
	switch name {
	case "ccache", "sccache":
		if len(ex.Arguments) < 2 {
			return event.Execution{}, false
		}
		compiler = ex.Arguments[1]
		rest = ex.Arguments[2:]
	case "distcc":
		idx := 1
		for idx < len(ex.Arguments) {
			arg := ex.Arguments[idx]
			if strings.HasPrefix(arg, "-") && isDistccOption(arg) {
				idx++
				if distccOptionHasValue(arg) && idx < len(ex.Arguments) {
					idx++
				}
				continue
			}
			break
		}
		if idx >= len(ex.Arguments) {
			return event.Execution{}, false
		}
		compiler = ex.Arguments[idx]
		rest = ex.Arguments[idx+1:]
	default:
		return event.Execution{}, false
	}

	argv := append([]string{compiler}, rest...)
	return event.Execution{
		Executable:  compiler,
		Arguments:   argv,
		WorkingDir:  ex.WorkingDir,
		Environment: ex.Environment,
	}, true
}

func isDistccOption(arg string) bool {
	switch arg {
	case "-j", "--jobs", "-v", "--verbose", "-i", "--show-hosts", "--scan-avail", "--show-principal":
		return true
	default:
		return false
	}
}

func distccOptionHasValue(arg string) bool {
	return arg == "-j" || arg == "--jobs"
}
