// Package compilers recognizes compiler executables by name (and by
// configuration hint) and dispatches to the per-family flag table that
// turns their argv into a semantic.Command.
//
// Grounded on
// _examples/original_source/bear/src/semantic/interpreters/compilers/mod.rs
// (the map-based dispatcher) and .../wrapper.rs (ccache/distcc/sccache
// unwrapping). The original resolves the wrapper<->dispatcher cycle with
// Arc<Weak<...>>; this package instead uses the two-pass structure noted
// in DESIGN.md: Recognizer maps an executable to a Family tag (stateless,
// no dependency on the dispatcher), and Dispatch holds a table from
// Family to Interpreter plus the Recognizer, so nothing refers back to
// itself before construction completes.
package compilers

import (
	"path/filepath"
	"strings"
)

// Family identifies a recognized compiler (or wrapper) toolchain.
type Family int

const (
	FamilyUnknown Family = iota
	FamilyGCC
	FamilyClang
	FamilyFlang
	FamilyCuda
	FamilyIntelFortran
	FamilyCrayFortran
	FamilyWrapper
)

func (f Family) String() string {
	switch f {
	case FamilyGCC:
		return "gcc"
	case FamilyClang:
		return "clang"
	case FamilyFlang:
		return "flang"
	case FamilyCuda:
		return "cuda"
	case FamilyIntelFortran:
		return "intel-fortran"
	case FamilyCrayFortran:
		return "cray-fortran"
	case FamilyWrapper:
		return "wrapper"
	default:
		return "unknown"
	}
}

// Hint overrides recognition for one specific executable path. Hints
// are passed to NewRecognizer/NewDispatch by the caller; the
// configuration file has no setting that produces them.
type Hint struct {
	Path   string
	Family Family
	Ignore bool
}

// wrapperNames holds the recognized wrapper basenames (without
// extension, case sensitive). Compiler families are matched by the
// matchesXxxName functions below, which also accept variants such as
// "gcc-12" or "x86_64-linux-gnu-gcc".
var (
	wrapperNames = map[string]bool{"ccache": true, "distcc": true, "sccache": true}
)

// Recognizer maps an executable path to the Family that should
// interpret it, honoring configured Hints first.
type Recognizer struct {
	hints map[string]Hint
}

// NewRecognizer builds a Recognizer from configured hints, keyed by
// exact executable path.
func NewRecognizer(hints []Hint) *Recognizer {
	m := make(map[string]Hint, len(hints))
	for _, h := range hints {
		m[h.Path] = h
	}
	return &Recognizer{hints: m}
}

// Recognize returns the Family for executable, or FamilyUnknown, ok=false
// if nothing recognizes it. A Hint with Ignore=true is reported as
// FamilyUnknown with ok=true, the caller's signal to ignore the
// execution outright regardless of what it looks like.
func (r *Recognizer) Recognize(executable string) (Family, bool) {
	if h, ok := r.hints[executable]; ok {
		if h.Ignore {
			return FamilyUnknown, true
		}
		return h.Family, true
	}

	base := filepath.Base(executable)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)

	if wrapperNames[name] {
		return FamilyWrapper, true
	}
	if matchesGCCName(name) {
		return FamilyGCC, true
	}
	if matchesClangName(name) {
		return FamilyClang, true
	}
	if matchesFlangName(name) {
		return FamilyFlang, true
	}
	if matchesCudaName(name) {
		return FamilyCuda, true
	}
	if matchesIntelFortranName(name) {
		return FamilyIntelFortran, true
	}
	if matchesCrayFortranName(name) {
		return FamilyCrayFortran, true
	}
	return FamilyUnknown, false
}

// matchesGCCName recognizes gcc, g++, cc, c++ and target-prefixed or
// version-suffixed variants (x86_64-linux-gnu-gcc-12).
func matchesGCCName(name string) bool {
	// version suffix: gcc-12, g++-11, x86_64-linux-gnu-gcc-12
	if i := strings.LastIndex(name, "-"); i >= 0 && isNumeric(name[i+1:]) {
		name = name[:i]
	}
	for _, suffix := range []string{"gcc", "g++", "cc", "c++"} {
		if name == suffix {
			return true
		}
		if strings.HasSuffix(name, "-"+suffix) {
			return true
		}
	}
	return false
}

func matchesClangName(name string) bool {
	for _, base := range []string{"clang", "clang++", "clang-cl"} {
		if name == base || strings.HasPrefix(name, base+"-") {
			return true
		}
	}
	return false
}

func matchesFlangName(name string) bool {
	return name == "flang" || name == "flang-new" || name == "gfortran" || strings.HasPrefix(name, "gfortran-")
}

func matchesCudaName(name string) bool {
	return name == "nvcc"
}

func matchesIntelFortranName(name string) bool {
	return name == "ifort" || name == "ifx"
}

func matchesCrayFortranName(name string) bool {
	return name == "crayftn" || name == "ftn"
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
