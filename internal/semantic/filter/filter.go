// Package filter implements the policy layer that decides whether a
// recognized compiler command should still produce compilation
// database entries, or should be dropped as Command::Ignored.
//
// Grounded on
// _examples/original_source/bear/src/semantic/interpreters/filter.rs.
package filter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/banksean/bear/internal/semantic"
)

// Instruction is a compiler-filter policy outcome for one executable path.
type Instruction int

const (
	// Always drops every command for the path unconditionally.
	Always Instruction = iota
	// Never keeps every command for the path unconditionally.
	Never
	// Conditional drops the command only if one of MatchArgs appears in
	// its arguments.
	Conditional
)

// CompilerRule is one configured instruction for a compiler path.
type CompilerRule struct {
	Path      string
	Instr     Instruction
	MatchArgs []string
}

// ValidateCompilerRules enforces the ordering and shape constraints from
// spec.md §4.9/§7: at most one instance of each instruction per path,
// Always excludes match args, Conditional requires them, and Never may
// not follow Always, Always may not follow Conditional, and so on.
func ValidateCompilerRules(rules []CompilerRule) error {
	byPath := make(map[string][]CompilerRule)
	for _, r := range rules {
		byPath[r.Path] = append(byPath[r.Path], r)
	}

	for path, group := range byPath {
		var hasAlways, hasConditional, hasNever bool
		for _, r := range group {
			switch r.Instr {
			case Conditional:
				if hasConditional {
					return fmt.Errorf("compiler filter %q: more than one conditional rule", path)
				}
				if len(r.MatchArgs) == 0 {
					return fmt.Errorf("compiler filter %q: conditional rule requires match_args", path)
				}
				if hasNever {
					return fmt.Errorf("compiler filter %q: conditional rule follows a never rule", path)
				}
				hasConditional = true
			case Always:
				if hasAlways {
					return fmt.Errorf("compiler filter %q: more than one always rule", path)
				}
				if len(r.MatchArgs) != 0 {
					return fmt.Errorf("compiler filter %q: always rule may not specify match_args", path)
				}
				if hasConditional {
					return fmt.Errorf("compiler filter %q: always rule follows a conditional rule", path)
				}
				if hasNever {
					return fmt.Errorf("compiler filter %q: always rule follows a never rule", path)
				}
				hasAlways = true
			case Never:
				if hasNever {
					return fmt.Errorf("compiler filter %q: more than one never rule", path)
				}
				if len(r.MatchArgs) != 0 {
					return fmt.Errorf("compiler filter %q: never rule may not specify match_args", path)
				}
				if hasAlways {
					return fmt.Errorf("compiler filter %q: never rule follows an always rule", path)
				}
				hasNever = true
			}
		}
	}
	return nil
}

// DirectoryRule is one entry of the ordered source-filter list.
type DirectoryRule struct {
	Directory string
	Instr     Instruction // Always or Never only
}

// CompilerFilter applies the compiler-path policy.
type CompilerFilter struct {
	rules map[string][]CompilerRule
}

func NewCompilerFilter(rules []CompilerRule) *CompilerFilter {
	byPath := make(map[string][]CompilerRule)
	for _, r := range rules {
		byPath[r.Path] = append(byPath[r.Path], r)
	}
	return &CompilerFilter{rules: byPath}
}

// shouldDrop reports whether cmd's compiler is configured to be dropped,
// and the reason if so.
func (f *CompilerFilter) shouldDrop(cmd semantic.Command) (string, bool) {
	group, ok := f.rules[cmd.Executable]
	if !ok {
		return "", false
	}
	for _, r := range group {
		switch r.Instr {
		case Always:
			return "compiler is configured to always be ignored", true
		case Never:
			return "", false
		case Conditional:
			if commandHasAnyArgument(cmd, r.MatchArgs) {
				return "compiler is configured to be ignored for this argument set", true
			}
		}
	}
	return "", false
}

func commandHasAnyArgument(cmd semantic.Command, matchArgs []string) bool {
	want := make(map[string]bool, len(matchArgs))
	for _, m := range matchArgs {
		want[m] = true
	}
	for _, arg := range cmd.Arguments {
		for _, tok := range arg.Tokens {
			if want[tok] {
				return true
			}
		}
	}
	return false
}

// SourceFilter applies the ordered directory allow/deny policy.
type SourceFilter struct {
	rules             []DirectoryRule
	onlyExistingFiles bool
}

func NewSourceFilter(rules []DirectoryRule, onlyExistingFiles bool) *SourceFilter {
	return &SourceFilter{rules: rules, onlyExistingFiles: onlyExistingFiles}
}

// shouldDrop reports whether every source argument of cmd independently
// resolves to a filtered directory, in which case the whole command is
// dropped.
func (f *SourceFilter) shouldDrop(cmd semantic.Command) (string, bool) {
	if len(f.rules) == 0 {
		return "", false
	}

	total, filtered := 0, 0
	for _, arg := range cmd.Arguments {
		if !arg.IsSource() {
			continue
		}
		total++
		if f.sourceIsFiltered(arg.Tokens[len(arg.Tokens)-1], cmd.WorkingDir) {
			filtered++
		}
	}

	if total > 0 && filtered == total {
		return "all source files are in filtered directories", true
	}
	return "", false
}

func (f *SourceFilter) sourceIsFiltered(source, workingDir string) bool {
	for _, variant := range f.pathVariants(source, workingDir) {
		for _, rule := range f.rules {
			if !strings.HasPrefix(normalizeForComparison(variant), normalizeForComparison(rule.Directory)) {
				continue
			}
			switch rule.Instr {
			case Always:
				return true
			case Never:
				return false
			}
		}
	}
	return false
}

// pathVariants produces the as-is, absolute-to-working-dir, and
// relative-to-working-dir forms of source. The canonical (symlink-
// resolved) form is added only when onlyExistingFiles is set, matching
// spec.md §4.9's "canonical iff only_existing_files is set" rule — it's
// the one variant that touches the filesystem.
func (f *SourceFilter) pathVariants(source, workingDir string) []string {
	variants := []string{source}

	abs := source
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(workingDir, abs)
	}
	variants = append(variants, abs)

	if rel, err := filepath.Rel(workingDir, abs); err == nil {
		variants = append(variants, rel)
	}

	if f.onlyExistingFiles {
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			variants = append(variants, resolved)
		}
	}

	return variants
}

func normalizeForComparison(p string) string {
	return filepath.Clean(p)
}

// Filter composes the compiler and source policies into the
// semantic-stage decision of whether a recognized command survives.
type Filter struct {
	compiler *CompilerFilter
	source   *SourceFilter
}

func NewFilter(compiler *CompilerFilter, source *SourceFilter) *Filter {
	return &Filter{compiler: compiler, source: source}
}

// Apply runs both policies over cmd. Non-compiler commands (already
// Ignored upstream) pass through unchanged.
func (f *Filter) Apply(cmd semantic.Command) semantic.Command {
	if cmd.Tag != semantic.CommandCompiler {
		return cmd
	}
	if reason, drop := f.compiler.shouldDrop(cmd); drop {
		return semantic.Ignored(reason)
	}
	if reason, drop := f.source.shouldDrop(cmd); drop {
		return semantic.Ignored(reason)
	}
	return cmd
}
