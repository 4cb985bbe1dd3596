// Package matcher implements the pattern-based argv token matcher
// shared by every compiler family's flag rule table.
//
// Grounded on _examples/original_source/bear/src/semantic/interpreters/compilers/gcc.rs,
// whose FlagRule/FlagPattern/FlagAnalyzer types this package mirrors.
package matcher

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/banksean/bear/internal/semantic"
)

// PatternKind discriminates the Pattern sum type.
type PatternKind int

const (
	// Exactly matches argv[i] == Flag, consuming 1+N tokens.
	Exactly PatternKind = iota
	// Prefix matches argv[i] having Flag as a prefix, consuming 1+N tokens.
	Prefix
	// GluedOrSep matches "Flag" (then the next token) or "Flag<value>".
	GluedOrSep
	// EqOrSep matches "Flag=<value>" or "Flag <value>".
	EqOrSep
	// Eq matches "Flag=<value>" only.
	Eq
)

// Pattern is one argv-matching rule shape.
type Pattern struct {
	Kind PatternKind
	Flag string
	// N is the number of additional tokens consumed for Exactly/Prefix.
	N int
}

func ExactlyPattern(flag string, n int) Pattern { return Pattern{Kind: Exactly, Flag: flag, N: n} }
func PrefixPattern(flag string, n int) Pattern  { return Pattern{Kind: Prefix, Flag: flag, N: n} }
func GluedOrSepPattern(flag string) Pattern     { return Pattern{Kind: GluedOrSep, Flag: flag} }
func EqOrSepPattern(flag string) Pattern        { return Pattern{Kind: EqOrSep, Flag: flag} }
func EqPattern(flag string) Pattern             { return Pattern{Kind: Eq, Flag: flag} }

// literalLen is used to sort rules so longer literals are tried before
// shorter ones (prevents "-I" from eating "-idirafter").
func (p Pattern) literalLen() int {
	return len(p.Flag)
}

// match attempts to match p against args starting at index i. It
// returns the number of tokens consumed (>=1) and ok=true on success.
func (p Pattern) match(args []string, i int) (consumed int, ok bool) {
	tok := args[i]
	switch p.Kind {
	case Exactly:
		if tok != p.Flag {
			return 0, false
		}
		if i+p.N >= len(args) {
			return 0, false
		}
		return 1 + p.N, true
	case Prefix:
		if !strings.HasPrefix(tok, p.Flag) {
			return 0, false
		}
		if i+p.N >= len(args) {
			return 0, false
		}
		return 1 + p.N, true
	case GluedOrSep:
		if tok == p.Flag {
			if i+1 >= len(args) {
				return 1, true
			}
			return 2, true
		}
		if strings.HasPrefix(tok, p.Flag) && len(tok) > len(p.Flag) {
			return 1, true
		}
		return 0, false
	case EqOrSep:
		if tok == p.Flag {
			if i+1 >= len(args) {
				return 1, true
			}
			return 2, true
		}
		if strings.HasPrefix(tok, p.Flag+"=") {
			return 1, true
		}
		return 0, false
	case Eq:
		if strings.HasPrefix(tok, p.Flag+"=") {
			return 1, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// FlagRule pairs a Pattern with the ArgumentKind it produces on match.
type FlagRule struct {
	Pattern Pattern
	Kind    semantic.ArgumentKindTag
	Effect  semantic.PassEffect
}

func Rule(p Pattern, effect semantic.PassEffect) FlagRule {
	return FlagRule{Pattern: p, Kind: semantic.KindOther, Effect: effect}
}

// OutputRule is the canonical "-o"-shaped rule producing an Output argument.
func OutputRule(p Pattern) FlagRule {
	return FlagRule{Pattern: p, Kind: semantic.KindOutput}
}

// sourceExtensions are argv tokens (by file extension) recognized as
// compilable source files.
var sourceExtensions = map[string]bool{
	".c": true, ".cc": true, ".cpp": true, ".cxx": true, ".C": true, ".c++": true,
	".m": true, ".mm": true, ".M": true,
	".f": true, ".for": true, ".f90": true, ".f95": true, ".f03": true, ".f08": true,
	".cu": true, ".cuh": true,
	".S": true, ".s": true,
}

// binaryExtensions are argv tokens recognized as already-compiled
// artifacts: they are Source arguments, but Binary=true, so they never
// yield compilation-database entries.
var binaryExtensions = map[string]bool{
	".o": true, ".a": true, ".so": true, ".lo": true,
	".obj": true, ".lib": true, ".dll": true,
}

// looksLikeSourceFile classifies a non-flag token by its path
// extension, mirroring the reference implementation's heuristic of
// the same name.
func looksLikeSourceFile(tok string) (isSource bool, binary bool) {
	ext := filepath.Ext(tok)
	if sourceExtensions[ext] {
		return true, false
	}
	if binaryExtensions[ext] {
		return true, true
	}
	return false, false
}

// FlagAnalyzer matches argv tokens against a pre-sorted rule table.
type FlagAnalyzer struct {
	rules []FlagRule
}

// NewFlagAnalyzer builds an analyzer from rules, pre-sorted so longer
// literal flags are tried before shorter ones.
func NewFlagAnalyzer(rules []FlagRule) *FlagAnalyzer {
	sorted := make([]FlagRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Pattern.literalLen() > sorted[j].Pattern.literalLen()
	})
	return &FlagAnalyzer{rules: sorted}
}

// Parse classifies the compiler's argv (argv[0] is the Compiler
// argument) into a slice of Arguments whose Tokens slices, in order,
// concatenate back to the original argv.
func (a *FlagAnalyzer) Parse(argv []string) []semantic.Argument {
	var out []semantic.Argument
	if len(argv) == 0 {
		return out
	}

	out = append(out, semantic.CompilerArg(argv[0:1]))

	i := 1
	for i < len(argv) {
		tok := argv[i]

		if matched, consumed := a.matchOne(argv, i); matched {
			out = append(out, consumed.arg)
			i += consumed.n
			continue
		}

		if strings.HasPrefix(tok, "@") {
			// Response file: preserved verbatim, never expanded.
			out = append(out, semantic.OtherArg(argv[i:i+1], semantic.None()))
			i++
			continue
		}

		if isSource, binary := looksLikeSourceFile(tok); isSource {
			out = append(out, semantic.SourceArg(argv[i:i+1], binary))
			i++
			continue
		}

		out = append(out, semantic.OtherArg(argv[i:i+1], semantic.None()))
		i++
	}

	return out
}

type matchResult struct {
	arg semantic.Argument
	n   int
}

func (a *FlagAnalyzer) matchOne(argv []string, i int) (bool, matchResult) {
	for _, rule := range a.rules {
		if n, ok := rule.Pattern.match(argv, i); ok {
			tokens := argv[i : i+n]
			var arg semantic.Argument
			switch rule.Kind {
			case semantic.KindOutput:
				arg = semantic.OutputArg(tokens)
			default:
				arg = semantic.OtherArg(tokens, rule.Effect)
			}
			return true, matchResult{arg: arg, n: n}
		}
	}
	return false, matchResult{}
}
