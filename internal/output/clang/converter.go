package clang

import (
	"log/slog"
	"path/filepath"

	"github.com/banksean/bear/internal/semantic"
)

// Format configures how Converter renders entries.
type Format struct {
	PathFormatting     PathFormatterKind
	UseArrayFormat     bool
	IncludeOutputField bool
}

// Converter turns a recognized semantic.Command into zero or more
// compilation database Entries.
//
// Grounded on
// _examples/original_source/bear/src/output/clang/converter.rs's
// CommandConverter.
type Converter struct {
	format    Format
	formatter PathFormatter
}

func NewConverter(format Format) *Converter {
	return &Converter{format: format, formatter: NewPathFormatter(format.PathFormatting)}
}

// ToEntries applies the entry-generation policy from spec.md §4.10 and
// returns one Entry per non-binary source argument, or none at all.
func (c *Converter) ToEntries(cmd semantic.Command) []Entry {
	if cmd.Tag != semantic.CommandCompiler {
		return nil
	}
	if c.shouldSkip(cmd) {
		return nil
	}

	directory, err := c.formatter.FormatDirectory(cmd.WorkingDir)
	if err != nil {
		slog.Warn("clang.Converter: failed to format directory, dropping command", "working_dir", cmd.WorkingDir, "error", err)
		return nil
	}

	output := c.outputField(cmd, directory)

	var entries []Entry
	for idx, source := range cmd.Arguments {
		if !source.IsCompilableSource() {
			continue
		}

		sourceFile := c.formatFile(directory, source.Tokens[len(source.Tokens)-1])
		argv := c.buildArgv(cmd, idx, directory)

		if c.format.UseArrayFormat {
			entries = append(entries, WithArguments(directory, sourceFile, output, argv))
		} else {
			entries = append(entries, WithCommand(directory, sourceFile, output, argv))
		}
	}
	return entries
}

// shouldSkip implements the four-step ordered policy check.
func (c *Converter) shouldSkip(cmd semantic.Command) bool {
	hasCompilableSource := false
	hasInfoAndExit := false
	hasStopsAtPreprocessing := false
	hasStopsAtCompilingOrAssembling := false

	for _, arg := range cmd.Arguments {
		if arg.IsCompilableSource() {
			hasCompilableSource = true
		}
		if arg.Kind != semantic.KindOther {
			continue
		}
		switch {
		case arg.Effect.Kind == semantic.EffectInfoAndExit:
			hasInfoAndExit = true
		case arg.Effect.Kind == semantic.EffectStopsAt && arg.Effect.Pass == semantic.Preprocessing:
			hasStopsAtPreprocessing = true
		case arg.Effect.Kind == semantic.EffectStopsAt && (arg.Effect.Pass == semantic.Compiling || arg.Effect.Pass == semantic.Assembling):
			hasStopsAtCompilingOrAssembling = true
		}
	}

	if hasInfoAndExit {
		return true
	}
	if hasStopsAtPreprocessing {
		return true
	}
	if !hasCompilableSource {
		return true
	}
	if !hasStopsAtCompilingOrAssembling {
		// No explicit stop at compiling/assembling and a compilable
		// source present: this is a compile-and-link (or link-only)
		// invocation. It still yields entries as long as it compiles
		// at all, which is true because hasCompilableSource is true;
		// linking-only (no compilable source) was already caught above.
		return false
	}
	return false
}

// outputField locates the first Output argument's operand, formatted,
// when IncludeOutputField is set.
func (c *Converter) outputField(cmd semantic.Command, directory string) string {
	if !c.format.IncludeOutputField {
		return ""
	}
	for _, arg := range cmd.Arguments {
		if arg.Kind != semantic.KindOutput {
			continue
		}
		operand := arg.Tokens[len(arg.Tokens)-1]
		return c.formatFile(directory, operand)
	}
	return ""
}

// formatFile formats path, falling back to the original on error (a
// non-critical field per spec.md §4.10).
func (c *Converter) formatFile(directory, path string) string {
	formatted, err := c.formatter.FormatFile(directory, path)
	if err != nil {
		slog.Warn("clang.Converter: failed to format file path, using original", "path", path, "error", err)
		return path
	}
	return formatted
}

// buildArgv constructs the per-entry argument list for the source at
// sourceIdx: the compiler basename, every argument except other sources
// and Linking-classified arguments, with this source's tokens (and any
// Output file tokens) path-formatted.
func (c *Converter) buildArgv(cmd semantic.Command, sourceIdx int, directory string) []string {
	var argv []string
	for idx, arg := range cmd.Arguments {
		switch arg.Kind {
		case semantic.KindCompiler:
			argv = append(argv, filepath.Base(cmd.Executable))
			continue
		case semantic.KindSource:
			if idx != sourceIdx {
				continue
			}
			argv = append(argv, c.formatFile(directory, arg.Tokens[len(arg.Tokens)-1]))
			continue
		case semantic.KindOutput:
			formattedTokens := make([]string, len(arg.Tokens))
			copy(formattedTokens, arg.Tokens)
			formattedTokens[len(formattedTokens)-1] = c.formatFile(directory, formattedTokens[len(formattedTokens)-1])
			argv = append(argv, formattedTokens...)
			continue
		}

		if arg.Effect.Kind == semantic.EffectConfigures && arg.Effect.Pass == semantic.Linking {
			continue
		}
		if arg.Effect.Kind == semantic.EffectStopsAt && arg.Effect.Pass == semantic.Linking {
			continue
		}
		argv = append(argv, arg.Tokens...)
	}
	return argv
}
