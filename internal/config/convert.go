package config

import (
	"fmt"

	"github.com/banksean/bear/internal/output/clang"
	"github.com/banksean/bear/internal/semantic/filter"
)

// CompilerRules translates the configured per-compiler ignore
// instructions into filter.CompilerRule values and validates their
// ordering (spec.md §4.9/§7).
func (o Output) CompilerRules() ([]filter.CompilerRule, error) {
	rules := make([]filter.CompilerRule, 0, len(o.Compilers))
	for _, c := range o.Compilers {
		instr, err := parseInstruction(c.Ignore)
		if err != nil {
			return nil, fmt.Errorf("compiler %q: %w", c.Path, err)
		}
		rules = append(rules, filter.CompilerRule{
			Path:      c.Path,
			Instr:     instr,
			MatchArgs: c.Arguments.Match,
		})
	}
	if err := filter.ValidateCompilerRules(rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// SourceRules translates the configured directory allow/deny list into
// filter.DirectoryRule values, in declaration order.
func (o Output) SourceRules() ([]filter.DirectoryRule, error) {
	rules := make([]filter.DirectoryRule, 0, len(o.Sources.Paths))
	for _, p := range o.Sources.Paths {
		var instr filter.Instruction
		switch p.Ignore {
		case "always", "true":
			instr = filter.Always
		case "never", "false", "":
			instr = filter.Never
		default:
			return nil, fmt.Errorf("source filter %q: unknown ignore value %q", p.Path, p.Ignore)
		}
		rules = append(rules, filter.DirectoryRule{Directory: p.Path, Instr: instr})
	}
	return rules, nil
}

func parseInstruction(ignore string) (filter.Instruction, error) {
	switch ignore {
	case "always", "true":
		return filter.Always, nil
	case "never", "false", "":
		return filter.Never, nil
	case "conditional":
		return filter.Conditional, nil
	default:
		return 0, fmt.Errorf("unknown ignore value %q", ignore)
	}
}

// DedupFields translates the configured field-name list into
// clang.DedupField values, defaulting to clang.DefaultDedupFields.
func (o Output) DedupFields() []clang.DedupField {
	if len(o.Duplicates.ByFields) == 0 {
		return clang.DefaultDedupFields
	}
	fields := make([]clang.DedupField, 0, len(o.Duplicates.ByFields))
	for _, name := range o.Duplicates.ByFields {
		switch name {
		case "directory":
			fields = append(fields, clang.DedupDirectory)
		case "file":
			fields = append(fields, clang.DedupFile)
		case "arguments":
			fields = append(fields, clang.DedupArguments)
		case "command":
			fields = append(fields, clang.DedupCommand)
		case "output":
			fields = append(fields, clang.DedupOutput)
		}
	}
	return fields
}

// ConverterFormat translates the configured path/entry rendering
// options into a clang.Format.
func (o Output) ConverterFormat() clang.Format {
	return clang.Format{
		PathFormatting:     parsePathResolver(o.Format.Paths.Directory),
		UseArrayFormat:     o.Format.Entry.CommandFieldAsArray,
		IncludeOutputField: o.Format.Entry.KeepOutputField,
	}
}

func parsePathResolver(name string) clang.PathFormatterKind {
	switch name {
	case "relative":
		return clang.Relative
	case "as-is", "asis":
		return clang.AsIs
	default:
		return clang.Canonical
	}
}
