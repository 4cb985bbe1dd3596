// Package clang implements the LLVM JSON Compilation Database entry
// format: converting a recognized semantic.Command into one Entry per
// compilable source, formatting paths, and validating the result.
//
// Grounded on
// _examples/original_source/bear/src/output/clang/converter.rs.
package clang

import (
	"errors"
	"strings"
)

// Entry is one LLVM JSON Compilation Database record.
//
// https://clang.llvm.org/docs/JSONCompilationDatabase.html
type Entry struct {
	Directory string   `json:"directory"`
	File      string   `json:"file"`
	Arguments []string `json:"arguments,omitempty"`
	Command   string   `json:"command,omitempty"`
	Output    string   `json:"output,omitempty"`
}

var (
	ErrEmptyDirectory       = errors.New("entry: directory is empty")
	ErrEmptyFile            = errors.New("entry: file is empty")
	ErrMissingArgumentsForm = errors.New("entry: neither arguments nor command is set")
	ErrBothArgumentsForms   = errors.New("entry: both arguments and command are set")
)

// Validate enforces the XOR between Arguments and Command and the
// required directory/file fields (spec.md §4.11/§6).
func (e Entry) Validate() error {
	if e.Directory == "" {
		return ErrEmptyDirectory
	}
	if e.File == "" {
		return ErrEmptyFile
	}
	hasArgs := len(e.Arguments) > 0
	hasCommand := e.Command != ""
	switch {
	case hasArgs && hasCommand:
		return ErrBothArgumentsForms
	case !hasArgs && !hasCommand:
		return ErrMissingArgumentsForm
	}
	return nil
}

// WithArguments builds an array-form entry.
func WithArguments(directory, file, output string, arguments []string) Entry {
	return Entry{Directory: directory, File: file, Arguments: arguments, Output: output}
}

// WithCommand builds a command-form entry, shell-quoting arguments.
func WithCommand(directory, file, output string, arguments []string) Entry {
	return Entry{Directory: directory, File: file, Command: ShellQuoteJoin(arguments), Output: output}
}

// ShellQuoteJoin renders argv as a single POSIX shell command line,
// single-quoting any token that contains characters a shell would treat
// specially.
func ShellQuoteJoin(argv []string) string {
	quoted := make([]string, len(argv))
	for i, tok := range argv {
		quoted[i] = shellQuote(tok)
	}
	return strings.Join(quoted, " ")
}

func shellQuote(tok string) string {
	if tok == "" {
		return "''"
	}
	if !strings.ContainsAny(tok, " \t\n'\"\\$`!*?[]{}()<>|&;~") {
		return tok
	}
	return "'" + strings.ReplaceAll(tok, "'", `'\''`) + "'"
}
