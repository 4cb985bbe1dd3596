// Package config decodes and validates the Bear YAML configuration
// file (spec.md §6): the intercept mode (preload or wrapper) and the
// output specification (clang compilation database or the internal
// semantic format), plus the compiler/source filter and path/entry
// formatting options layered on top.
//
// Grounded on
// _examples/original_source/bear/src/config.rs's types and loader
// modules, translated from serde's tagged-union deserialization to
// yaml.v3 with a custom UnmarshalYAML per tagged union.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SupportedSchemaVersion is the only accepted value of the top-level
// "schema" key. Any other value is a configuration error (spec.md §7).
const SupportedSchemaVersion = "4.0"

// Main is the root of the Bear YAML configuration file.
type Main struct {
	Schema    string
	Intercept Intercept
	Output    Output
}

// mainYAML mirrors Main's on-disk shape so schema validation can run
// once, after the whole document has parsed.
type mainYAML struct {
	Schema    string    `yaml:"schema"`
	Intercept yaml.Node `yaml:"intercept"`
	Output    yaml.Node `yaml:"output"`
}

// Default returns the built-in configuration: platform-default
// intercept mode, clang-format output with no filters.
func Default() Main {
	return Main{
		Schema:    SupportedSchemaVersion,
		Intercept: defaultIntercept(),
		Output:    defaultOutput(),
	}
}

// UnmarshalYAML implements the schema-version validation and the
// tagged-union dispatch for Intercept/Output, matching
// config.rs's #[serde(tag = "mode")] / #[serde(tag = "specification")].
func (m *Main) UnmarshalYAML(value *yaml.Node) error {
	var raw mainYAML
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.Schema != SupportedSchemaVersion {
		return fmt.Errorf("config: unsupported schema version %q, expected %q", raw.Schema, SupportedSchemaVersion)
	}
	m.Schema = raw.Schema

	if raw.Intercept.Kind == 0 {
		m.Intercept = defaultIntercept()
	} else if err := raw.Intercept.Decode(&m.Intercept); err != nil {
		return fmt.Errorf("config: intercept: %w", err)
	}

	if raw.Output.Kind == 0 {
		m.Output = defaultOutput()
	} else if err := raw.Output.Decode(&m.Output); err != nil {
		return fmt.Errorf("config: output: %w", err)
	}
	return nil
}

// InterceptMode discriminates the Intercept tagged union.
type InterceptMode int

const (
	InterceptPreload InterceptMode = iota
	InterceptWrapper
)

// Intercept configures which interception mechanism builds the
// environment overlay the supervisor launches the build under.
type Intercept struct {
	Mode InterceptMode

	// Preload mode.
	PreloadLibraryPath string

	// Wrapper mode.
	WrapperExecutablePath string
	WrapperDirectory      string
	Executables           []string
}

type interceptYAML struct {
	Mode        string   `yaml:"mode"`
	Path        string   `yaml:"path"`
	Directory   string   `yaml:"directory"`
	Executables []string `yaml:"executables"`
}

func (i *Intercept) UnmarshalYAML(value *yaml.Node) error {
	var raw interceptYAML
	if err := value.Decode(&raw); err != nil {
		return err
	}
	switch raw.Mode {
	case "preload":
		*i = Intercept{Mode: InterceptPreload, PreloadLibraryPath: raw.Path}
		if i.PreloadLibraryPath == "" {
			i.PreloadLibraryPath = defaultPreloadLibraryPath()
		}
	case "wrapper", "":
		*i = Intercept{
			Mode:                  InterceptWrapper,
			WrapperExecutablePath: raw.Path,
			WrapperDirectory:      raw.Directory,
			Executables:           raw.Executables,
		}
		if i.WrapperExecutablePath == "" {
			i.WrapperExecutablePath = defaultWrapperExecutablePath()
		}
		if i.WrapperDirectory == "" {
			i.WrapperDirectory = os.TempDir()
		}
	default:
		return fmt.Errorf("config: intercept: unknown mode %q", raw.Mode)
	}
	return nil
}

func defaultIntercept() Intercept {
	return Intercept{Mode: defaultInterceptMode(), PreloadLibraryPath: defaultPreloadLibraryPath(), WrapperExecutablePath: defaultWrapperExecutablePath(), WrapperDirectory: os.TempDir()}
}

// OutputSpecification discriminates the Output tagged union.
type OutputSpecification int

const (
	OutputClang OutputSpecification = iota
	OutputSemantic
)

// Output configures the compilation-database generation pipeline:
// per-compiler filtering, source-directory filtering, duplicate
// suppression, and path/entry rendering. The Semantic specification
// carries no further fields (spec.md §6, classic Bear's internal
// format, not rendered by this implementation beyond event-log replay).
type Output struct {
	Specification OutputSpecification

	Compilers  []Compiler
	Sources    SourceFilterConfig
	Duplicates DuplicateFilterConfig
	Format     FormatConfig
}

type outputYAML struct {
	Specification string                `yaml:"specification"`
	Compilers     []Compiler            `yaml:"compilers"`
	Sources       SourceFilterConfig    `yaml:"sources"`
	Duplicates    DuplicateFilterConfig `yaml:"duplicates"`
	Format        FormatConfig          `yaml:"format"`
}

func (o *Output) UnmarshalYAML(value *yaml.Node) error {
	var raw outputYAML
	raw.Sources = SourceFilterConfig{OnlyExistingFiles: true}
	raw.Format = defaultFormatConfig()
	if err := value.Decode(&raw); err != nil {
		return err
	}
	switch raw.Specification {
	case "bear":
		*o = Output{Specification: OutputSemantic}
	case "clang", "":
		*o = Output{
			Specification: OutputClang,
			Compilers:     raw.Compilers,
			Sources:       raw.Sources,
			Duplicates:    raw.Duplicates,
			Format:        raw.Format,
		}
		if len(o.Duplicates.ByFields) == 0 {
			o.Duplicates.ByFields = []string{"file", "arguments"}
		}
	default:
		return fmt.Errorf("config: output: unknown specification %q", raw.Specification)
	}
	return nil
}

func defaultOutput() Output {
	return Output{
		Specification: OutputClang,
		Sources:       SourceFilterConfig{OnlyExistingFiles: true},
		Duplicates:    DuplicateFilterConfig{ByFields: []string{"file", "arguments"}},
		Format:        defaultFormatConfig(),
	}
}

// Compiler is one per-path compiler-filter rule plus the argument
// add/remove/match lists (spec.md §4.9).
type Compiler struct {
	Path      string    `yaml:"path"`
	Ignore    string    `yaml:"ignore"` // "always" | "never" | "conditional"; default "never"
	Arguments Arguments `yaml:"arguments"`
}

// Arguments names the match/add/remove argument lists attached to a
// Compiler rule.
type Arguments struct {
	Match  []string `yaml:"match"`
	Add    []string `yaml:"add"`
	Remove []string `yaml:"remove"`
}

// SourceFilterConfig configures C9's ordered directory allow/deny list.
type SourceFilterConfig struct {
	OnlyExistingFiles bool             `yaml:"only_existing_files"`
	Paths             []DirectoryEntry `yaml:"paths"`
}

// DirectoryEntry is one ordered source-filter directory rule.
type DirectoryEntry struct {
	Path   string `yaml:"path"`
	Ignore string `yaml:"ignore"` // "always" | "never"
}

// DuplicateFilterConfig names the Entry fields deduplication keys on.
type DuplicateFilterConfig struct {
	ByFields []string `yaml:"by_fields"`
}

// FormatConfig configures path rendering and entry shape.
type FormatConfig struct {
	Paths PathFormatConfig  `yaml:"paths"`
	Entry EntryFormatConfig `yaml:"entry"`
}

// PathFormatConfig names a clang.PathFormatterKind ("canonical" |
// "relative" | "as-is") per rendered field. Only Directory is read when
// building the converter format, and its value is applied to the
// directory, file and output fields alike; File and Output are decoded
// but not used.
type PathFormatConfig struct {
	Directory string `yaml:"directory"`
	File      string `yaml:"file"`
	Output    string `yaml:"output"`
}

// EntryFormatConfig toggles the array-vs-string command form and
// whether the output field is kept.
type EntryFormatConfig struct {
	CommandFieldAsArray bool `yaml:"command_field_as_array"`
	KeepOutputField     bool `yaml:"keep_output_field"`
}

func defaultFormatConfig() FormatConfig {
	return FormatConfig{
		Paths: PathFormatConfig{Directory: "canonical", File: "canonical", Output: "canonical"},
		Entry: EntryFormatConfig{CommandFieldAsArray: true, KeepOutputField: true},
	}
}

// ErrNotFound is returned by Load when filename is empty and no
// configuration file exists at any of the default search locations;
// callers should fall back to Default().
var ErrNotFound = errors.New("config: no configuration file found")

// Load reads and decodes the configuration at filename, or — if
// filename is empty — the first existing file among SearchPaths(). It
// returns ErrNotFound (not Default()) when nothing is found, so callers
// can log the distinction between "used the default config" and
// "explicitly requested a file that doesn't exist".
func Load(filename string) (Main, error) {
	if filename != "" {
		return fromFile(filename)
	}
	for _, candidate := range SearchPaths() {
		if _, err := os.Stat(candidate); err == nil {
			return fromFile(candidate)
		}
	}
	return Main{}, ErrNotFound
}

func fromFile(path string) (Main, error) {
	f, err := os.Open(path)
	if err != nil {
		return Main{}, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	var m Main
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&m); err != nil {
		return Main{}, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return m, nil
}

// configFilename is the default configuration file basename, searched
// for at each of SearchPaths's directories.
const configFilename = "bear.yml"

// SearchPaths lists the default configuration file locations in search
// order (spec.md §6): current working directory, os.UserConfigDir, its
// "bear" subdirectory, then the "bear" subdirectory of os.UserCacheDir
// (app name "bear", matching the teacher's appHomeDir idiom in
// cmd/sand/main.go, generalized to os.UserConfigDir since this project
// runs cross-platform, not just on macOS). No separate local config
// directory is searched; duplicate directories are listed once.
func SearchPaths() []string {
	var dirs []string

	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd)
	}
	if userConfig, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, userConfig, filepath.Join(userConfig, "bear"))
	}
	if cacheDir, err := os.UserCacheDir(); err == nil {
		dirs = append(dirs, filepath.Join(cacheDir, "bear"))
	}

	seen := make(map[string]bool, len(dirs))
	paths := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		if seen[dir] {
			continue
		}
		seen[dir] = true
		paths = append(paths, filepath.Join(dir, configFilename))
	}
	return paths
}
