// Package buildenv builds the environment-variable overrides that make
// a build visible to the collector, in either of the two interception
// modes: preload (a shared library loaded into every dynamically
// linked child) or wrapper (a directory of hardlinked executables
// placed ahead of the real compilers on PATH).
//
// Grounded on
// _examples/original_source/bear/src/intercept/environment.rs's
// BuildEnvironment.
package buildenv

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/banksean/bear/internal/event"
	"github.com/banksean/bear/internal/semantic/compilers"
)

// KeyDestination names the environment variable carrying the
// collector's "host:port" address.
const KeyDestination = "BEAR_DESTINATION"

// KeyPreloadState names the environment variable carrying the encoded
// event.PreloadState, read back by the preload shim's constructor.
const KeyPreloadState = "BEAR_PRELOAD_STATE"

// manifestFilename is the wrapper directory's basename-to-real-path map.
const manifestFilename = "bear-wrapper.json"

// programEnvVars are the well-known compiler-pointing variables scanned
// in wrapper mode (spec.md §4.5).
var programEnvVars = map[string]bool{
	"CC": true, "CXX": true, "FC": true, "CPP": true, "LD": true,
	"GCC": true, "CLANG": true, "HOSTCC": true, "HOSTCXX": true,
	"NVCC": true, "AS": true,
}

// BuildEnvironment is a set of environment-variable overrides layered
// on top of the build's existing environment. In wrapper mode it also
// owns a temp directory that must be removed once the build finishes.
type BuildEnvironment struct {
	overrides  map[string]string
	wrapperDir string // empty in preload mode
}

// Overrides returns a copy of the configured environment overrides.
func (b *BuildEnvironment) Overrides() map[string]string {
	out := make(map[string]string, len(b.overrides))
	for k, v := range b.overrides {
		out[k] = v
	}
	return out
}

// Environ merges the overrides onto base (a process environment in
// "KEY=VALUE" form, e.g. os.Environ()), with overrides taking
// precedence.
func (b *BuildEnvironment) Environ(base []string) []string {
	result := make([]string, 0, len(base)+len(b.overrides))
	seen := make(map[string]bool, len(b.overrides))
	for _, kv := range base {
		key, _, ok := strings.Cut(kv, "=")
		if !ok {
			result = append(result, kv)
			continue
		}
		if v, overridden := b.overrides[key]; overridden {
			if seen[key] {
				continue
			}
			seen[key] = true
			result = append(result, key+"="+v)
			continue
		}
		result = append(result, kv)
	}
	for key, v := range b.overrides {
		if !seen[key] {
			result = append(result, key+"="+v)
		}
	}
	return result
}

// Close removes the wrapper directory, if one was created. Preload-mode
// environments have nothing to clean up.
func (b *BuildEnvironment) Close() error {
	if b.wrapperDir == "" {
		return nil
	}
	return os.RemoveAll(b.wrapperDir)
}

// NewPreload builds a BuildEnvironment for preload-mode interception:
// the platform preload variable gets libraryPath prepended (moved to
// the front if already present), and the state variable carries the
// encoded PreloadState.
func NewPreload(currentEnv map[string]string, libraryPath, collectorAddr string) (*BuildEnvironment, error) {
	state := event.PreloadState{Destination: collectorAddr, LibraryPath: libraryPath}
	encoded, err := state.Encode()
	if err != nil {
		return nil, fmt.Errorf("buildenv: encode preload state: %w", err)
	}

	overrides := map[string]string{
		KeyPreloadState:     encoded,
		KeyDestination:      collectorAddr,
		preloadVariableName: insertToPath(currentEnv[preloadVariableName], libraryPath),
	}
	for k, v := range additionalPreloadVars(libraryPath) {
		overrides[k] = v
	}
	return &BuildEnvironment{overrides: overrides}, nil
}

// NewWrapper builds a BuildEnvironment for wrapper-mode interception.
// It creates a unique temp directory, hardlinks wrapperBinary once per
// basename in executables (falling back to scanning PATH for compilers
// the recognizer knows about when executables is empty), writes the
// basename-to-real-path manifest, hardlinks the target of every
// non-empty well-known compiler environment variable and redirects the
// variable to that link, and prepends the temp directory to PATH.
func NewWrapper(currentEnv map[string]string, wrapperBinary string, executables []string, recognizer *compilers.Recognizer, collectorAddr string) (*BuildEnvironment, error) {
	dir := filepath.Join(os.TempDir(), "bear-wrapper-"+uuid.NewString())
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, fmt.Errorf("buildenv: create wrapper directory: %w", err)
	}

	manifest := make(map[string]string)
	link := func(target string) (string, error) {
		base := filepath.Base(target)
		linkPath := filepath.Join(dir, base)
		if _, exists := manifest[base]; exists {
			return linkPath, nil
		}
		if err := os.Link(wrapperBinary, linkPath); err != nil {
			return "", fmt.Errorf("buildenv: hardlink wrapper for %q: %w", base, err)
		}
		manifest[base] = target
		return linkPath, nil
	}

	fail := func(err error) (*BuildEnvironment, error) {
		os.RemoveAll(dir)
		return nil, err
	}

	for _, exe := range executables {
		if _, err := link(exe); err != nil {
			return fail(err)
		}
	}

	overrides := make(map[string]string)
	for key, value := range currentEnv {
		if !programEnvVars[key] || value == "" {
			continue
		}
		linkPath, err := link(value)
		if err != nil {
			return fail(err)
		}
		overrides[key] = linkPath
	}

	if len(executables) == 0 {
		for _, candidate := range discoverCompilers(currentEnv["PATH"], recognizer) {
			if _, err := link(candidate); err != nil {
				return fail(err)
			}
		}
	}

	raw, err := json.Marshal(manifest)
	if err != nil {
		return fail(fmt.Errorf("buildenv: marshal wrapper manifest: %w", err))
	}
	if err := os.WriteFile(filepath.Join(dir, manifestFilename), raw, 0o644); err != nil {
		return fail(fmt.Errorf("buildenv: write wrapper manifest: %w", err))
	}

	overrides["PATH"] = insertToPath(currentEnv["PATH"], dir)
	overrides[KeyDestination] = collectorAddr

	return &BuildEnvironment{overrides: overrides, wrapperDir: dir}, nil
}

// ResolveWrapperInvocation reads the manifest next to a running wrapper
// binary (selfPath) and resolves invokedAs (typically filepath.Base of
// argv[0]) to the real compiler path it hardlinks. It is the lookup
// cmd/bear-wrapper performs once per invocation.
func ResolveWrapperInvocation(selfPath, invokedAs string) (string, error) {
	dir := filepath.Dir(selfPath)
	raw, err := os.ReadFile(filepath.Join(dir, manifestFilename))
	if err != nil {
		return "", fmt.Errorf("buildenv: read wrapper manifest: %w", err)
	}
	var manifest map[string]string
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return "", fmt.Errorf("buildenv: parse wrapper manifest: %w", err)
	}
	real, ok := manifest[invokedAs]
	if !ok {
		return "", fmt.Errorf("buildenv: no manifest entry for %q", invokedAs)
	}
	return real, nil
}

// discoverCompilers scans every directory of pathVar for executable
// files the recognizer identifies as a known compiler family.
func discoverCompilers(pathVar string, recognizer *compilers.Recognizer) []string {
	var found []string
	for _, dir := range filepath.SplitList(pathVar) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			full := filepath.Join(dir, entry.Name())
			if !isExecutableFile(full) {
				continue
			}
			if _, ok := recognizer.Recognize(full); ok {
				found = append(found, full)
			}
		}
	}
	return found
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0o111 != 0
}

// insertToPath moves (or prepends) first to the front of a
// PathListSeparator-delimited path list, dropping any existing
// occurrence of first. Idempotent:
// insertToPath(insertToPath(s, p), p) == insertToPath(s, p).
func insertToPath(original, first string) string {
	if original == "" {
		return first
	}
	sep := string(os.PathListSeparator)
	parts := strings.Split(original, sep)
	kept := make([]string, 0, len(parts)+1)
	kept = append(kept, first)
	for _, p := range parts {
		if p == "" || p == first {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, sep)
}
