package config

import (
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"
)

func TestLoadWrapperConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bear.yml")
	content := `
schema: 4.0

intercept:
  mode: wrapper
  directory: /tmp
  executables:
    - /usr/bin/cc
    - /usr/bin/c++

output:
  specification: clang
  compilers:
    - path: /usr/local/bin/cc
      ignore: always
    - path: /usr/bin/c++
      ignore: conditional
      arguments:
        match:
          - -###
  sources:
    only_existing_files: true
    paths:
      - path: /opt/project/tests
        ignore: always
  duplicates:
    by_fields:
      - file
      - directory
  format:
    paths:
      directory: relative
    entry:
      command_field_as_array: false
      keep_output_field: false
`
	assert.NilError(t, os.WriteFile(path, []byte(content), 0o644))

	m, err := Load(path)
	assert.NilError(t, err)
	assert.Equal(t, m.Schema, SupportedSchemaVersion)
	assert.Equal(t, m.Intercept.Mode, InterceptWrapper)
	assert.Equal(t, m.Intercept.WrapperDirectory, "/tmp")
	assert.DeepEqual(t, m.Intercept.Executables, []string{"/usr/bin/cc", "/usr/bin/c++"})
	assert.Equal(t, m.Output.Specification, OutputClang)
	assert.Equal(t, len(m.Output.Compilers), 2)
	assert.Equal(t, m.Output.Compilers[0].Ignore, "always")
	assert.Equal(t, m.Output.Format.Entry.CommandFieldAsArray, false)

	rules, err := m.Output.CompilerRules()
	assert.NilError(t, err)
	assert.Equal(t, len(rules), 2)
}

func TestLoadPreloadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bear.yml")
	content := `
schema: 4.0

intercept:
  mode: preload
  path: /usr/local/lib/libexec.so

output:
  specification: bear
`
	assert.NilError(t, os.WriteFile(path, []byte(content), 0o644))

	m, err := Load(path)
	assert.NilError(t, err)
	assert.Equal(t, m.Intercept.Mode, InterceptPreload)
	assert.Equal(t, m.Intercept.PreloadLibraryPath, "/usr/local/lib/libexec.so")
	assert.Equal(t, m.Output.Specification, OutputSemantic)
}

func TestLoadRejectsUnsupportedSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bear.yml")
	content := "schema: 3.0\n"
	assert.NilError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "unsupported schema version")
}

func TestLoadMissingFileReturnsNotFound(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	assert.NilError(t, err)
	assert.NilError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(cwd) })

	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "nonexistent-config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "nonexistent-cache"))

	_, err = Load("")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDefaultConfig(t *testing.T) {
	m := Default()
	assert.Equal(t, m.Schema, SupportedSchemaVersion)
	assert.Equal(t, m.Output.Specification, OutputClang)
	assert.Equal(t, m.Output.Sources.OnlyExistingFiles, true)
}
