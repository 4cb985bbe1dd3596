package main

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/banksean/bear/internal/config"
)

func TestBuildAnalyzerDefaultConfig(t *testing.T) {
	analyzer, err := buildAnalyzer(config.Default())
	assert.NilError(t, err)
	assert.Assert(t, analyzer != nil)
}

func TestBuildAnalyzerRejectsSemanticSpecification(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Specification = config.OutputSemantic
	_, err := buildAnalyzer(cfg)
	assert.ErrorContains(t, err, "not supported")
}

func TestBuildAnalyzerInvalidCompilerFilter(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Compilers = []config.Compiler{
		{Path: "/usr/bin/gcc", Ignore: "always", Arguments: config.Arguments{Match: []string{"-c"}}},
	}
	_, err := buildAnalyzer(cfg)
	assert.ErrorContains(t, err, "compiler filter configuration")
}

func TestEnvToMap(t *testing.T) {
	m := envToMap([]string{"FOO=bar", "EMPTY=", "NOVALUE", "PATH=/bin:/usr/bin"})
	assert.Equal(t, m["FOO"], "bar")
	assert.Equal(t, m["EMPTY"], "")
	assert.Equal(t, m["PATH"], "/bin:/usr/bin")
	_, hasNoValue := m["NOVALUE"]
	assert.Assert(t, !hasNoValue)
}

func TestBuildBuildEnvironmentUnknownMode(t *testing.T) {
	cfg := config.Default()
	cfg.Intercept.Mode = config.InterceptMode(99)
	_, err := buildBuildEnvironment(cfg, "127.0.0.1:12345")
	assert.ErrorContains(t, err, "unknown intercept mode")
}
