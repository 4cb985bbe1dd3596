package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/banksean/bear/internal/buildenv"
	"github.com/banksean/bear/internal/config"
	"github.com/banksean/bear/internal/output/clang"
	"github.com/banksean/bear/internal/pipeline"
	"github.com/banksean/bear/internal/semantic/compilers"
	"github.com/banksean/bear/internal/semantic/filter"
)

// buildAnalyzer composes C8/C9/C10 (dispatch, filter, converter) from
// the decoded configuration, matching
// _examples/original_source/bear/src/modes/semantic.rs's
// SemanticAnalysis::new wiring.
func buildAnalyzer(cfg config.Main) (*pipeline.Analyzer, error) {
	if cfg.Output.Specification != config.OutputClang {
		return nil, fmt.Errorf("bear: output specification %q is not supported by this build (no clang converter to drive)", "bear")
	}

	compilerRules, err := cfg.Output.CompilerRules()
	if err != nil {
		return nil, fmt.Errorf("bear: compiler filter configuration: %w", err)
	}
	sourceRules, err := cfg.Output.SourceRules()
	if err != nil {
		return nil, fmt.Errorf("bear: source filter configuration: %w", err)
	}

	dispatch := compilers.NewDispatch(nil)
	f := filter.NewFilter(
		filter.NewCompilerFilter(compilerRules),
		filter.NewSourceFilter(sourceRules, cfg.Output.Sources.OnlyExistingFiles),
	)
	converter := clang.NewConverter(cfg.Output.ConverterFormat())

	return pipeline.NewAnalyzer(dispatch, f, converter), nil
}

// buildBuildEnvironment constructs the environment overlay for cfg's
// configured interception mode, addressed at the collector listening
// on collectorAddr (spec.md §4.5/C5).
func buildBuildEnvironment(cfg config.Main, collectorAddr string) (*buildenv.BuildEnvironment, error) {
	current := envToMap(os.Environ())

	switch cfg.Intercept.Mode {
	case config.InterceptPreload:
		return buildenv.NewPreload(current, cfg.Intercept.PreloadLibraryPath, collectorAddr)
	case config.InterceptWrapper:
		recognizer := compilers.NewRecognizer(nil)
		return buildenv.NewWrapper(current, cfg.Intercept.WrapperExecutablePath, cfg.Intercept.Executables, recognizer, collectorAddr)
	default:
		return nil, fmt.Errorf("bear: unknown intercept mode %v", cfg.Intercept.Mode)
	}
}

func envToMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		if key, value, ok := strings.Cut(kv, "="); ok {
			m[key] = value
		}
	}
	return m
}
