// Command bear runs a build under interception and emits a JSON
// Compilation Database for the compiler invocations it recognizes.
//
// Grounded on _examples/banksean-sand/cmd/sand/main.go's CLI shape: a
// kong-parsed CLI struct of subcommands, a shared Context handed to
// each subcommand's Run, slog initialized right after parsing.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	kongyaml "github.com/alecthomas/kong-yaml"
	kongcompletion "github.com/jotaen/kong-completion"

	"github.com/banksean/bear/internal/bearlog"
	"github.com/banksean/bear/internal/config"
	"github.com/banksean/bear/internal/telemetry"
	"github.com/banksean/bear/version"
)

const description = `bear observes a build and writes a JSON Compilation Database.

Run it in front of a build command to capture and analyze every
compiler invocation:

  bear -- make -j8

Or split capture from analysis:

  bear intercept --output events.jsonl -- make -j8
  bear semantic --input events.jsonl --output compile_commands.json`

// CLI is the root command set. Flags declared here apply to every
// subcommand; main consumes them before dispatching and hands the
// loaded configuration to each subcommand through Context.
type CLI struct {
	Config       string `short:"c" placeholder:"<path>" help:"path to the bear.yml configuration file (searched for at well-known locations when unset)"`
	LogFile      string `placeholder:"<path>" help:"write structured logs here instead of stderr"`
	LogLevel     string `default:"info" enum:"debug,info,warn,error" help:"logging level (debug, info, warn, error)"`
	Verbose      int    `short:"v" type:"counter" help:"increase verbosity (repeatable, e.g. -vv); any use raises the effective log level to debug"`
	OTLPEndpoint string `name:"otlp-endpoint" placeholder:"<host:port>" help:"OTLP/gRPC endpoint to export pipeline trace spans to (tracing stays a no-op when unset)"`

	Intercept InterceptCmd `cmd:"" help:"capture only: run a build and write its execution event log"`
	Semantic  SemanticCmd  `cmd:"" help:"replay: analyze a previously captured event log into a compilation database"`
	Run       RunCmd       `cmd:"" default:"withargs" help:"intercept and analyze a build in one pass (default)"`
	Version   VersionCmd   `cmd:"" help:"print version information"`
}

// Context is handed to every subcommand's Run method, following
// cmd/sand/main.go's Context pattern.
type Context struct {
	Config config.Main
}

func main() {
	var cli CLI

	parser := kong.Must(&cli,
		kong.Name("bear"),
		kong.Description(description),
		kong.Configuration(kongyaml.Loader, "bear-cli.yaml", "~/.bear-cli.yaml"),
		kong.UsageOnError(),
	)
	kongcompletion.Register(parser)

	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	logger, closeLog, err := bearlog.Init(bearlog.Options{
		LogFile: cli.LogFile,
		Level:   cli.LogLevel,
		Verbose: cli.Verbose > 0,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "bear: init logging: %v\n", err)
		os.Exit(exitFailure)
	}
	defer closeLog()

	cfg, err := config.Load(cli.Config)
	switch {
	case err == nil:
	case cli.Config == "" && errors.Is(err, config.ErrNotFound):
		logger.Debug("bear: no configuration file found, using defaults")
		cfg = config.Default()
	default:
		logger.Error("bear: load configuration", "error", err)
		os.Exit(exitFailure)
	}

	shutdownTelemetry, err := telemetry.Setup(context.Background(), telemetry.Options{
		Endpoint:       cli.OTLPEndpoint,
		ServiceName:    "bear",
		ServiceVersion: version.Get().GitCommit,
	})
	if err != nil {
		logger.Error("bear: setup telemetry", "error", err)
		os.Exit(exitFailure)
	}
	defer shutdownTelemetry(context.Background())

	err = kctx.Run(&Context{Config: cfg})
	os.Exit(exitCodeFor(err, logger))
}
