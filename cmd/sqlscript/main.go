package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/shibukawa/sqlscript/cli"
)

// CLI represents the command-line interface
var CLI struct {
	Config  string         `help:"Configuration file path" default:"sqlscript.yaml"`
	Verbose bool           `help:"Enable verbose output" short:"v"`
	Quiet   bool           `help:"Suppress output" short:"q"`
	Run     cli.RunCmd     `cmd:"" help:"Execute SQL script files against a database"`
	Version cli.VersionCmd `cmd:"" help:"Show version information"`
}

func newLogger(verbose, quiet bool) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	switch {
	case quiet:
		logger = level.NewFilter(logger, level.AllowError())
	case verbose:
		logger = level.NewFilter(logger, level.AllowDebug())
	default:
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	return logger
}

func main() {
	ctx := kong.Parse(&CLI)

	appCtx := &cli.Context{
		Config:  CLI.Config,
		Verbose: CLI.Verbose,
		Quiet:   CLI.Quiet,
		Logger:  newLogger(CLI.Verbose, CLI.Quiet),
	}

	err := ctx.Run(appCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
