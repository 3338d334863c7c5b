package main

import (
	"errors"
	"os"

	"github.com/go-kit/log/level"
	"github.com/spf13/pflag"

	"tank-tools/internal/analysis"
	"tank-tools/internal/cli"
	"tank-tools/internal/config"
	tlog "tank-tools/internal/log"
	"tank-tools/internal/source"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Parse command line flags
	fs := config.NewFlagSet("parse-phout")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return cli.Fail(err)
	}

	// Load configuration
	cfg, err := config.LoadConfig(fs)
	if err != nil {
		return cli.Fail(err)
	}

	logger := tlog.NewStderr(cfg.Log)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	runner, err := analysis.NewRunner(cfg, source.NewOpener(cfg.AWS, logger), os.Stdout, logger)
	if err != nil {
		return cli.Fail(err)
	}

	result, err := runner.Run(ctx)
	if err != nil {
		level.Error(logger).Log("msg", "Analysis failed", "input", cfg.Input, "err", err)
		return cli.Fail(err)
	}

	if err := runner.Report(result); err != nil {
		return cli.Fail(err)
	}

	return 0
}
