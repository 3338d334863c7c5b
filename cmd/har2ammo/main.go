package main

import (
	"errors"
	"os"

	"github.com/spf13/pflag"

	"tank-tools/internal/cli"
	"tank-tools/internal/config"
	tlog "tank-tools/internal/log"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := config.NewAmmoFlagSet("har2ammo", true)
	fs.Usage = func() {
		os.Stderr.WriteString("Usage: har2ammo [options] <file.har>\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return cli.Fail(err)
	}

	if v, _ := fs.GetBool("version"); v {
		cli.PrintVersion(os.Stdout, "har2ammo", version)
		return 0
	}

	cfg, err := config.LoadAmmoConfig(fs)
	if err != nil {
		return cli.Fail(err)
	}

	logger := tlog.NewStderr(cfg.Log)

	if err := cli.ConvertAmmo(cfg, cli.OpenHar, os.Stdout, logger); err != nil {
		return cli.Fail(err)
	}

	return 0
}
