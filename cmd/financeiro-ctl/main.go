package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"financeiro/internal/backend"
	"financeiro/internal/cli"
	"financeiro/internal/ctl"
	"financeiro/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, os.Stderr).WithComponent(log.ComponentCLI)

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	ctl.Register(commander, &ctl.Env{
		Out:    os.Stdout,
		Err:    os.Stderr,
		Logger: logger,
		Open: func(ctx context.Context) (*backend.BackendResult, error) {
			bcfg, err := backend.FromAppConfig(cfg)
			if err != nil {
				return nil, err
			}
			return backend.NewFactory(logger).CreateBackend(ctx, bcfg)
		},
	})

	flag.Parse()

	ctx, cancel := cli.SignalContext(logger)
	code := commander.Execute(ctx)
	cancel()
	os.Exit(int(code))
}
