// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// tellerd is the Teller bank server and its maintenance tools.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/teller/lib/cli"
	"github.com/bureau-foundation/teller/lib/config"
	"github.com/bureau-foundation/teller/lib/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := root().Execute(ctx, os.Args[1:])
	stop()
	cli.Exit("tellerd", err)
}

func root() *cli.Command {
	return &cli.Command{
		Name: "tellerd",
		Description: "Teller bank server.\n\n" +
			"Every command reads the YAML file named by --config or " + config.EnvVar + ".",
		Subcommands: []*cli.Command{
			serveCommand(),
			seedCommand(),
			backupCommand(),
			restoreCommand(),
			verifyCommand(),
			keygenCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(ctx context.Context, args []string) error {
					fmt.Println("tellerd " + version.Full())
					return nil
				},
			},
		},
	}
}

// configFlag registers --config on flagSet.
func configFlag(flagSet *pflag.FlagSet, path *string) {
	flagSet.StringVarP(path, "config", "c", "", "configuration file (default $"+config.EnvVar+")")
}

// loadConfig reads path, or the file named by TELLER_CONFIG when path
// is empty, and validates it.
func loadConfig(path string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}
