// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// teller is the command-line client for a Teller server.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/teller/lib/bank"
	"github.com/bureau-foundation/teller/lib/cli"
	"github.com/bureau-foundation/teller/lib/secret"
	"github.com/bureau-foundation/teller/lib/service"
	"github.com/bureau-foundation/teller/lib/version"
)

const (
	serverEnv  = "TELLER_SERVER"
	accountEnv = "TELLER_ACCOUNT"

	defaultServer = "127.0.0.1:7447"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newApp(os.Stdout).root().Execute(ctx, os.Args[1:])
	stop()
	cli.Exit("teller", err)
}

// app carries the connection flags shared by every command.
type app struct {
	stdout io.Writer

	server       string
	account      string
	passwordFile string
	json         bool
}

func newApp(stdout io.Writer) *app {
	return &app{stdout: stdout}
}

func (a *app) root() *cli.Command {
	return &cli.Command{
		Name: "teller",
		Description: "Command-line client for a Teller bank server.\n\n" +
			"Every command opens one connection and signs in as --account before acting.\n" +
			"--server is host:port, or a socket path (optionally prefixed unix:).",
		Subcommands: []*cli.Command{
			a.loginCommand(),
			a.balanceCommand(),
			a.historyCommand(),
			a.depositCommand(),
			a.withdrawCommand(),
			a.transferCommand(),
			a.accountNumberCommand(),
			a.updateEmailCommand(),
			a.updatePasswordCommand(),
			a.usersCommand(),
			a.createUserCommand(),
			a.deleteUserCommand(),
			a.updateUserCommand(),
			a.uiCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(ctx context.Context, args []string) error {
					fmt.Fprintln(a.stdout, "teller "+version.Full())
					return nil
				},
			},
		},
	}
}

// flags returns a flag set carrying the connection flags.
func (a *app) flags(name string) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	server := os.Getenv(serverEnv)
	if server == "" {
		server = defaultServer
	}
	flagSet.StringVarP(&a.server, "server", "s", server, "server address (env "+serverEnv+")")
	flagSet.StringVarP(&a.account, "account", "a", os.Getenv(accountEnv), "account to sign in as (env "+accountEnv+")")
	flagSet.StringVar(&a.passwordFile, "password-file", "", "read the password from a file, - for stdin (default: prompt)")
	flagSet.BoolVar(&a.json, "json", false, "print JSON")
	return flagSet
}

// parseServer splits a --server value into a network and address.
func parseServer(server string) (network, address string) {
	if path, ok := strings.CutPrefix(server, "unix:"); ok {
		return "unix", path
	}
	if strings.ContainsRune(server, '/') {
		return "unix", server
	}
	return "tcp", server
}

func (a *app) dial(ctx context.Context) (*service.Client, error) {
	network, address := parseServer(a.server)
	return service.Dial(ctx, service.ClientConfig{Network: network, Address: address})
}

// connect dials the server and signs in. The caller must Close the
// client.
func (a *app) connect(ctx context.Context) (*service.Client, bank.Profile, error) {
	password, err := a.readPassword()
	if err != nil {
		return nil, bank.Profile{}, err
	}
	defer password.Close()
	return a.connectWith(ctx, password.String())
}

// readPassword reads the --account password. The caller must Close
// the buffer.
func (a *app) readPassword() (*secret.Buffer, error) {
	if a.account == "" {
		return nil, fmt.Errorf("--account (or %s) is required", accountEnv)
	}
	return cli.ReadPassword(a.passwordFile, "password for "+a.account, false)
}

// connectWith signs in with a password the caller already holds.
func (a *app) connectWith(ctx context.Context, password string) (*service.Client, bank.Profile, error) {
	client, err := a.dial(ctx)
	if err != nil {
		return nil, bank.Profile{}, err
	}
	profile, err := client.Login(ctx, bank.AccountNumber(a.account), password)
	if err != nil {
		client.Close()
		return nil, bank.Profile{}, err
	}
	return client, profile, nil
}

// target returns the single optional ACCOUNT argument, defaulting to
// the signed-in account.
func target(args []string, profile bank.Profile) (bank.AccountNumber, error) {
	switch len(args) {
	case 0:
		return profile.AccountNumber, nil
	case 1:
		return bank.AccountNumber(args[0]), nil
	}
	return "", fmt.Errorf("expected at most one account, got %d arguments", len(args))
}
