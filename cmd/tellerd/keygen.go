// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/teller/lib/cli"
	"github.com/bureau-foundation/teller/lib/sealed"
)

func keygenCommand() *cli.Command {
	var output string
	return &cli.Command{
		Name:    "keygen",
		Summary: "Generate a backup encryption keypair",
		Description: "Write a new age identity to --output (mode 0600) and print its public key.\n\n" +
			"Add the public key to the file named by backup.recipients. Keep the identity offline; " +
			"restore needs it.",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("keygen", pflag.ContinueOnError)
			flagSet.StringVarP(&output, "output", "o", "", "identity file to create")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if output == "" {
				return errors.New("--output is required")
			}
			publicKey, err := writeIdentity(output)
			if err != nil {
				return err
			}
			fmt.Println(publicKey)
			return nil
		},
	}
}

// writeIdentity creates path exclusively and stores a fresh private
// key in it.
func writeIdentity(path string) (string, error) {
	keypair, err := sealed.GenerateKeypair()
	if err != nil {
		return "", err
	}
	defer keypair.Close()

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", err
	}
	_, err = file.Write(keypair.PrivateKey.Bytes())
	if err == nil {
		_, err = file.Write([]byte{'\n'})
	}
	if err != nil {
		file.Close()
		os.Remove(path)
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	return keypair.PublicKey, nil
}
