// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"time"

	"github.com/bureau-foundation/teller/lib/bank"
	"github.com/bureau-foundation/teller/lib/cli"
	"github.com/bureau-foundation/teller/lib/protocol"
)

const timeLayout = "2006-01-02 15:04"

func (a *app) printProfiles(profiles ...bank.Profile) error {
	if a.json {
		if len(profiles) == 1 {
			return cli.WriteJSON(a.stdout, profiles[0])
		}
		return cli.WriteJSON(a.stdout, profiles)
	}
	table := cli.NewTable(a.stdout, "ACCOUNT", "ROLE", "NAME", "EMAIL", "BALANCE", "OPENED")
	for _, profile := range profiles {
		table.Row(profile.AccountNumber, profile.Role, profile.FirstName+" "+profile.LastName,
			profile.Email, bank.FormatAmount(profile.Balance), profile.CreatedAt.Local().Format(timeLayout))
	}
	return table.Flush()
}

func (a *app) printHistory(history []bank.Transaction) error {
	if a.json {
		return cli.WriteJSON(a.stdout, history)
	}
	table := cli.NewTable(a.stdout, "ID", "TIME", "KIND", "AMOUNT", "COUNTERPARTY", "BALANCE")
	for _, transaction := range history {
		table.Row(transaction.ID, transaction.Timestamp.Local().Format(timeLayout), transaction.Kind,
			signed(transaction.Amount), orDash(string(transaction.Counterparty)), bank.FormatAmount(transaction.Balance))
	}
	return table.Flush()
}

func (a *app) printTransaction(result protocol.TransactionResult) error {
	if a.json {
		return cli.WriteJSON(a.stdout, struct {
			Transaction bank.Transaction `json:"transaction"`
			Balance     int64            `json:"balance"`
		}{result.Transaction, result.Balance})
	}
	table := cli.NewTable(a.stdout, "FIELD", "VALUE")
	table.Row("transaction", result.Transaction.ID)
	table.Row("kind", result.Transaction.Kind)
	table.Row("amount", signed(result.Transaction.Amount))
	if result.Transaction.Counterparty != "" {
		table.Row("counterparty", result.Transaction.Counterparty)
	}
	table.Row("time", result.Transaction.Timestamp.Local().Format(time.RFC3339))
	table.Row("balance", bank.FormatAmount(result.Balance))
	return table.Flush()
}

func signed(amount int64) string {
	if amount > 0 {
		return "+" + bank.FormatAmount(amount)
	}
	return bank.FormatAmount(amount)
}

func orDash(text string) string {
	if text == "" {
		return "-"
	}
	return text
}
