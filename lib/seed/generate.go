// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package seed

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/bureau-foundation/teller/lib/bank"
)

var (
	firstNames = []string{
		"Hossam", "Ahmed", "Youssef", "Omar", "Ali", "Mahmoud", "Amr", "Khaled", "Mostafa", "Mohamed",
		"Sara", "Mona", "Yasmin", "Fatma", "Noor", "Layla", "Nadine", "Hana", "Reem", "Amina",
	}
	lastNames = []string{
		"Hassan", "Mohamed", "Ali", "Ibrahim", "Sayed", "Mahmoud", "Mostafa", "Hussein", "Salem", "Fathy",
	}
)

const (
	passwordLower  = "abcdefghijkmnopqrstuvwxyz"
	passwordUpper  = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	passwordDigits = "23456789"
	passwordAll    = passwordLower + passwordUpper + passwordDigits
)

// GenerateOptions sizes a generated seed.
type GenerateOptions struct {
	Admins    int
	Users     int
	Transfers int

	// Seed makes generation reproducible.
	Seed uint64
}

// DefaultGenerateOptions mirrors a small demo bank: two admins, eight
// customers, twenty transfers.
var DefaultGenerateOptions = GenerateOptions{Admins: 2, Users: 8, Transfers: 20}

// Generate returns random seed data that passes Validate. Passwords
// are plain text so the caller can print them. Customers start with
// 1000.00 to 10000.00 and transfers move 10.00 to 1000.00 without
// overdrawing; a transfer that cannot be covered is skipped.
func Generate(options GenerateOptions) *File {
	random := rand.New(rand.NewPCG(options.Seed, options.Seed^0x7e11e7))
	file := &File{}
	taken := make(map[bank.AccountNumber]bool)

	add := func(index int, role string, balance int64) {
		account := uniqueAccount(random, taken)
		first := firstNames[random.IntN(len(firstNames))]
		last := lastNames[random.IntN(len(lastNames))]
		file.Users = append(file.Users, User{
			AccountNumber: account,
			FirstName:     first,
			LastName:      last,
			Email:         fmt.Sprintf("%s.%s.%d@example.com", strings.ToLower(first), strings.ToLower(last), index),
			Password:      randomPassword(random),
			Role:          role,
			Balance:       balance,
		})
	}
	for index := range options.Admins {
		add(index, bank.RoleAdmin, 0)
	}
	for index := range options.Users {
		add(options.Admins+index, bank.RoleUser, 100_000+random.Int64N(900_001))
	}

	customers := file.Users[options.Admins:]
	if len(customers) < 2 {
		return file
	}
	balances := make(map[bank.AccountNumber]int64, len(customers))
	for _, user := range customers {
		balances[user.AccountNumber] = user.Balance
	}
	for range options.Transfers {
		from := customers[random.IntN(len(customers))].AccountNumber
		to := customers[random.IntN(len(customers))].AccountNumber
		for to == from {
			to = customers[random.IntN(len(customers))].AccountNumber
		}
		amount := 1_000 + random.Int64N(99_001)
		if balances[from] < amount {
			continue
		}
		balances[from] -= amount
		balances[to] += amount
		file.Transfers = append(file.Transfers, Transfer{From: from, To: to, Amount: amount})
	}
	return file
}

func uniqueAccount(random *rand.Rand, taken map[bank.AccountNumber]bool) bank.AccountNumber {
	for {
		account := bank.AccountNumber(strconv.Itoa(100_000 + random.IntN(900_000)))
		if !taken[account] {
			taken[account] = true
			return account
		}
	}
}

// randomPassword returns ten characters with at least one lowercase
// letter, one uppercase letter and one digit.
func randomPassword(random *rand.Rand) string {
	password := []byte{
		passwordLower[random.IntN(len(passwordLower))],
		passwordUpper[random.IntN(len(passwordUpper))],
		passwordDigits[random.IntN(len(passwordDigits))],
	}
	for len(password) < 10 {
		password = append(password, passwordAll[random.IntN(len(passwordAll))])
	}
	random.Shuffle(len(password), func(i, j int) { password[i], password[j] = password[j], password[i] })
	return string(password)
}
