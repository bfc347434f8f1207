// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package seed loads initial users and transfers into an empty ledger.
//
// Seed files are JSONC (JSON with comments and trailing commas):
//
//	{
//	  // operators
//	  "users": [
//	    {"account_number": "9000", "first_name": "Ada", "last_name": "Byron",
//	     "email": "ada@example.com", "password": "Adm1nPassword", "role": "admin"},
//	    {"account_number": "1001", "first_name": "Sam", "last_name": "Hill",
//	     "email": "sam@example.com", "password": "Passw0rdSam", "balance": 50000},
//	  ],
//	  "transfers": [{"from": "1001", "to": "9000", "amount": 1250}],
//	}
//
// Passwords may be plain text, which must satisfy the password rule,
// or an existing argon2id or bcrypt hash. [Generate] produces random
// valid seed data for development.
package seed
