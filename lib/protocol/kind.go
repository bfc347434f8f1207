// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import "fmt"

// Kind identifies a request and the response that answers it.
type Kind int

const (
	// KindUnknown marks a response to a frame whose kind could not be
	// determined.
	KindUnknown Kind = 0

	KindLogin                  Kind = 1
	KindGetAccountNumber       Kind = 2
	KindGetBalance             Kind = 3
	KindGetTransactionsHistory Kind = 4
	KindMakeTransaction        Kind = 5
	KindTransferAmount         Kind = 6
	KindGetDatabase            Kind = 7
	KindCreateNewUser          Kind = 8
	KindDeleteUser             Kind = 9
	KindUpdateUser             Kind = 10
	KindUserInit               Kind = 11
	KindUpdateEmail            Kind = 12
	KindUpdatePassword         Kind = 13
	KindLogout                 Kind = 14
)

var kindNames = map[Kind]string{
	KindUnknown:                "unknown",
	KindLogin:                  "login",
	KindGetAccountNumber:       "get_account_number",
	KindGetBalance:             "get_balance",
	KindGetTransactionsHistory: "get_transactions_history",
	KindMakeTransaction:        "make_transaction",
	KindTransferAmount:         "transfer_amount",
	KindGetDatabase:            "get_database",
	KindCreateNewUser:          "create_new_user",
	KindDeleteUser:             "delete_user",
	KindUpdateUser:             "update_user",
	KindUserInit:               "user_init",
	KindUpdateEmail:            "update_email",
	KindUpdatePassword:         "update_password",
	KindLogout:                 "logout",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Known reports whether k names a request kind.
func (k Kind) Known() bool {
	return k >= KindLogin && k <= KindLogout
}

// Status classifies a response.
type Status int

const (
	StatusSuccess         Status = 1
	StatusFailure         Status = 2
	StatusValidationError Status = 3
	StatusParseError      Status = 4
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusValidationError:
		return "validation_error"
	case StatusParseError:
		return "parse_error"
	}
	return fmt.Sprintf("status(%d)", int(s))
}
