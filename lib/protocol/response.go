// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"fmt"

	"github.com/bureau-foundation/teller/lib/bank"
	"github.com/bureau-foundation/teller/lib/codec"
)

// Response is the wire envelope of every server reply.
type Response struct {
	Kind    Kind             `cbor:"response"`
	Status  Status           `cbor:"status"`
	Message string           `cbor:"message,omitempty"`
	Field   string           `cbor:"field,omitempty"`
	Data    codec.RawMessage `cbor:"data,omitempty"`
}

// Success builds a Success response carrying result. A nil result
// produces a response with no data.
func Success(kind Kind, result any) (Response, error) {
	response := Response{Kind: kind, Status: StatusSuccess}
	if result == nil {
		return response, nil
	}
	data, err := codec.Marshal(result)
	if err != nil {
		return Response{}, fmt.Errorf("encoding %s result: %w", kind, err)
	}
	response.Data = data
	return response, nil
}

// Failure builds a Failure response.
func Failure(kind Kind, message string) Response {
	return Response{Kind: kind, Status: StatusFailure, Message: message}
}

// ValidationFailure builds a ValidationError response naming field.
func ValidationFailure(kind Kind, field, rule string) Response {
	return Response{Kind: kind, Status: StatusValidationError, Field: field, Message: rule}
}

// ParseFailure builds a ParseError response.
func ParseFailure(kind Kind, message string) Response {
	return Response{Kind: kind, Status: StatusParseError, Message: message}
}

// DecodeData decodes a Success response's data into result.
func (r Response) DecodeData(result any) error {
	if len(r.Data) == 0 {
		return fmt.Errorf("%s response carries no data", r.Kind)
	}
	if err := codec.Unmarshal(r.Data, result); err != nil {
		return fmt.Errorf("decoding %s result: %w", r.Kind, err)
	}
	return nil
}

// Success payloads, one per kind that returns data. Login,
// CreateNewUser, DeleteUser, UpdateUser, UpdateEmail and
// UpdatePassword return a bare bank.Profile.

// AccountNumberResult answers GetAccountNumber.
type AccountNumberResult struct {
	AccountNumber bank.AccountNumber `cbor:"account_number"`
}

// BalanceResult answers GetBalance.
type BalanceResult struct {
	AccountNumber bank.AccountNumber `cbor:"account_number"`
	Balance       int64              `cbor:"balance"`
}

// HistoryResult answers GetTransactionsHistory.
type HistoryResult struct {
	AccountNumber bank.AccountNumber `cbor:"account_number"`
	Transactions  []bank.Transaction `cbor:"transactions"`
}

// TransactionResult answers MakeTransaction and TransferAmount. For a
// transfer, Transaction is the debit leg and Balance the source's.
type TransactionResult struct {
	Transaction bank.Transaction `cbor:"transaction"`
	Balance     int64            `cbor:"balance"`
}

// DatabaseResult answers GetDatabase.
type DatabaseResult struct {
	Users []bank.Profile `cbor:"users"`
}

// InitResult answers UserInit.
type InitResult struct {
	Profile      bank.Profile       `cbor:"profile"`
	Transactions []bank.Transaction `cbor:"transactions"`
}
