// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"context"

	"github.com/bureau-foundation/teller/lib/bank"
	"github.com/bureau-foundation/teller/lib/protocol"
	"github.com/bureau-foundation/teller/lib/validation"
)

// route is the type-erased form of a per-kind pipeline.
type route struct {
	authorize func(protocol.Request, Session) string
	fields    func(protocol.Request) []validation.Field
	handle    func(context.Context, protocol.Request, Session) (any, Session, error)
}

// accessRule returns a Failure message, or "" to allow the request.
type accessRule[T protocol.Request] func(request T, session Session) string

// newRoute adapts typed pipeline stages to a route. fields may be nil.
func newRoute[T protocol.Request](
	access accessRule[T],
	fields func(T) []validation.Field,
	handle func(context.Context, T, Session) (any, Session, error),
) route {
	return route{
		authorize: func(request protocol.Request, session Session) string {
			return access(request.(T), session)
		},
		fields: func(request protocol.Request) []validation.Field {
			if fields == nil {
				return nil
			}
			return fields(request.(T))
		},
		handle: func(ctx context.Context, request protocol.Request, session Session) (any, Session, error) {
			return handle(ctx, request.(T), session)
		},
	}
}

func anonymousOnly[T protocol.Request](_ T, session Session) string {
	if session.Authenticated() {
		return MessageAlreadyAuthenticated
	}
	return ""
}

func authenticatedOnly[T protocol.Request](_ T, session Session) string {
	if !session.Authenticated() {
		return MessageNotAuthorized
	}
	return ""
}

func adminOnly[T protocol.Request](_ T, session Session) string {
	if !session.Admin() {
		return MessageNotAuthorized
	}
	return ""
}

// ownerOf allows admins and the owner of the account the request names.
func ownerOf[T protocol.Request](account func(T) bank.AccountNumber) accessRule[T] {
	return func(request T, session Session) string {
		if !session.Owns(account(request)) {
			return MessageNotAuthorized
		}
		return ""
	}
}

func accountField(name string, account bank.AccountNumber) validation.Field {
	return validation.Text(name, string(account), validation.AccountNumber)
}

func (d *Dispatcher) routeTable() map[protocol.Kind]route {
	return map[protocol.Kind]route{
		protocol.KindLogin: newRoute(anonymousOnly[protocol.Login],
			func(r protocol.Login) []validation.Field {
				return []validation.Field{accountField("account_number", r.AccountNumber)}
			},
			d.login),

		protocol.KindUserInit: newRoute(anonymousOnly[protocol.UserInit],
			func(r protocol.UserInit) []validation.Field {
				return []validation.Field{accountField("account_number", r.AccountNumber)}
			},
			d.userInit),

		protocol.KindGetAccountNumber: newRoute(authenticatedOnly[protocol.GetAccountNumber],
			func(r protocol.GetAccountNumber) []validation.Field {
				return []validation.Field{validation.Text("email", r.Email, validation.Email)}
			},
			d.getAccountNumber),

		protocol.KindGetBalance: newRoute(
			ownerOf(func(r protocol.GetBalance) bank.AccountNumber { return r.AccountNumber }),
			func(r protocol.GetBalance) []validation.Field {
				return []validation.Field{accountField("account_number", r.AccountNumber)}
			},
			d.getBalance),

		protocol.KindGetTransactionsHistory: newRoute(
			ownerOf(func(r protocol.GetTransactionsHistory) bank.AccountNumber { return r.AccountNumber }),
			func(r protocol.GetTransactionsHistory) []validation.Field {
				return []validation.Field{accountField("account_number", r.AccountNumber)}
			},
			d.getTransactionsHistory),

		protocol.KindMakeTransaction: newRoute(
			ownerOf(func(r protocol.MakeTransaction) bank.AccountNumber { return r.AccountNumber }),
			func(r protocol.MakeTransaction) []validation.Field {
				return []validation.Field{
					accountField("account_number", r.AccountNumber),
					validation.Integer("amount", r.Amount, validation.Amount),
				}
			},
			d.makeTransaction),

		protocol.KindTransferAmount: newRoute(
			ownerOf(func(r protocol.TransferAmount) bank.AccountNumber { return r.FromAccountNumber }),
			transferFields,
			d.transferAmount),

		protocol.KindGetDatabase: newRoute(adminOnly[protocol.GetDatabase], nil, d.getDatabase),

		protocol.KindCreateNewUser: newRoute(adminOnly[protocol.CreateNewUser],
			func(r protocol.CreateNewUser) []validation.Field {
				fields := []validation.Field{
					accountField("account_number", r.AccountNumber),
					validation.Text("first_name", r.FirstName, validation.Name),
					validation.Text("last_name", r.LastName, validation.Name),
					validation.Text("email", r.Email, validation.Email),
					validation.Text("password", r.Password, validation.Password),
				}
				if r.InitialBalance != nil {
					fields = append(fields, validation.Integer("initial_balance", *r.InitialBalance, validation.Balance))
				}
				return fields
			},
			d.createNewUser),

		protocol.KindDeleteUser: newRoute(adminOnly[protocol.DeleteUser],
			func(r protocol.DeleteUser) []validation.Field {
				return []validation.Field{accountField("account_number", r.AccountNumber)}
			},
			d.deleteUser),

		protocol.KindUpdateUser: newRoute(adminOnly[protocol.UpdateUser],
			func(r protocol.UpdateUser) []validation.Field {
				fields := []validation.Field{accountField("account_number", r.AccountNumber)}
				if r.FirstName != nil {
					fields = append(fields, validation.Text("first_name", *r.FirstName, validation.Name))
				}
				if r.LastName != nil {
					fields = append(fields, validation.Text("last_name", *r.LastName, validation.Name))
				}
				if r.Email != nil {
					fields = append(fields, validation.Text("email", *r.Email, validation.Email))
				}
				return fields
			},
			d.updateUser),

		protocol.KindUpdateEmail: newRoute(
			ownerOf(func(r protocol.UpdateEmail) bank.AccountNumber { return r.AccountNumber }),
			func(r protocol.UpdateEmail) []validation.Field {
				return []validation.Field{
					accountField("account_number", r.AccountNumber),
					validation.Text("new_email", r.NewEmail, validation.Email),
				}
			},
			d.updateEmail),

		protocol.KindUpdatePassword: newRoute(
			ownerOf(func(r protocol.UpdatePassword) bank.AccountNumber { return r.AccountNumber }),
			func(r protocol.UpdatePassword) []validation.Field {
				return []validation.Field{
					accountField("account_number", r.AccountNumber),
					validation.Text("new_password", r.NewPassword, validation.Password),
				}
			},
			d.updatePassword),

		protocol.KindLogout: newRoute(authenticatedOnly[protocol.Logout], nil, d.logout),
	}
}

// transferFields validates the destination the handler will use: the
// account number when given, else the email. The amount must be both
// a valid balance (non-negative) and a valid movement (non-zero).
func transferFields(r protocol.TransferAmount) []validation.Field {
	fields := []validation.Field{accountField("from_account_number", r.FromAccountNumber)}
	if r.ToAccountNumber != "" || r.ToEmail == "" {
		fields = append(fields, accountField("to_account_number", r.ToAccountNumber))
	} else {
		fields = append(fields, validation.Text("to_email", r.ToEmail, validation.Email))
	}
	return append(fields,
		validation.Integer("amount", r.Amount, validation.Balance),
		validation.Integer("amount", r.Amount, validation.Amount),
	)
}
