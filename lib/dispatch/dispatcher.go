// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/teller/lib/ledger"
	"github.com/bureau-foundation/teller/lib/passhash"
	"github.com/bureau-foundation/teller/lib/protocol"
	"github.com/bureau-foundation/teller/lib/validation"
)

// DefaultInitHistory is how many recent transactions UserInit returns
// unless configured otherwise.
const DefaultInitHistory = 10

// Config holds a Dispatcher's collaborators. Store and Hasher are
// required.
type Config struct {
	Store  ledger.Store
	Hasher *passhash.Hasher
	Logger *slog.Logger

	// InitHistory is the number of transactions in a UserInit
	// response. Zero means DefaultInitHistory.
	InitHistory int
}

// Dispatcher executes requests. It is safe for concurrent use.
type Dispatcher struct {
	store       ledger.Store
	hasher      *passhash.Hasher
	logger      *slog.Logger
	initHistory int
	routes      map[protocol.Kind]route
}

// New returns a Dispatcher serving every request kind.
func New(cfg Config) (*Dispatcher, error) {
	if cfg.Store == nil {
		return nil, errors.New("dispatch: Store is required")
	}
	if cfg.Hasher == nil {
		return nil, errors.New("dispatch: Hasher is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	initHistory := cfg.InitHistory
	if initHistory <= 0 {
		initHistory = DefaultInitHistory
	}
	d := &Dispatcher{
		store:       cfg.Store,
		hasher:      cfg.Hasher,
		logger:      logger,
		initHistory: initHistory,
	}
	d.routes = d.routeTable()
	for kind := protocol.KindLogin; kind <= protocol.KindLogout; kind++ {
		if _, ok := d.routes[kind]; !ok {
			return nil, fmt.Errorf("dispatch: no route for %s", kind)
		}
	}
	return d, nil
}

// Dispatch decodes one frame body and handles it. Undecodable frames
// produce a ParseError response and leave the session unchanged.
func (d *Dispatcher) Dispatch(ctx context.Context, frame []byte, session Session) (protocol.Response, Session) {
	request, err := protocol.DecodeRequest(frame)
	if err != nil {
		kind := protocol.KindUnknown
		reason := err.Error()
		var parseErr *protocol.ParseError
		if errors.As(err, &parseErr) {
			kind = parseErr.Kind
			reason = parseErr.Reason
		}
		d.logger.Debug("request rejected", "kind", kind, "status", protocol.StatusParseError, "reason", reason)
		return protocol.ParseFailure(kind, reason), session
	}
	return d.Handle(ctx, request, session)
}

// Handle runs a decoded request through authorization, validation and
// execution. It returns the response and the session the connection
// must use for its next request.
func (d *Dispatcher) Handle(ctx context.Context, request protocol.Request, session Session) (protocol.Response, Session) {
	kind := request.Kind()
	response, next := d.handle(ctx, request, session)
	d.logger.Debug("request handled",
		"kind", kind,
		"status", response.Status,
		"session", session.State,
		"account", session.Account,
	)
	return response, next
}

func (d *Dispatcher) handle(ctx context.Context, request protocol.Request, session Session) (protocol.Response, Session) {
	kind := request.Kind()
	route, ok := d.routes[kind]
	if !ok {
		return protocol.ParseFailure(kind, "unsupported request kind"), session
	}

	if message := route.authorize(request, session); message != "" {
		return protocol.Failure(kind, message), session
	}

	if invalid := validation.First(route.fields(request)); invalid != nil {
		return protocol.ValidationFailure(kind, invalid.Field, invalid.Rule), session
	}

	result, next, err := route.handle(ctx, request, session)
	if err != nil {
		return protocol.Failure(kind, d.failureMessage(kind, session, err)), session
	}

	response, err := protocol.Success(kind, result)
	if err != nil {
		d.logger.Error("encoding response failed", "kind", kind, "error", err)
		return protocol.Failure(kind, MessageInternal), session
	}
	return response, next
}

// failure is an expected, client-visible outcome of a handler.
type failure struct {
	message string
}

func (f *failure) Error() string { return f.message }

func fail(message string) error { return &failure{message: message} }

// failureMessage maps a handler error to its client-visible message.
// Unexpected errors are logged and hidden behind MessageInternal.
func (d *Dispatcher) failureMessage(kind protocol.Kind, session Session, err error) string {
	var expected *failure
	switch {
	case errors.As(err, &expected):
		return expected.message
	case errors.Is(err, ledger.ErrNotFound):
		return MessageUnknownAccount
	case errors.Is(err, ledger.ErrDuplicate):
		return MessageDuplicate
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return MessageInsufficientFunds
	case errors.Is(err, ledger.ErrSameAccount):
		return MessageSameAccount
	case errors.Is(err, ledger.ErrBalanceLimit):
		return MessageBalanceLimit
	case errors.Is(err, ledger.ErrInvalidAmount):
		return MessageInvalidAmount
	}
	d.logger.Error("request failed",
		"kind", kind,
		"account", session.Account,
		"error", err,
	)
	return MessageInternal
}
