// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/bureau-foundation/teller/lib/bank"
	"github.com/bureau-foundation/teller/lib/protocol"
)

// dialTimeout covers only the connect phase.
const dialTimeout = 5 * time.Second

// DefaultCallTimeout bounds one request-response exchange when the
// caller's context has no deadline.
const DefaultCallTimeout = 45 * time.Second

// ErrClientBroken is returned by calls on a Client whose connection
// failed or was interrupted mid-exchange.
var ErrClientBroken = errors.New("service: client connection is broken")

// ResponseError is a non-success response from the server.
type ResponseError struct {
	Kind    protocol.Kind
	Status  protocol.Status
	Message string
	Field   string
}

func (e *ResponseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s on %s: %s", e.Kind, e.Status, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Status, e.Message)
}

// ClientConfig configures Dial. Network is "tcp" or "unix".
type ClientConfig struct {
	Network string
	Address string

	// MaxFrameSize bounds a response body. Zero means
	// protocol.DefaultMaxFrameSize.
	MaxFrameSize int

	// CallTimeout applies when a call's context has no deadline. Zero
	// means DefaultCallTimeout.
	CallTimeout time.Duration

	// OnResponse, when set, observes every response the client
	// receives, including failures, before the calling method returns.
	OnResponse func(protocol.Response)
}

// Client holds one persistent connection to a Teller server. Calls are
// serialized: at most one request is in flight.
type Client struct {
	conn         net.Conn
	reader       *bufio.Reader
	maxFrameSize int
	callTimeout  time.Duration
	onResponse   func(protocol.Response)

	mu     sync.Mutex
	broken error
}

// Dial connects to a Teller server.
func Dial(ctx context.Context, cfg ClientConfig) (*Client, error) {
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, cfg.Network, cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s %s: %w", cfg.Network, cfg.Address, err)
	}
	maxFrameSize := cfg.MaxFrameSize
	if maxFrameSize <= 0 {
		maxFrameSize = protocol.DefaultMaxFrameSize
	}
	callTimeout := cfg.CallTimeout
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	return &Client{
		conn:         conn,
		reader:       bufio.NewReader(conn),
		maxFrameSize: maxFrameSize,
		callTimeout:  callTimeout,
		onResponse:   cfg.OnResponse,
	}, nil
}

// Close closes the connection. Calls after Close fail.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.broken == nil {
		c.broken = net.ErrClosed
	}
	return c.conn.Close()
}

// Do sends request and returns the server's response whatever its
// status. The error is non-nil only for transport and encoding
// failures; after one, the client is unusable.
func (c *Client) Do(ctx context.Context, request protocol.Request) (protocol.Response, error) {
	body, err := protocol.EncodeRequest(request)
	if err != nil {
		return protocol.Response{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.broken != nil {
		return protocol.Response{}, fmt.Errorf("%s: %w: %w", request.Kind(), ErrClientBroken, c.broken)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.callTimeout)
	}
	c.conn.SetDeadline(deadline)
	// Cancellation interrupts blocked I/O by moving the deadline into
	// the past.
	stop := context.AfterFunc(ctx, func() { c.conn.SetDeadline(time.Unix(1, 0)) })
	defer stop()

	response, err := c.exchange(body)
	if err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("%w (%w)", ctx.Err(), err)
		}
		c.broken = err
		c.conn.Close()
		return protocol.Response{}, fmt.Errorf("%s: %w", request.Kind(), err)
	}
	if response.Kind != request.Kind() && response.Status != protocol.StatusParseError {
		c.broken = fmt.Errorf("response kind %s does not match request kind %s", response.Kind, request.Kind())
		c.conn.Close()
		return protocol.Response{}, c.broken
	}

	if c.onResponse != nil {
		c.onResponse(response)
	}
	return response, nil
}

func (c *Client) exchange(body []byte) (protocol.Response, error) {
	if err := protocol.WriteFrame(c.conn, body); err != nil {
		return protocol.Response{}, fmt.Errorf("writing request: %w", err)
	}
	frame, err := protocol.ReadFrame(c.reader, c.maxFrameSize)
	if err != nil {
		return protocol.Response{}, fmt.Errorf("reading response: %w", err)
	}
	return protocol.DecodeResponse(frame)
}

// call sends request and decodes a success payload into result, which
// may be nil. Non-success responses become *ResponseError.
func (c *Client) call(ctx context.Context, request protocol.Request, result any) error {
	response, err := c.Do(ctx, request)
	if err != nil {
		return err
	}
	if response.Status != protocol.StatusSuccess {
		return &ResponseError{
			Kind:    response.Kind,
			Status:  response.Status,
			Message: response.Message,
			Field:   response.Field,
		}
	}
	if result == nil {
		return nil
	}
	return response.DecodeData(result)
}

// Login authenticates the connection.
func (c *Client) Login(ctx context.Context, account bank.AccountNumber, password string) (bank.Profile, error) {
	var profile bank.Profile
	err := c.call(ctx, protocol.Login{AccountNumber: account, Password: password}, &profile)
	return profile, err
}

// UserInit authenticates the connection and returns the dashboard
// bootstrap.
func (c *Client) UserInit(ctx context.Context, account bank.AccountNumber, password string) (protocol.InitResult, error) {
	var result protocol.InitResult
	err := c.call(ctx, protocol.UserInit{AccountNumber: account, Password: password}, &result)
	return result, err
}

// Logout returns the connection to the anonymous state.
func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, protocol.Logout{}, nil)
}

func (c *Client) GetAccountNumber(ctx context.Context, email string) (bank.AccountNumber, error) {
	var result protocol.AccountNumberResult
	err := c.call(ctx, protocol.GetAccountNumber{Email: email}, &result)
	return result.AccountNumber, err
}

func (c *Client) GetBalance(ctx context.Context, account bank.AccountNumber) (int64, error) {
	var result protocol.BalanceResult
	err := c.call(ctx, protocol.GetBalance{AccountNumber: account}, &result)
	return result.Balance, err
}

// GetTransactionsHistory returns up to limit entries, newest first.
// Zero means all.
func (c *Client) GetTransactionsHistory(ctx context.Context, account bank.AccountNumber, limit int) ([]bank.Transaction, error) {
	var result protocol.HistoryResult
	err := c.call(ctx, protocol.GetTransactionsHistory{AccountNumber: account, Limit: limit}, &result)
	return result.Transactions, err
}

func (c *Client) MakeTransaction(ctx context.Context, account bank.AccountNumber, amount int64) (protocol.TransactionResult, error) {
	var result protocol.TransactionResult
	err := c.call(ctx, protocol.MakeTransaction{AccountNumber: account, Amount: amount}, &result)
	return result, err
}

func (c *Client) TransferAmount(ctx context.Context, request protocol.TransferAmount) (protocol.TransactionResult, error) {
	var result protocol.TransactionResult
	err := c.call(ctx, request, &result)
	return result, err
}

func (c *Client) GetDatabase(ctx context.Context) ([]bank.Profile, error) {
	var result protocol.DatabaseResult
	err := c.call(ctx, protocol.GetDatabase{}, &result)
	return result.Users, err
}

func (c *Client) CreateNewUser(ctx context.Context, request protocol.CreateNewUser) (bank.Profile, error) {
	var profile bank.Profile
	err := c.call(ctx, request, &profile)
	return profile, err
}

// DeleteUser removes an account and returns its final profile.
func (c *Client) DeleteUser(ctx context.Context, account bank.AccountNumber) (bank.Profile, error) {
	var profile bank.Profile
	err := c.call(ctx, protocol.DeleteUser{AccountNumber: account}, &profile)
	return profile, err
}

func (c *Client) UpdateUser(ctx context.Context, request protocol.UpdateUser) (bank.Profile, error) {
	var profile bank.Profile
	err := c.call(ctx, request, &profile)
	return profile, err
}

func (c *Client) UpdateEmail(ctx context.Context, account bank.AccountNumber, password, newEmail string) (bank.Profile, error) {
	var profile bank.Profile
	err := c.call(ctx, protocol.UpdateEmail{AccountNumber: account, Password: password, NewEmail: newEmail}, &profile)
	return profile, err
}

func (c *Client) UpdatePassword(ctx context.Context, account bank.AccountNumber, password, newPassword string) (bank.Profile, error) {
	var profile bank.Profile
	err := c.call(ctx, protocol.UpdatePassword{AccountNumber: account, Password: password, NewPassword: newPassword}, &profile)
	return profile, err
}
