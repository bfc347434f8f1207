// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/bureau-foundation/teller/lib/clock"
	"github.com/bureau-foundation/teller/lib/dispatch"
	"github.com/bureau-foundation/teller/lib/protocol"
)

// Dispatcher turns one request frame into a response and the session
// for the connection's next request. *dispatch.Dispatcher implements
// it.
type Dispatcher interface {
	Dispatch(ctx context.Context, frame []byte, session dispatch.Session) (protocol.Response, dispatch.Session)
}

const (
	// DefaultIdleTimeout closes a connection that sends nothing for
	// this long.
	DefaultIdleTimeout = 5 * time.Minute

	// DefaultWriteTimeout bounds writing one response.
	DefaultWriteTimeout = 10 * time.Second
)

// Config configures a Server. Network is "tcp" or "unix".
type Config struct {
	Network    string
	Address    string
	Dispatcher Dispatcher
	Logger     *slog.Logger
	Clock      clock.Clock

	// MaxFrameSize bounds a request body. Zero means
	// protocol.DefaultMaxFrameSize.
	MaxFrameSize int

	// IdleTimeout and WriteTimeout default when zero. A negative
	// IdleTimeout disables it.
	IdleTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server accepts connections and runs a request loop on each.
type Server struct {
	network      string
	address      string
	dispatcher   Dispatcher
	logger       *slog.Logger
	maxFrameSize int
	idleTimeout  time.Duration
	writeTimeout time.Duration

	registry *registry

	ready    chan struct{}
	listener net.Listener

	// activeConnections tracks connection goroutines so Serve can wait
	// for them before returning.
	activeConnections sync.WaitGroup
}

// NewServer validates cfg and returns a Server. Call Serve to start
// listening.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Network != "tcp" && cfg.Network != "unix" {
		return nil, fmt.Errorf("service: network must be tcp or unix, got %q", cfg.Network)
	}
	if cfg.Address == "" {
		return nil, errors.New("service: Address is required")
	}
	if cfg.Dispatcher == nil {
		return nil, errors.New("service: Dispatcher is required")
	}
	if cfg.MaxFrameSize < 0 {
		return nil, fmt.Errorf("service: negative MaxFrameSize %d", cfg.MaxFrameSize)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	maxFrameSize := cfg.MaxFrameSize
	if maxFrameSize == 0 {
		maxFrameSize = protocol.DefaultMaxFrameSize
	}
	idleTimeout := cfg.IdleTimeout
	if idleTimeout == 0 {
		idleTimeout = DefaultIdleTimeout
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &Server{
		network:      cfg.Network,
		address:      cfg.Address,
		dispatcher:   cfg.Dispatcher,
		logger:       logger,
		maxFrameSize: maxFrameSize,
		idleTimeout:  idleTimeout,
		writeTimeout: writeTimeout,
		registry:     newRegistry(clk),
		ready:        make(chan struct{}),
	}, nil
}

// Ready is closed once the server is listening.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Addr returns the listening address. It is valid after Ready closes.
func (s *Server) Addr() net.Addr {
	<-s.ready
	return s.listener.Addr()
}

// Connections returns the live connections ordered by ID.
func (s *Server) Connections() []ConnectionInfo { return s.registry.list() }

// Serve listens and accepts connections until ctx is cancelled. It
// then stops accepting, closes every live connection and waits for the
// connection goroutines to exit.
//
// For Unix sockets a stale socket file is removed before listening and
// the socket file is removed on return.
func (s *Server) Serve(ctx context.Context) error {
	if s.network == "unix" {
		if err := os.Remove(s.address); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing stale socket %s: %w", s.address, err)
		}
	}

	listener, err := net.Listen(s.network, s.address)
	if err != nil {
		return fmt.Errorf("listening on %s %s: %w", s.network, s.address, err)
	}
	defer func() {
		listener.Close()
		if s.network == "unix" {
			os.Remove(s.address)
		}
	}()
	s.listener = listener
	close(s.ready)

	// Unblock Accept when the context is cancelled.
	stop := context.AfterFunc(ctx, func() { listener.Close() })
	defer stop()

	s.logger.Info("teller server listening",
		"network", s.network,
		"address", listener.Addr().String(),
		"max_frame_bytes", s.maxFrameSize,
	)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		id, ok := s.registry.open(conn)
		if !ok {
			conn.Close()
			continue
		}
		s.activeConnections.Add(1)
		go func() {
			defer s.activeConnections.Done()
			s.handleConnection(ctx, id, conn)
		}()
	}

	s.registry.shutdown()
	s.activeConnections.Wait()
	s.logger.Info("teller server stopped", "address", listener.Addr().String())
	return nil
}
