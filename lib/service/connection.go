// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/bureau-foundation/teller/lib/dispatch"
	"github.com/bureau-foundation/teller/lib/protocol"
)

// handleConnection runs the request loop for one connection until a
// transport error ends it. Responses are held to the same frame limit
// as requests; one that would exceed it is replaced by a Failure.
func (s *Server) handleConnection(ctx context.Context, id uint64, conn net.Conn) {
	defer conn.Close()

	logger := s.logger.With("connection", id, "remote", remoteAddress(conn))
	logger.Info("connection opened")

	// In-flight requests are not cancelled by shutdown; closing the
	// connection is what ends them.
	requestContext := context.WithoutCancel(ctx)

	reader := bufio.NewReader(conn)
	var session dispatch.Session
	var reason string
	for {
		if s.idleTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(s.idleTimeout))
		}
		frame, err := protocol.ReadFrame(reader, s.maxFrameSize)
		if err != nil {
			reason = closeReason(err)
			break
		}

		response, next := s.dispatcher.Dispatch(requestContext, frame, session)
		if next != session {
			logger.Info("session changed", "state", next.State, "account", next.Account)
		}
		session = next
		s.registry.record(id, session)

		body, err := protocol.EncodeResponse(response)
		if err != nil {
			logger.Error("encoding response failed", "kind", response.Kind, "error", err)
			reason = "encoding failure"
			break
		}
		if len(body) > s.maxFrameSize {
			logger.Warn("response exceeds frame limit",
				"kind", response.Kind,
				"bytes", len(body),
				"limit", s.maxFrameSize,
			)
			body, err = protocol.EncodeResponse(protocol.Failure(response.Kind, dispatch.MessageResponseTooLarge))
			if err != nil {
				logger.Error("encoding response failed", "kind", response.Kind, "error", err)
				reason = "encoding failure"
				break
			}
		}
		conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
		if err := protocol.WriteFrame(conn, body); err != nil {
			reason = closeReason(err)
			break
		}
	}

	final := s.registry.close(id)
	logger.Info("connection closed",
		"reason", reason,
		"requests", final.Requests,
		"account", final.Account,
	)
}

// closeReason names the transport error that ended a connection.
func closeReason(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, io.EOF):
		return "client closed"
	case errors.Is(err, io.ErrUnexpectedEOF):
		return "truncated frame"
	case errors.Is(err, protocol.ErrFrameTooLarge):
		return "oversized frame"
	case errors.Is(err, net.ErrClosed):
		return "server shutdown"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	}
	return err.Error()
}
