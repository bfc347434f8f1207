// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package service carries Teller's wire protocol over stream sockets.
//
// [Server] listens on TCP or a Unix socket and runs one goroutine per
// accepted connection. Each connection reads a length-prefixed frame,
// hands it to a [Dispatcher], writes the response frame and keeps the
// session the dispatcher returned for the next request. Requests on
// one connection are strictly sequential; connections run
// concurrently against the shared store. A frame that fails to decode
// is answered with a ParseError and the connection continues. Only
// transport errors end a connection: EOF, a reset, the idle timeout or
// a frame above the size limit.
//
// The server tracks live connections in a registry exposed through
// [Server.Connections]. Shutdown stops accepting, closes every live
// connection and waits for the connection goroutines to exit.
//
// [Client] is the persistent counterpart: one connection, one typed
// method per request kind, calls serialized by a mutex. Non-success
// responses are returned as *[ResponseError].
package service
