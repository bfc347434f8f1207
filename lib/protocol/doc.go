// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package protocol defines Teller's wire format.
//
// A connection carries a sequence of frames in each direction. A frame
// is a 4-byte big-endian body length followed by the body: one CBOR
// map in Core Deterministic Encoding. The length prefix lets a server
// skip a body it cannot decode and keep the connection, which CBOR's
// self-delimiting encoding alone cannot do once the bytes are garbage.
//
// Request body:
//
//	{"request": <kind>, "data": {<payload fields>}}
//
// Response body:
//
//	{"response": <kind>, "status": <status>, "message": "...",
//	 "field": "...", "data": {<result fields>}}
//
// Kinds keep the numbering of the original Teller protocol so captured
// traffic stays readable. Each kind has one payload struct in this
// package; together they form the closed [Request] union, which
// [DecodeRequest] fills through an exhaustive switch on the kind.
//
// Responses to a frame whose kind could not be read carry kind 0.
// Only Success responses carry data.
package protocol
