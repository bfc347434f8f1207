// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"fmt"

	"github.com/bureau-foundation/teller/lib/codec"
)

// requestEnvelope is the wire form of a request.
type requestEnvelope struct {
	Kind Kind             `cbor:"request"`
	Data codec.RawMessage `cbor:"data,omitempty"`
}

// ParseError describes a frame body that is not a valid request. Kind
// is the request kind when the envelope was readable, else KindUnknown.
type ParseError struct {
	Kind   Kind
	Reason string
}

func (e *ParseError) Error() string {
	if e.Kind == KindUnknown {
		return "parse error: " + e.Reason
	}
	return fmt.Sprintf("parse error in %s request: %s", e.Kind, e.Reason)
}

// EncodeRequest produces the frame body for request.
func EncodeRequest(request Request) ([]byte, error) {
	data, err := codec.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", request.Kind(), err)
	}
	body, err := codec.Marshal(requestEnvelope{Kind: request.Kind(), Data: data})
	if err != nil {
		return nil, fmt.Errorf("encoding %s envelope: %w", request.Kind(), err)
	}
	return body, nil
}

// DecodeRequest parses a frame body. Every failure is a *ParseError.
func DecodeRequest(body []byte) (Request, error) {
	var envelope requestEnvelope
	if err := codec.Unmarshal(body, &envelope); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("malformed envelope: %v", err)}
	}
	if !envelope.Kind.Known() {
		return nil, &ParseError{Reason: fmt.Sprintf("unknown request kind %d", int(envelope.Kind))}
	}

	var request Request
	var err error
	switch envelope.Kind {
	case KindLogin:
		request, err = decodePayload[Login](envelope.Data)
	case KindGetAccountNumber:
		request, err = decodePayload[GetAccountNumber](envelope.Data)
	case KindGetBalance:
		request, err = decodePayload[GetBalance](envelope.Data)
	case KindGetTransactionsHistory:
		request, err = decodePayload[GetTransactionsHistory](envelope.Data)
	case KindMakeTransaction:
		request, err = decodePayload[MakeTransaction](envelope.Data)
	case KindTransferAmount:
		request, err = decodePayload[TransferAmount](envelope.Data)
	case KindGetDatabase:
		request, err = decodePayload[GetDatabase](envelope.Data)
	case KindCreateNewUser:
		request, err = decodePayload[CreateNewUser](envelope.Data)
	case KindDeleteUser:
		request, err = decodePayload[DeleteUser](envelope.Data)
	case KindUpdateUser:
		request, err = decodePayload[UpdateUser](envelope.Data)
	case KindUserInit:
		request, err = decodePayload[UserInit](envelope.Data)
	case KindUpdateEmail:
		request, err = decodePayload[UpdateEmail](envelope.Data)
	case KindUpdatePassword:
		request, err = decodePayload[UpdatePassword](envelope.Data)
	case KindLogout:
		request, err = decodePayload[Logout](envelope.Data)
	default:
		panic(fmt.Sprintf("protocol: Known() accepted unhandled kind %d", int(envelope.Kind)))
	}
	if err != nil {
		return nil, &ParseError{Kind: envelope.Kind, Reason: fmt.Sprintf("malformed payload: %v", err)}
	}
	if request.Kind() == KindGetTransactionsHistory {
		if limit := request.(GetTransactionsHistory).Limit; limit < 0 {
			return nil, &ParseError{Kind: envelope.Kind, Reason: fmt.Sprintf("negative limit %d", limit)}
		}
	}
	return request, nil
}

// decodePayload decodes data into a T. Absent data decodes as the zero
// payload; field validation reports anything required but missing.
func decodePayload[T Request](data codec.RawMessage) (Request, error) {
	var payload T
	if len(data) == 0 {
		return payload, nil
	}
	if err := codec.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// EncodeResponse produces the frame body for response.
func EncodeResponse(response Response) ([]byte, error) {
	body, err := codec.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("encoding %s response: %w", response.Kind, err)
	}
	return body, nil
}

// DecodeResponse parses a response frame body.
func DecodeResponse(body []byte) (Response, error) {
	var response Response
	if err := codec.Unmarshal(body, &response); err != nil {
		return Response{}, fmt.Errorf("decoding response: %w", err)
	}
	return response, nil
}
