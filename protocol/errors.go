//
// errors.go
//
// Copyright (c) 2024 Markku Rossi
//
// All rights reserved.
//

// Package protocol implements the Garbler and Evaluator session state
// machines that orchestrate length negotiation, circuit transmission,
// per-wire oblivious transfer, and result return.
package protocol

import "errors"

var (
	// ErrTransport indicates a connection failure or a malformed
	// message at the transport level.
	ErrTransport = errors.New("protocol: transport error")

	// ErrProtocolViolation indicates a message that is well-formed at
	// the transport level but unexpected for the session's current
	// state.
	ErrProtocolViolation = errors.New("protocol: protocol violation")

	// ErrInput indicates an invalid input: an empty input vector, a
	// non-integer token, or a negative integer.
	ErrInput = errors.New("protocol: invalid input")
)
