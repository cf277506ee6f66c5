//
// ot.go
//
// Copyright (c) 2023-2024 Markku Rossi
//
// All rights reserved.

// Package ot implements the prime-order-group oblivious transfer
// protocol used to hand the Evaluator one of two wire labels without
// revealing its selection bit to the Garbler.
package ot

// OT defines the base 1-out-of-2 oblivious transfer protocol, driven
// one wire at a time by the caller. The sender uses Send to transfer
// a pair of messages; the receiver calls Receive with its selection
// bit and obtains exactly one of them. The higher level protocol
// invokes InitSender/InitReceiver once per session and Send/Receive
// once per wire.
type OT interface {
	// InitSender initializes the OT sender, establishing the shared
	// group over io.
	InitSender(io IO) error

	// InitReceiver initializes the OT receiver, establishing the
	// shared group over io.
	InitReceiver(io IO) error

	// Send transfers m0 or m1 to the receiver without learning which
	// one was selected.
	Send(m0, m1 []byte) error

	// Receive receives m0 or m1, selected by bit, without revealing
	// bit to the sender.
	Receive(bit bool) ([]byte, error)
}
