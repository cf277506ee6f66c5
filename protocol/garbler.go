//
// garbler.go
//
// Copyright (c) 2024 Markku Rossi
//
// All rights reserved.
//

package protocol

import (
	"bytes"
	"fmt"
	"io"
	"math/big"

	"github.com/GabrieleCastellani1/garbled-circuit-with-dynamic-dimension/circuit"
	"github.com/GabrieleCastellani1/garbled-circuit-with-dynamic-dimension/env"
	"github.com/GabrieleCastellani1/garbled-circuit-with-dynamic-dimension/ot"
	"github.com/GabrieleCastellani1/garbled-circuit-with-dynamic-dimension/p2p"
)

// Garbler drives the Garbler side of one session: a single circuit,
// single use. Reusing a Garbler after it reaches GarblerDone is a
// programming error and panics, matching the teacher's treatment of
// other "should never happen" invariants (e.g. circuit.Gate.Inputs's
// panic on an unrecognized Op).
type Garbler struct {
	conn   *p2p.Conn
	config *env.Config
	timing *circuit.Timing

	state GarblerState

	n, k int

	circ    *circuit.Circuit
	garbled *circuit.Garbled

	transcript *ot.Transcript
}

// SetTranscript enables a human-readable OT transcript, written to w
// one line per round during RunOTLoop (spec.md §6 "human-readable OT
// transcript (optional logging)").
func (g *Garbler) SetTranscript(w io.Writer) {
	g.transcript = ot.NewTranscript(w)
}

// NewGarbler creates a Garbler session over conn.
func NewGarbler(conn *p2p.Conn, config *env.Config) *Garbler {
	return &Garbler{
		conn:   conn,
		config: config,
		timing: circuit.NewTiming(),
		state:  GarblerInit,
	}
}

// Timing returns the session's phase timing report.
func (g *Garbler) Timing() *circuit.Timing {
	return g.timing
}

// Circuit returns the circuit built by SendCircuit, or nil before it
// has run.
func (g *Garbler) Circuit() *circuit.Circuit {
	return g.circ
}

func (g *Garbler) checkState(expected GarblerState) error {
	if g.state != expected {
		if g.state == GarblerDone {
			panic("protocol: Garbler session reused after DONE")
		}
		return fmt.Errorf("%w: expected state %s, got %s",
			ErrProtocolViolation, expected, g.state)
	}
	return nil
}

// Negotiate runs Phase 1: each party scales its local cardinality,
// the Garbler sends first, and both parties adopt the Evaluator's
// reply as the agreed (n, k).
func (g *Garbler) Negotiate(localN, localK int) (n, k int, err error) {
	if err = g.checkState(GarblerInit); err != nil {
		return 0, 0, err
	}

	scaled, err := scaleCardinality(g.config.GetRandom(), localN)
	if err != nil {
		return 0, 0, err
	}

	if err = g.conn.SendUint32(scaled); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if err = g.conn.SendUint32(localK); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if err = g.conn.Flush(); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	n, err = g.conn.ReceiveUint32()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	k, err = g.conn.ReceiveUint32()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	g.n, g.k = n, k
	g.state = GarblerNegotiated
	return n, k, nil
}

// SendCircuit runs Phase 3: build and garble the max circuit for the
// negotiated (n, k), transmit its topology, garbled tables, and output
// permutation bits, and wait for the Evaluator's acknowledgement.
func (g *Garbler) SendCircuit() error {
	if err := g.checkState(GarblerNegotiated); err != nil {
		return err
	}
	c, err := circuit.BuildMax(g.n, g.k)
	if err != nil {
		return err
	}
	garbled, err := c.Garble(g.config.GetRandom())
	if err != nil {
		return err
	}
	g.circ = c
	g.garbled = garbled
	g.timing.Sample("build+garble", nil)

	var buf bytes.Buffer
	if err := c.Marshal(&buf); err != nil {
		return err
	}
	if err := g.conn.SendData(buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	buf.Reset()
	if err := circuit.MarshalTables(garbled.Tables, &buf); err != nil {
		return err
	}
	if err := g.conn.SendData(buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	buf.Reset()
	if err := circuit.MarshalPbits(garbled.PbitsOut(c), &buf); err != nil {
		return err
	}
	if err := g.conn.SendData(buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if err := g.conn.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	ack, err := g.conn.ReceiveUint32()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if ack != 1 {
		return fmt.Errorf("%w: expected ack, got %d", ErrProtocolViolation, ack)
	}

	g.state = GarblerSentCircuit
	return nil
}

// SendInputs runs the Garbler-input half of Phase 4: the Garbler
// already knows its own bits and chose its own labels, so it sends
// every Alice wire's (label, external bit) pair directly, no OT
// needed.
func (g *Garbler) SendInputs(aliceBits *big.Int) error {
	if err := g.checkState(GarblerSentCircuit); err != nil {
		return err
	}

	size := g.circ.Alice.Size()
	if err := g.conn.SendUint32(size); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	for w := 0; w < size; w++ {
		bit := aliceBits.Bit(w) == 1
		label := circuit.LabelForBit(g.garbled.Wires[w], bit)
		ebit := bit != g.garbled.Pbits[w]
		if err := sendLabelBit(g.conn, label, ebit); err != nil {
			return fmt.Errorf("%w: %v", ErrTransport, err)
		}
	}
	if err := g.conn.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	g.state = GarblerSentInputs
	return nil
}

// RunOTLoop runs the Evaluator-input half of Phase 4: the Garbler
// plays the OT Sender role once per Evaluator (Bob) input wire, in
// the order the Evaluator requests them.
func (g *Garbler) RunOTLoop() error {
	if err := g.checkState(GarblerSentInputs); err != nil {
		return err
	}
	g.state = GarblerOTLoop

	var transfer ot.OT
	if g.config.IsOTEnabled() {
		impl := ot.NewGroupOT(g.config.GetRandom(), g.config.PrimeBitsOrDefault())
		impl.Transcript = g.transcript
		if err := impl.InitSender(g.conn); err != nil {
			return fmt.Errorf("%w: %v", ErrTransport, err)
		}
		transfer = impl
	}

	aliceSize := g.circ.Alice.Size()
	bobSize := g.circ.Bob.Size()

	for i := 0; i < bobSize; i++ {
		wireID, err := g.conn.ReceiveUint32()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTransport, err)
		}
		w := circuit.Wire(wireID)
		if int(w) < aliceSize || int(w) >= aliceSize+bobSize {
			return fmt.Errorf("%w: wire request %d out of range", ErrProtocolViolation, w)
		}

		pair := g.garbled.Wires[w]
		pbit := g.garbled.Pbits[w]
		m0 := packLabelBit(pair.L0, pbit)
		m1 := packLabelBit(pair.L1, !pbit)

		if g.config.IsOTEnabled() {
			if err := transfer.Send(m0, m1); err != nil {
				return fmt.Errorf("%w: %v", ErrTransport, err)
			}
		} else {
			if err := ot.SendCleartext(g.conn, m0, m1); err != nil {
				return fmt.Errorf("%w: %v", ErrTransport, err)
			}
		}
	}

	g.state = GarblerAwaitResult
	return nil
}

// AwaitResult runs Phase 5 from the Garbler's side: receive the
// Evaluator's result bits. The Garbler learns only these bits, never
// the Evaluator's intermediate labels.
func (g *Garbler) AwaitResult() ([]bool, error) {
	if err := g.checkState(GarblerAwaitResult); err != nil {
		return nil, err
	}

	buf, err := g.conn.ReceiveData()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	n := g.circ.Outputs.Size()
	if len(buf) != n {
		return nil, fmt.Errorf("%w: malformed result (%d bytes, expected %d)",
			ErrProtocolViolation, len(buf), n)
	}

	bits := make([]bool, n)
	for i, b := range buf {
		bits[i] = b != 0
	}

	g.state = GarblerDone
	return bits, nil
}
