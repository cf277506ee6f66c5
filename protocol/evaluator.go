//
// evaluator.go
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

// Evaluator drives the Evaluator side of one session, symmetric with
// Garbler: single circuit, single use. Reusing an Evaluator after it
// reaches EvaluatorDone is a programming error and panics.
type Evaluator struct {
	conn   *p2p.Conn
	config *env.Config
	timing *circuit.Timing

	state EvaluatorState

	n, k int

	circ     *circuit.Circuit
	tables   [][][]byte
	pbitsOut []bool

	labels []ot.Label
	ebits  []bool

	transcript *ot.Transcript
}

// SetTranscript enables a human-readable OT transcript, written to w
// one line per round during RunOTLoop (spec.md §6 "human-readable OT
// transcript (optional logging)").
func (e *Evaluator) SetTranscript(w io.Writer) {
	e.transcript = ot.NewTranscript(w)
}

// NewEvaluator creates an Evaluator session over conn.
func NewEvaluator(conn *p2p.Conn, config *env.Config) *Evaluator {
	return &Evaluator{
		conn:   conn,
		config: config,
		timing: circuit.NewTiming(),
		state:  EvaluatorListening,
	}
}

// Timing returns the session's phase timing report.
func (e *Evaluator) Timing() *circuit.Timing {
	return e.timing
}

func (e *Evaluator) checkState(expected EvaluatorState) error {
	if e.state != expected {
		if e.state == EvaluatorDone {
			panic("protocol: Evaluator session reused after DONE")
		}
		return fmt.Errorf("%w: expected state %s, got %s",
			ErrProtocolViolation, expected, e.state)
	}
	return nil
}

// Negotiate runs Phase 1 from the Evaluator's side: receive the
// Garbler's scaled cardinality and bit width, combine them with the
// Evaluator's own scaled local values, and reply with the agreed
// (n, k).
func (e *Evaluator) Negotiate(localN, localK int) (n, k int, err error) {
	if err = e.checkState(EvaluatorListening); err != nil {
		return 0, 0, err
	}

	nA, err := e.conn.ReceiveUint32()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	kA, err := e.conn.ReceiveUint32()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	scaled, err := scaleCardinality(e.config.GetRandom(), localN)
	if err != nil {
		return 0, 0, err
	}

	n = nA
	if scaled > n {
		n = scaled
	}
	k = kA
	if localK > k {
		k = localK
	}

	if err = e.conn.SendUint32(n); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if err = e.conn.SendUint32(k); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if err = e.conn.Flush(); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	e.n, e.k = n, k
	e.state = EvaluatorNegotiated
	return n, k, nil
}

// ReceiveCircuit runs Phase 3 from the Evaluator's side: receive the
// circuit topology, garbled tables, and output permutation bits,
// re-verify the circuit's topological-order invariant (defense against
// a corrupted transmission), and acknowledge.
func (e *Evaluator) ReceiveCircuit() error {
	if err := e.checkState(EvaluatorNegotiated); err != nil {
		return err
	}

	cBytes, err := e.conn.ReceiveData()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	c, err := circuit.Unmarshal(bytes.NewReader(cBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProtocolViolation, err)
	}

	tBytes, err := e.conn.ReceiveData()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	tables, err := circuit.UnmarshalTables(bytes.NewReader(tBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProtocolViolation, err)
	}

	pBytes, err := e.conn.ReceiveData()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	pbitsOut, err := circuit.UnmarshalPbits(bytes.NewReader(pBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProtocolViolation, err)
	}

	if err := validateTopology(c); err != nil {
		return err
	}
	if len(tables) != c.NumGates {
		return fmt.Errorf("%w: %d tables for %d gates",
			ErrProtocolViolation, len(tables), c.NumGates)
	}
	if len(pbitsOut) != c.Outputs.Size() {
		return fmt.Errorf("%w: %d output pbits for %d output wires",
			ErrProtocolViolation, len(pbitsOut), c.Outputs.Size())
	}

	e.circ = c
	e.tables = tables
	e.pbitsOut = pbitsOut
	e.labels = make([]ot.Label, c.NumWires)
	e.ebits = make([]bool, c.NumWires)

	if err := e.conn.SendUint32(1); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if err := e.conn.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	e.state = EvaluatorReceivedCircuit
	return nil
}

// validateTopology re-checks spec.md §8's "Circuit topological
// validity" invariant on a circuit received over the wire: every
// gate's input wire is either a party-input wire or strictly earlier
// than the gate's own output wire.
func validateTopology(c *circuit.Circuit) error {
	numInputs := circuit.Wire(c.Alice.Size() + c.Bob.Size())
	for _, g := range c.Gates {
		for _, w := range g.Inputs() {
			if w >= numInputs && w >= g.Output {
				return fmt.Errorf("%w: gate %v input %v not earlier than gate output",
					ErrProtocolViolation, g, w)
			}
		}
	}
	return nil
}

// ReceiveGarblerInputs runs the Garbler-input half of Phase 4: the
// Garbler sends its own wires' (label, external bit) pairs directly.
func (e *Evaluator) ReceiveGarblerInputs() error {
	if err := e.checkState(EvaluatorReceivedCircuit); err != nil {
		return err
	}

	size, err := e.conn.ReceiveUint32()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if size != e.circ.Alice.Size() {
		return fmt.Errorf("%w: got %d Garbler inputs, expected %d",
			ErrProtocolViolation, size, e.circ.Alice.Size())
	}

	for w := 0; w < size; w++ {
		label, ebit, err := receiveLabelBit(e.conn)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTransport, err)
		}
		e.labels[w] = label
		e.ebits[w] = ebit
	}

	e.state = EvaluatorReceivedAInputs
	return nil
}

// RunOTLoop runs the Evaluator-input half of Phase 4: for every Bob
// input wire, request it by id and play the OT Chooser role, selected
// by the corresponding bit of bobInput.
func (e *Evaluator) RunOTLoop(bobInput *big.Int) error {
	if err := e.checkState(EvaluatorReceivedAInputs); err != nil {
		return err
	}
	e.state = EvaluatorOTLoop

	var transfer ot.OT
	if e.config.IsOTEnabled() {
		impl := ot.NewGroupOT(e.config.GetRandom(), e.config.PrimeBitsOrDefault())
		impl.Transcript = e.transcript
		if err := impl.InitReceiver(e.conn); err != nil {
			return fmt.Errorf("%w: %v", ErrTransport, err)
		}
		transfer = impl
	}

	aliceSize := e.circ.Alice.Size()
	bobSize := e.circ.Bob.Size()

	for j := 0; j < bobSize; j++ {
		w := aliceSize + j
		if err := e.conn.SendUint32(w); err != nil {
			return fmt.Errorf("%w: %v", ErrTransport, err)
		}
		if err := e.conn.Flush(); err != nil {
			return fmt.Errorf("%w: %v", ErrTransport, err)
		}

		bit := bobInput.Bit(j) == 1

		var raw []byte
		var err error
		if e.config.IsOTEnabled() {
			raw, err = transfer.Receive(bit)
		} else {
			raw, err = ot.ReceiveCleartext(e.conn, bit)
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTransport, err)
		}

		label, ebit, err := unpackLabelBit(raw)
		if err != nil {
			return err
		}
		e.labels[w] = label
		e.ebits[w] = ebit
	}

	return nil
}

// EvaluateAndSendResult runs Phase 5 from the Evaluator's side:
// evaluate the garbled circuit locally and send the result bits back
// to the Garbler.
func (e *Evaluator) EvaluateAndSendResult() ([]bool, error) {
	if err := e.checkState(EvaluatorOTLoop); err != nil {
		return nil, err
	}

	result, err := e.circ.Eval(e.tables, e.pbitsOut, e.labels, e.ebits)
	if err != nil {
		return nil, err
	}
	e.timing.Sample("evaluate", nil)

	buf := make([]byte, len(result))
	for i, b := range result {
		if b {
			buf[i] = 1
		}
	}
	if err := e.conn.SendData(buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if err := e.conn.Flush(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	e.state = EvaluatorDone
	return result, nil
}
