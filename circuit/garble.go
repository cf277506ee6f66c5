//
// Copyright (c) 2019-2024 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"encoding/binary"
	"io"

	"golang.org/x/crypto/sha3"

	"github.com/GabrieleCastellani1/garbled-circuit-with-dynamic-dimension/ot"
)

// cipherLen is the width of one garbled-table plaintext: a 16-byte
// label plus a single byte carrying the output wire's external bit.
const cipherLen = 17

// kdf derives the key stream H(a[‖b]‖gate_id) with SHAKE-256,
// producing length bytes. b is nil for unary (NOT) gates.
func kdf(a ot.Label, b *ot.Label, gateID uint32, length int) []byte {
	h := sha3.NewShake256()

	var buf ot.LabelData
	a.GetData(&buf)
	h.Write(buf[:])

	if b != nil {
		b.GetData(&buf)
		h.Write(buf[:])
	}

	var idBuf [4]byte
	binary.BigEndian.PutUint32(idBuf[:], gateID)
	h.Write(idBuf[:])

	out := make([]byte, length)
	h.Read(out)
	return out
}

// encryptEntry encrypts the output (label, external bit) pair under
// the two input labels that select this garbled-table entry.
func encryptEntry(a ot.Label, b *ot.Label, gateID uint32, outLabel ot.Label,
	outBit bool) []byte {

	var buf ot.LabelData
	outLabel.GetData(&buf)

	plain := make([]byte, cipherLen)
	copy(plain, buf[:])
	if outBit {
		plain[16] = 1
	}

	mask := kdf(a, b, gateID, cipherLen)
	ct := make([]byte, cipherLen)
	for i := range plain {
		ct[i] = plain[i] ^ mask[i]
	}
	return ct
}

// decryptEntry recovers the (label, external bit) pair from a
// garbled-table entry.
func decryptEntry(a ot.Label, b *ot.Label, gateID uint32, ct []byte) (
	ot.Label, bool, error) {

	if len(ct) != cipherLen {
		return ot.Label{}, false, ErrGarbledTableCorrupt
	}

	mask := kdf(a, b, gateID, cipherLen)
	plain := make([]byte, cipherLen)
	for i := range ct {
		plain[i] = ct[i] ^ mask[i]
	}

	if plain[16] > 1 {
		return ot.Label{}, false, ErrGarbledTableCorrupt
	}

	var buf ot.LabelData
	copy(buf[:], plain[:16])
	var label ot.Label
	label.SetData(&buf)

	return label, plain[16] == 1, nil
}

func applyOp(op Operation, a, b bool) bool {
	switch op {
	case NOT:
		return !a
	case AND:
		return a && b
	case OR:
		return a || b
	case XNOR:
		return a == b
	default:
		return false
	}
}

func randBit(rnd io.Reader) (bool, error) {
	var buf [1]byte
	if _, err := io.ReadFull(rnd, buf[:]); err != nil {
		return false, err
	}
	return buf[0]&1 == 1, nil
}

// Garbled holds the result of garbling a circuit: per-wire label
// pairs, per-wire permutation bits, and per-gate garbled tables.
type Garbled struct {
	Wires  []ot.Wire
	Pbits  []bool
	Tables [][][]byte
}

// PbitsOut returns the permutation bits restricted to the circuit's
// output wires, in output order. These are the only permutation bits
// ever revealed to the Evaluator.
func (g *Garbled) PbitsOut(c *Circuit) []bool {
	n := c.Outputs.Size()
	out := make([]bool, n)
	base := c.NumWires - n
	for i := 0; i < n; i++ {
		out[i] = g.Pbits[base+i]
	}
	return out
}

// Garble garbles the circuit, sampling fresh label pairs and
// permutation bits for every wire and building one garbled table per
// gate.
func (c *Circuit) Garble(rnd io.Reader) (*Garbled, error) {
	wires := make([]ot.Wire, c.NumWires)
	pbits := make([]bool, c.NumWires)

	numInputs := c.Alice.Size() + c.Bob.Size()
	for i := 0; i < numInputs; i++ {
		w, err := newLabelPair(rnd)
		if err != nil {
			return nil, err
		}
		wires[i] = w

		pb, err := randBit(rnd)
		if err != nil {
			return nil, err
		}
		pbits[i] = pb
	}

	tables := make([][][]byte, c.NumGates)

	for i := range c.Gates {
		gate := &c.Gates[i]

		w, err := newLabelPair(rnd)
		if err != nil {
			return nil, err
		}
		wires[gate.Output] = w

		pb, err := randBit(rnd)
		if err != nil {
			return nil, err
		}
		pbits[gate.Output] = pb

		table, err := gate.garble(wires, pbits, uint32(i))
		if err != nil {
			return nil, err
		}
		tables[i] = table
	}

	return &Garbled{
		Wires:  wires,
		Pbits:  pbits,
		Tables: tables,
	}, nil
}

func newLabelPair(rnd io.Reader) (ot.Wire, error) {
	l0, err := ot.NewLabel(rnd)
	if err != nil {
		return ot.Wire{}, err
	}
	l1, err := ot.NewLabel(rnd)
	if err != nil {
		return ot.Wire{}, err
	}
	return ot.Wire{L0: l0, L1: l1}, nil
}

func labelFor(w ot.Wire, bit bool) ot.Label {
	if bit {
		return w.L1
	}
	return w.L0
}

// garble builds the garbled table for a single gate: 4 entries for a
// binary gate, 2 for NOT, indexed directly by the observed external
// input bits.
func (g *Gate) garble(wires []ot.Wire, pbits []bool, gateID uint32) (
	[][]byte, error) {

	outWire := wires[g.Output]
	outPbit := pbits[g.Output]

	if g.Op == NOT {
		aWire := wires[g.Input0]
		aPbit := pbits[g.Input0]

		table := make([][]byte, 2)
		for ea := 0; ea < 2; ea++ {
			eaBit := ea == 1
			va := eaBit != aPbit
			vout := applyOp(NOT, va, false)

			aLabel := labelFor(aWire, va)
			outLabel := labelFor(outWire, vout)
			outBit := vout != outPbit

			table[ea] = encryptEntry(aLabel, nil, gateID, outLabel, outBit)
		}
		return table, nil
	}

	aWire := wires[g.Input0]
	aPbit := pbits[g.Input0]
	bWire := wires[g.Input1]
	bPbit := pbits[g.Input1]

	table := make([][]byte, 4)
	for ea := 0; ea < 2; ea++ {
		for eb := 0; eb < 2; eb++ {
			eaBit := ea == 1
			ebBit := eb == 1

			va := eaBit != aPbit
			vb := ebBit != bPbit
			vout := applyOp(g.Op, va, vb)

			aLabel := labelFor(aWire, va)
			bLabel := labelFor(bWire, vb)
			outLabel := labelFor(outWire, vout)
			outBit := vout != outPbit

			idx := ea<<1 | eb
			table[idx] = encryptEntry(aLabel, &bLabel, gateID, outLabel, outBit)
		}
	}
	return table, nil
}
