//
// messages.go
//
// Copyright (c) 2024 Markku Rossi
//
// All rights reserved.
//

package protocol

import (
	"fmt"

	"github.com/GabrieleCastellani1/garbled-circuit-with-dynamic-dimension/ot"
)

// labelBitLen is the wire width of one serialized (label, external
// bit) pair: a 16-byte label plus a single byte carrying the bit.
const labelBitLen = 17

// packLabelBit serializes a (label, external bit) pair exactly as
// spec.md §4.E requires it to round-trip through OT.
func packLabelBit(label ot.Label, bit bool) []byte {
	var ld ot.LabelData
	label.GetData(&ld)

	buf := make([]byte, labelBitLen)
	copy(buf, ld[:])
	if bit {
		buf[16] = 1
	}
	return buf
}

// unpackLabelBit is the inverse of packLabelBit.
func unpackLabelBit(buf []byte) (ot.Label, bool, error) {
	if len(buf) != labelBitLen {
		return ot.Label{}, false, fmt.Errorf(
			"%w: malformed label/bit blob (%d bytes)", ErrProtocolViolation, len(buf))
	}
	var ld ot.LabelData
	copy(ld[:], buf[:16])
	var label ot.Label
	label.SetData(&ld)
	return label, buf[16] != 0, nil
}

// sendLabelBit sends one (label, external bit) pair over conn.
func sendLabelBit(conn ot.IO, label ot.Label, bit bool) error {
	return conn.SendData(packLabelBit(label, bit))
}

// receiveLabelBit receives one (label, external bit) pair from conn.
func receiveLabelBit(conn ot.IO) (ot.Label, bool, error) {
	buf, err := conn.ReceiveData()
	if err != nil {
		return ot.Label{}, false, err
	}
	return unpackLabelBit(buf)
}
