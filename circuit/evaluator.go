//
// evaluator.go
//
// Copyright (c) 2019-2024 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"github.com/GabrieleCastellani1/garbled-circuit-with-dynamic-dimension/ot"
)

// Eval evaluates a garbled circuit in topological order. labels and
// ebits must be pre-populated for every party-input wire (indices
// [0, c.Alice.Size()+c.Bob.Size())) with the (label, external bit)
// pair the caller holds for that wire; the function fills in the
// remaining entries as it evaluates gates. pbitsOut are the
// permutation bits restricted to the output wires, in output order
// (see Garbled.PbitsOut). The returned slice holds the semantic
// output bits, MSB-first, matching c.Outputs.
func (c *Circuit) Eval(tables [][][]byte, pbitsOut []bool, labels []ot.Label,
	ebits []bool) ([]bool, error) {

	for i := range c.Gates {
		gate := &c.Gates[i]

		if gate.Op == NOT {
			a := labels[gate.Input0]
			idx := 0
			if ebits[gate.Input0] {
				idx = 1
			}

			outLabel, outBit, err := decryptEntry(a, nil, uint32(i),
				tables[i][idx])
			if err != nil {
				return nil, err
			}
			labels[gate.Output] = outLabel
			ebits[gate.Output] = outBit
			continue
		}

		a := labels[gate.Input0]
		b := labels[gate.Input1]

		idx := 0
		if ebits[gate.Input0] {
			idx |= 2
		}
		if ebits[gate.Input1] {
			idx |= 1
		}

		outLabel, outBit, err := decryptEntry(a, &b, uint32(i), tables[i][idx])
		if err != nil {
			return nil, err
		}
		labels[gate.Output] = outLabel
		ebits[gate.Output] = outBit
	}

	n := c.Outputs.Size()
	base := c.NumWires - n

	result := make([]bool, n)
	for i := 0; i < n; i++ {
		result[i] = ebits[base+i] != pbitsOut[i]
	}
	return result, nil
}
