//
// Copyright (c) 2019-2024 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"fmt"
	"math/big"
	"strings"
)

// Parse parses one decimal, hex ("0x...") or boolean token into its
// bit-vector value.
func (io IOArg) Parse(input string) (*big.Int, error) {
	result := new(big.Int)

	switch input {
	case "0", "f", "false":
		return result, nil
	case "1", "t", "true":
		return result.SetInt64(1), nil
	}

	_, ok := result.SetString(input, 0)
	if !ok {
		return nil, fmt.Errorf("invalid input '%s' for %s", input, io)
	}
	return result, nil
}

// PackInts packs a list of k-bit values into one bit-vector,
// placing each value's k bits MSB-first and concatenating values in
// order — the layout BuildMax assigns to one party's input wires.
func PackInts(vals []uint64, k int) *big.Int {
	result := new(big.Int)
	for i, v := range vals {
		for j := 0; j < k; j++ {
			bitPos := uint(k - 1 - j)
			if (v>>bitPos)&1 == 1 {
				result.SetBit(result, i*k+j, 1)
			}
		}
	}
	return result
}

// UnpackBits reassembles a slice of MSB-first output bits into an
// unsigned integer.
func UnpackBits(bits []bool) uint64 {
	var out uint64
	for _, b := range bits {
		out <<= 1
		if b {
			out |= 1
		}
	}
	return out
}

// InputSizes infers the bit width of each whitespace-separated input
// token: 1 bit for boolean literals, 4 bits per hex digit for "0x..."
// tokens, and the value's bit length otherwise.
func InputSizes(inputs []string) ([]int, error) {
	var result []int

	for _, input := range inputs {
		switch input {
		case "_":
			result = append(result, 0)

		case "0", "f", "false", "1", "t", "true":
			result = append(result, 1)

		default:
			if strings.HasPrefix(input, "0x") {
				result = append(result, (len(input)-2)*4)
			} else {
				val := new(big.Int)
				_, ok := val.SetString(input, 0)
				if !ok {
					return nil, fmt.Errorf("invalid input: %s", input)
				}
				result = append(result, val.BitLen())
			}
		}
	}

	return result, nil
}
