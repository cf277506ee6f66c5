//
// negotiate.go
//
// Copyright (c) 2024 Markku Rossi
//
// All rights reserved.
//

package protocol

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// scaleCardinality multiplies n by a uniformly random factor in
// [1, n], obscuring the exact input-vector length from the peer
// during negotiation. This is the source's randomized cardinality
// scaling (spec.md §9), retained verbatim: it bounds the revealed
// magnitude class by n^2 rather than hiding it outright, but the spec
// explicitly permits keeping this behavior for compatibility.
func scaleCardinality(rnd io.Reader, n int) (int, error) {
	if n < 1 {
		return 0, fmt.Errorf("%w: empty input vector", ErrInput)
	}
	factor, err := rand.Int(rnd, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return n * (int(factor.Int64()) + 1), nil
}

// PadAndPermute extends inputs to length n with zero padding, then
// applies a uniformly random Fisher-Yates permutation. Zero is a
// neutral element for max on non-negative integers, so neither step
// changes the result (spec.md §8 "Padding neutrality").
func PadAndPermute(rnd io.Reader, inputs []uint64, n int) ([]uint64, error) {
	if n < len(inputs) {
		return nil, fmt.Errorf("%w: target length %d shorter than input length %d",
			ErrInput, n, len(inputs))
	}

	padded := make([]uint64, n)
	copy(padded, inputs)

	for i := n - 1; i > 0; i-- {
		jBig, err := rand.Int(rnd, big.NewInt(int64(i+1)))
		if err != nil {
			return nil, err
		}
		j := int(jBig.Int64())
		padded[i], padded[j] = padded[j], padded[i]
	}
	return padded, nil
}
