//
// group.go
//
// Copyright (c) 2019-2024 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// Group implements the cyclic group (Z/pZ)* for a prime P, used as the
// cryptographic setting for oblivious transfer. P is prime and G
// generates the full multiplicative group of order P-1.
type Group struct {
	P *big.Int
	G *big.Int
}

// NewGroup generates a new prime-order group with a prime of the
// given bit size. Generator discovery factors P-1 by trial division
// and samples candidates until one satisfies the generator test
// against every factor found.
func NewGroup(rnd io.Reader, bits int) (*Group, error) {
	p, err := rand.Prime(rnd, bits)
	if err != nil {
		return nil, err
	}
	pMinus1 := new(big.Int).Sub(p, one)

	factors := factor(pMinus1)

	g, err := findGenerator(rnd, p, pMinus1, factors)
	if err != nil {
		return nil, err
	}

	return &Group{
		P: p,
		G: g,
	}, nil
}

// factor returns the distinct prime factors of n by trial division.
// Any cofactor left over after the trial-division bound is treated
// as prime; this is sufficient for the generator test, which only
// needs the set of primes dividing n, not a full certified
// factorization.
func factor(n *big.Int) []*big.Int {
	var factors []*big.Int

	rem := new(big.Int).Set(n)

	d := new(big.Int).Set(two)
	for {
		if new(big.Int).Mul(d, d).Cmp(rem) > 0 {
			break
		}
		mod := new(big.Int)
		q, m := new(big.Int).DivMod(rem, d, mod)
		if m.Sign() == 0 {
			factors = append(factors, new(big.Int).Set(d))
			for m.Sign() == 0 {
				rem = q
				q, m = new(big.Int).DivMod(rem, d, new(big.Int))
			}
		}
		d.Add(d, one)
	}
	if rem.Cmp(one) > 0 {
		factors = append(factors, rem)
	}
	return factors
}

// findGenerator samples candidates in [2, p-1] until one satisfies
// c^((p-1)/q) != 1 mod p for every prime factor q of p-1.
func findGenerator(rnd io.Reader, p, pMinus1 *big.Int, factors []*big.Int) (
	*big.Int, error) {

	const maxCandidates = 1 << 16

	for i := 0; i < maxCandidates; i++ {
		c, err := rand.Int(rnd, new(big.Int).Sub(p, two))
		if err != nil {
			return nil, err
		}
		c.Add(c, two)

		if isGenerator(c, p, pMinus1, factors) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: generator not found within candidate budget",
		ErrGroupError)
}

func isGenerator(c, p, pMinus1 *big.Int, factors []*big.Int) bool {
	for _, q := range factors {
		e := new(big.Int).Div(pMinus1, q)
		if new(big.Int).Exp(c, e, p).Cmp(one) == 0 {
			return false
		}
	}
	return true
}

// RandInt returns a uniformly random exponent in [1, P-1].
func (grp *Group) RandInt(rnd io.Reader) (*big.Int, error) {
	pMinus1 := new(big.Int).Sub(grp.P, one)
	x, err := rand.Int(rnd, pMinus1)
	if err != nil {
		return nil, err
	}
	x.Add(x, one)
	return x, nil
}

// Mul computes a*b mod P.
func (grp *Group) Mul(a, b *big.Int) *big.Int {
	r := new(big.Int).Mul(a, b)
	return r.Mod(r, grp.P)
}

// Pow computes x^e mod P.
func (grp *Group) Pow(x, e *big.Int) *big.Int {
	return new(big.Int).Exp(x, e, grp.P)
}

// GenPow computes g^e mod P.
func (grp *Group) GenPow(e *big.Int) *big.Int {
	return grp.Pow(grp.G, e)
}

// Inv computes the Fermat inverse x^(P-2) mod P.
func (grp *Group) Inv(x *big.Int) *big.Int {
	e := new(big.Int).Sub(grp.P, two)
	return grp.Pow(x, e)
}

// ByteLen returns the number of bytes required to serialize a group
// element.
func (grp *Group) ByteLen() int {
	return (grp.P.BitLen() + 7) / 8
}
