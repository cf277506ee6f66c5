//
// group_test.go
//
// Copyright (c) 2024 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"crypto/rand"
	"math/big"
	"testing"
)

func TestGroupGenerator(t *testing.T) {
	for i := 0; i < 5; i++ {
		grp, err := NewGroup(rand.Reader, 16)
		if err != nil {
			t.Fatalf("NewGroup: %v", err)
		}

		pMinus1 := new(big.Int).Sub(grp.P, one)
		if new(big.Int).Exp(grp.G, pMinus1, grp.P).Cmp(one) != 0 {
			t.Fatalf("g^(p-1) != 1 mod p")
		}

		for _, q := range factor(pMinus1) {
			e := new(big.Int).Div(pMinus1, q)
			if new(big.Int).Exp(grp.G, e, grp.P).Cmp(one) == 0 {
				t.Fatalf("g is not a generator: fails on factor %v", q)
			}
		}
	}
}

func TestGroupInverse(t *testing.T) {
	grp, err := NewGroup(rand.Reader, 24)
	if err != nil {
		t.Fatalf("NewGroup: %v", err)
	}

	x, err := grp.RandInt(rand.Reader)
	if err != nil {
		t.Fatalf("RandInt: %v", err)
	}

	inv := grp.Inv(x)
	if grp.Mul(x, inv).Cmp(one) != 0 {
		t.Fatalf("inv(x)*x != 1")
	}
}

func TestGroupPow(t *testing.T) {
	grp, err := NewGroup(rand.Reader, 24)
	if err != nil {
		t.Fatalf("NewGroup: %v", err)
	}

	a, err := grp.RandInt(rand.Reader)
	if err != nil {
		t.Fatalf("RandInt: %v", err)
	}
	if grp.GenPow(a).Cmp(grp.Pow(grp.G, a)) != 0 {
		t.Fatalf("GenPow != Pow(G, .)")
	}
}
