//
// protocol_test.go
//
// Copyright (c) 2024 Markku Rossi
//
// All rights reserved.
//

package protocol

import (
	"crypto/rand"
	"errors"
	"math/big"
	"math/bits"
	"testing"

	"github.com/GabrieleCastellani1/garbled-circuit-with-dynamic-dimension/circuit"
	"github.com/GabrieleCastellani1/garbled-circuit-with-dynamic-dimension/env"
	"github.com/GabrieleCastellani1/garbled-circuit-with-dynamic-dimension/p2p"
)

func bitLen(vals []uint64) int {
	var maxV uint64
	for _, v := range vals {
		if v > maxV {
			maxV = v
		}
	}
	k := bits.Len64(maxV)
	if k == 0 {
		k = 1
	}
	return k
}

type sessionResult struct {
	bits []bool
	err  error
}

// runSession drives a full Garbler/Evaluator session over an
// in-memory pipe and returns both parties' recovered result bits.
func runSession(aliceVals, bobVals []uint64, cfg *env.Config) (garbler, evaluator sessionResult) {
	connA, connB := p2p.Pipe()

	gCh := make(chan sessionResult, 1)
	eCh := make(chan sessionResult, 1)

	go func() {
		g := NewGarbler(connA, cfg)
		n, k, err := g.Negotiate(len(aliceVals), bitLen(aliceVals))
		if err != nil {
			gCh <- sessionResult{nil, err}
			return
		}
		padded, err := PadAndPermute(cfg.GetRandom(), aliceVals, n)
		if err != nil {
			gCh <- sessionResult{nil, err}
			return
		}
		if err := g.SendCircuit(); err != nil {
			gCh <- sessionResult{nil, err}
			return
		}
		if err := g.SendInputs(circuit.PackInts(padded, k)); err != nil {
			gCh <- sessionResult{nil, err}
			return
		}
		if err := g.RunOTLoop(); err != nil {
			gCh <- sessionResult{nil, err}
			return
		}
		bits, err := g.AwaitResult()
		gCh <- sessionResult{bits, err}
	}()

	go func() {
		e := NewEvaluator(connB, cfg)
		n, k, err := e.Negotiate(len(bobVals), bitLen(bobVals))
		if err != nil {
			eCh <- sessionResult{nil, err}
			return
		}
		padded, err := PadAndPermute(cfg.GetRandom(), bobVals, n)
		if err != nil {
			eCh <- sessionResult{nil, err}
			return
		}
		if err := e.ReceiveCircuit(); err != nil {
			eCh <- sessionResult{nil, err}
			return
		}
		if err := e.ReceiveGarblerInputs(); err != nil {
			eCh <- sessionResult{nil, err}
			return
		}
		if err := e.RunOTLoop(circuit.PackInts(padded, k)); err != nil {
			eCh <- sessionResult{nil, err}
			return
		}
		bits, err := e.EvaluateAndSendResult()
		eCh <- sessionResult{bits, err}
	}()

	return <-gCh, <-eCh
}

func TestProtocolScenarios(t *testing.T) {
	tests := []struct {
		name     string
		alice    []uint64
		bob      []uint64
		expected uint64
	}{
		{"scenario1", []uint64{3}, []uint64{5}, 5},
		{"scenario2", []uint64{7, 2}, []uint64{1, 4}, 7},
		{"scenario3", []uint64{0}, []uint64{0}, 0},
		{"scenario4", []uint64{15, 15}, []uint64{15}, 15},
		{"scenario5", []uint64{8}, []uint64{9}, 9},
		{"scenario6", []uint64{1, 2, 3}, []uint64{4, 5, 6}, 6},
	}

	cfg := &env.Config{Rand: rand.Reader, PrimeBits: 32}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			gRes, eRes := runSession(test.alice, test.bob, cfg)
			if gRes.err != nil {
				t.Fatalf("garbler: %v", gRes.err)
			}
			if eRes.err != nil {
				t.Fatalf("evaluator: %v", eRes.err)
			}

			if got := circuit.UnpackBits(gRes.bits); got != test.expected {
				t.Errorf("garbler result: got %d, expected %d", got, test.expected)
			}
			if got := circuit.UnpackBits(eRes.bits); got != test.expected {
				t.Errorf("evaluator result: got %d, expected %d", got, test.expected)
			}
		})
	}
}

// TestProtocolOTBypassAgreement checks spec.md §8's "OT: bypass-mode
// and full-mode yield the same result" at the full-session level.
func TestProtocolOTBypassAgreement(t *testing.T) {
	alice := []uint64{8}
	bob := []uint64{9}

	full := &env.Config{Rand: rand.Reader, PrimeBits: 32}
	gFull, eFull := runSession(alice, bob, full)
	if gFull.err != nil || eFull.err != nil {
		t.Fatalf("full OT session failed: garbler=%v evaluator=%v", gFull.err, eFull.err)
	}

	bypass := &env.Config{Rand: rand.Reader, OTBypass: true}
	gBypass, eBypass := runSession(alice, bob, bypass)
	if gBypass.err != nil || eBypass.err != nil {
		t.Fatalf("bypass OT session failed: garbler=%v evaluator=%v", gBypass.err, eBypass.err)
	}

	wantFull := circuit.UnpackBits(gFull.bits)
	wantBypass := circuit.UnpackBits(gBypass.bits)
	if wantFull != wantBypass {
		t.Fatalf("full-mode result %d disagrees with bypass-mode result %d",
			wantFull, wantBypass)
	}
	if wantFull != 9 {
		t.Fatalf("got %d, expected 9", wantFull)
	}
}

// TestProtocolStateViolation checks that calling a phase method out of
// order is rejected with ErrProtocolViolation rather than silently
// misbehaving.
func TestProtocolStateViolation(t *testing.T) {
	connA, _ := p2p.Pipe()
	cfg := &env.Config{Rand: rand.Reader}
	g := NewGarbler(connA, cfg)

	err := g.SendInputs(big.NewInt(0))
	if !errors.Is(err, ErrProtocolViolation) {
		t.Fatalf("expected ErrProtocolViolation calling SendInputs before Negotiate/SendCircuit, got %v", err)
	}
}
