//
// enc_test.go
//
// Copyright (c) 2019-2024 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"crypto/rand"
	"testing"

	"github.com/GabrieleCastellani1/garbled-circuit-with-dynamic-dimension/ot"
)

func TestEnc(t *testing.T) {
	a, _ := ot.NewLabel(rand.Reader)
	b, _ := ot.NewLabel(rand.Reader)
	out, _ := ot.NewLabel(rand.Reader)
	gateID := uint32(42)

	ct := encryptEntry(a, &b, gateID, out, true)

	label, bit, err := decryptEntry(a, &b, gateID, ct)
	if err != nil {
		t.Fatalf("decryptEntry failed: %s", err)
	}
	if !bit {
		t.Fatalf("expected bit=true")
	}
	if !out.Equal(label) {
		t.Fatalf("encrypt-decrypt round trip failed")
	}
}

func TestEncUnary(t *testing.T) {
	a, _ := ot.NewLabel(rand.Reader)
	out, _ := ot.NewLabel(rand.Reader)
	gateID := uint32(7)

	ct := encryptEntry(a, nil, gateID, out, false)

	label, bit, err := decryptEntry(a, nil, gateID, ct)
	if err != nil {
		t.Fatalf("decryptEntry failed: %s", err)
	}
	if bit {
		t.Fatalf("expected bit=false")
	}
	if !out.Equal(label) {
		t.Fatalf("encrypt-decrypt round trip failed")
	}
}

func TestEncWrongGateID(t *testing.T) {
	a, _ := ot.NewLabel(rand.Reader)
	b, _ := ot.NewLabel(rand.Reader)
	out, _ := ot.NewLabel(rand.Reader)

	ct := encryptEntry(a, &b, 1, out, true)

	label, _, err := decryptEntry(a, &b, 2, ct)
	if err == nil && out.Equal(label) {
		t.Fatalf("decrypting under the wrong gate id must not recover the plaintext")
	}
}
