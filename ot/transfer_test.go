//
// transfer_test.go
//
// Copyright (c) 2024 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func TestTransferRoundtrip(t *testing.T) {
	grp, err := NewGroup(rand.Reader, 32)
	if err != nil {
		t.Fatalf("NewGroup: %v", err)
	}

	m0 := []byte("zero message")
	m1 := []byte("one message, longer")

	for _, bit := range []bool{false, true} {
		sender, err := NewSender(rand.Reader, grp)
		if err != nil {
			t.Fatalf("NewSender: %v", err)
		}
		chooser, err := NewChooser(rand.Reader, grp, bit, sender.C)
		if err != nil {
			t.Fatalf("NewChooser: %v", err)
		}
		ct, err := sender.Encrypt(rand.Reader, chooser.H0, m0, m1)
		if err != nil {
			t.Fatalf("Encrypt: %v", err)
		}
		got := chooser.Decrypt(ct)

		want := m0
		if bit {
			want = m1
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("bit=%v: got %x, want %x", bit, got, want)
		}
	}
}

func TestGroupOTRoundtrip(t *testing.T) {
	a, b := NewPipe()

	senderOT := NewGroupOT(rand.Reader, 48)
	receiverOT := NewGroupOT(rand.Reader, 48)

	errCh := make(chan error, 1)
	go func() {
		if err := senderOT.InitSender(a); err != nil {
			errCh <- err
			return
		}
		errCh <- senderOT.Send([]byte("m0"), []byte("m1-longer"))
	}()

	if err := receiverOT.InitReceiver(b); err != nil {
		t.Fatalf("InitReceiver: %v", err)
	}
	got, err := receiverOT.Receive(true)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("sender goroutine: %v", err)
	}
	if !bytes.Equal(got, []byte("m1-longer")) {
		t.Fatalf("got %q, want %q", got, "m1-longer")
	}
}

func TestCleartextBypass(t *testing.T) {
	a, b := NewPipe()

	done := make(chan error, 1)
	go func() {
		done <- SendCleartext(a, []byte("m0"), []byte("m1"))
	}()

	got, err := ReceiveCleartext(b, true)
	if err != nil {
		t.Fatalf("ReceiveCleartext: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("SendCleartext: %v", err)
	}
	if !bytes.Equal(got, []byte("m1")) {
		t.Fatalf("bypass: got %q, want m1", got)
	}
}
