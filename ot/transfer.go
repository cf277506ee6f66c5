//
// transfer.go
//
// Copyright (c) 2024 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"fmt"
	"io"
	"math/big"

	"golang.org/x/crypto/sha3"
)

// Sender holds the Sender's per-session state: the shared group and
// the Sender's round-2 secret r together with its public c = g^r.
type Sender struct {
	Group *Group
	r     *big.Int

	// C is transmitted to the Chooser as the Sender's round-2
	// message.
	C *big.Int
}

// NewSender creates a new OT sender over grp, drawing a fresh r for
// this session's round 2.
func NewSender(rnd io.Reader, grp *Group) (*Sender, error) {
	r, err := grp.RandInt(rnd)
	if err != nil {
		return nil, err
	}
	return &Sender{
		Group: grp,
		r:     r,
		C:     grp.GenPow(r),
	}, nil
}

// Ciphertext is the Sender's round-4 message.
type Ciphertext struct {
	C1 *big.Int
	E0 []byte
	E1 []byte
}

// Encrypt computes the round-4 message given the Chooser's h0 and the
// two candidate messages. m0 and m1 may be of different lengths.
func (s *Sender) Encrypt(rnd io.Reader, h0 *big.Int, m0, m1 []byte) (
	*Ciphertext, error) {

	k, err := s.Group.RandInt(rnd)
	if err != nil {
		return nil, err
	}

	c1 := s.Group.GenPow(k)
	h1 := s.Group.Mul(s.C, s.Group.Inv(h0))

	e0 := xorKDF(s.Group, s.Group.Pow(h0, k), m0)
	e1 := xorKDF(s.Group, s.Group.Pow(h1, k), m1)

	return &Ciphertext{
		C1: c1,
		E0: e0,
		E1: e1,
	}, nil
}

// Chooser holds the Chooser's per-transfer state.
type Chooser struct {
	Group *Group
	bit   bool
	x     *big.Int

	// H0 is transmitted to the Sender as the Chooser's round-3
	// message, regardless of bit: the Chooser always sends the
	// element it computed into the h0 slot.
	H0 *big.Int
}

// NewChooser creates a new OT chooser for selection bit, given the
// Sender's round-2 message c.
func NewChooser(rnd io.Reader, grp *Group, bit bool, c *big.Int) (
	*Chooser, error) {

	x, err := grp.RandInt(rnd)
	if err != nil {
		return nil, err
	}

	gx := grp.GenPow(x)

	var h0 *big.Int
	if bit {
		h0 = grp.Mul(c, grp.Inv(gx))
	} else {
		h0 = gx
	}

	return &Chooser{
		Group: grp,
		bit:   bit,
		x:     x,
		H0:    h0,
	}, nil
}

// Decrypt recovers m_bit from the Sender's round-4 message.
func (ch *Chooser) Decrypt(ct *Ciphertext) []byte {
	s := ch.Group.Pow(ct.C1, ch.x)
	if ch.bit {
		return xorKDF(ch.Group, s, ct.E1)
	}
	return xorKDF(ch.Group, s, ct.E0)
}

// xorKDF masks msg with KDF(elt, len(msg)).
func xorKDF(grp *Group, elt *big.Int, msg []byte) []byte {
	mask := kdf(elt, grp.ByteLen(), len(msg))
	out := make([]byte, len(msg))
	for i := range msg {
		out[i] = msg[i] ^ mask[i]
	}
	return out
}

// kdf serializes elt as a fixed-width big-endian byte string and
// stretches it to length bytes with SHAKE-256.
func kdf(elt *big.Int, eltBytes, length int) []byte {
	buf := make([]byte, eltBytes)
	elt.FillBytes(buf)

	h := sha3.NewShake256()
	h.Write(buf)

	out := make([]byte, length)
	h.Read(out)
	return out
}

// GroupOT implements the OT interface over an IO channel, playing
// either the sender or the chooser role depending on which Init
// function is called.
type GroupOT struct {
	rand      io.Reader
	primeBits int
	io        IO
	grp       *Group
	isSender  bool

	// Transcript, when non-nil, receives one human-readable line per
	// OT round (spec.md §6 "human-readable OT transcript (optional
	// logging)").
	Transcript *Transcript
}

// NewGroupOT creates a new group-based OT instance drawing randomness
// from rnd and using primeBits-bit groups when it acts as the party
// that generates the group.
func NewGroupOT(rnd io.Reader, primeBits int) *GroupOT {
	return &GroupOT{
		rand:      rnd,
		primeBits: primeBits,
	}
}

// InitSender generates a fresh prime-order group and transmits it to
// the peer.
func (g *GroupOT) InitSender(conn IO) error {
	grp, err := NewGroup(g.rand, g.primeBits)
	if err != nil {
		return err
	}
	g.grp = grp
	g.io = conn
	g.isSender = true

	if err := conn.SendData(grp.P.Bytes()); err != nil {
		return err
	}
	if err := conn.SendData(grp.G.Bytes()); err != nil {
		return err
	}
	return conn.Flush()
}

// InitReceiver receives the prime-order group from the peer.
func (g *GroupOT) InitReceiver(conn IO) error {
	pBytes, err := conn.ReceiveData()
	if err != nil {
		return err
	}
	gBytes, err := conn.ReceiveData()
	if err != nil {
		return err
	}
	g.grp = &Group{
		P: new(big.Int).SetBytes(pBytes),
		G: new(big.Int).SetBytes(gBytes),
	}
	g.io = conn
	g.isSender = false
	return nil
}

// Send runs the Sender role of one OT transfer for m0/m1.
func (g *GroupOT) Send(m0, m1 []byte) error {
	if !g.isSender {
		return fmt.Errorf("ot: Send called on a receiver-initialized OT")
	}

	sender, err := NewSender(g.rand, g.grp)
	if err != nil {
		return err
	}
	if err := g.io.SendData(sender.C.Bytes()); err != nil {
		return err
	}
	if err := g.io.Flush(); err != nil {
		return err
	}

	h0Bytes, err := g.io.ReceiveData()
	if err != nil {
		return err
	}
	h0 := new(big.Int).SetBytes(h0Bytes)

	ct, err := sender.Encrypt(g.rand, h0, m0, m1)
	if err != nil {
		return err
	}
	g.Transcript.logSender(ct.C1, m0, m1)

	if err := g.io.SendData(ct.C1.Bytes()); err != nil {
		return err
	}
	if err := g.io.SendData(ct.E0); err != nil {
		return err
	}
	if err := g.io.SendData(ct.E1); err != nil {
		return err
	}
	return g.io.Flush()
}

// Receive runs the Chooser role of one OT transfer for selection bit.
func (g *GroupOT) Receive(bit bool) ([]byte, error) {
	if g.isSender {
		return nil, fmt.Errorf("ot: Receive called on a sender-initialized OT")
	}

	cBytes, err := g.io.ReceiveData()
	if err != nil {
		return nil, err
	}
	c := new(big.Int).SetBytes(cBytes)

	chooser, err := NewChooser(g.rand, g.grp, bit, c)
	if err != nil {
		return nil, err
	}

	if err := g.io.SendData(chooser.H0.Bytes()); err != nil {
		return nil, err
	}
	if err := g.io.Flush(); err != nil {
		return nil, err
	}

	c1Bytes, err := g.io.ReceiveData()
	if err != nil {
		return nil, err
	}
	e0, err := g.io.ReceiveData()
	if err != nil {
		return nil, err
	}
	e1, err := g.io.ReceiveData()
	if err != nil {
		return nil, err
	}

	ct := &Ciphertext{
		C1: new(big.Int).SetBytes(c1Bytes),
		E0: e0,
		E1: e1,
	}
	chosen := chooser.Decrypt(ct)
	g.Transcript.logChooser(bit, chosen)
	return chosen, nil
}

// SendCleartext implements the configurable OT bypass: both messages
// are revealed to the peer directly. It exists only for protocol
// validation and must never be enabled in production.
func SendCleartext(conn IO, m0, m1 []byte) error {
	if err := conn.SendData(m0); err != nil {
		return err
	}
	if err := conn.SendData(m1); err != nil {
		return err
	}
	return conn.Flush()
}

// ReceiveCleartext implements the receiving side of the configurable
// OT bypass, selecting m0 or m1 locally by bit.
func ReceiveCleartext(conn IO, bit bool) ([]byte, error) {
	m0, err := conn.ReceiveData()
	if err != nil {
		return nil, err
	}
	m1, err := conn.ReceiveData()
	if err != nil {
		return nil, err
	}
	if bit {
		return m1, nil
	}
	return m0, nil
}
