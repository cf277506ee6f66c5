//
// protocol_test.go
//
// Copyright (c) 2023 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"bytes"
	"fmt"
	"io"
	"testing"
)

func newPipes() (*pipe, *pipe) {
	var p0, p1 pipe

	p0.r, p1.w = io.Pipe()
	p1.r, p0.w = io.Pipe()

	return &p0, &p1
}

var tests = []interface{}{
	uint32(44),
	[]byte("Hello, world!"),
	uint32(0),
	[]byte{},
}

func writer(c *Conn) {
	for _, test := range tests {
		switch d := test.(type) {
		case uint32:
			if err := c.SendUint32(int(d)); err != nil {
				fmt.Printf("SendUint32: %v\n", err)
			}

		case []byte:
			if err := c.SendData(d); err != nil {
				fmt.Printf("SendData: %v\n", err)
			}

		default:
			fmt.Printf("writer: invalid data: %v(%T)\n", test, test)
		}
	}
	if err := c.Flush(); err != nil {
		fmt.Printf("Flush: %v\n", err)
	}
}

func TestProtocol(t *testing.T) {
	p0, p1 := newPipes()

	go writer(NewConn(p0))

	c := NewConn(p1)

	for _, test := range tests {
		switch d := test.(type) {
		case uint32:
			v, err := c.ReceiveUint32()
			if err != nil {
				t.Fatalf("ReceiveUint32: %v", err)
			}
			if v != int(d) {
				t.Errorf("ReceiveUint32: got %v, expected %v", v, d)
			}

		case []byte:
			v, err := c.ReceiveData()
			if err != nil {
				t.Fatalf("ReceiveData: %v", err)
			}
			if !bytes.Equal(v, d) {
				t.Errorf("ReceiveData: got %v, expected %v", v, d)
			}

		default:
			t.Errorf("invalid value: %v(%T)", test, test)
		}
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestProtocolStats(t *testing.T) {
	p0, p1 := newPipes()

	go func() {
		c := NewConn(p0)
		c.SendUint32(7)
		c.SendData([]byte("abc"))
		c.Flush()
	}()

	c := NewConn(p1)
	if _, err := c.ReceiveUint32(); err != nil {
		t.Fatalf("ReceiveUint32: %v", err)
	}
	if _, err := c.ReceiveData(); err != nil {
		t.Fatalf("ReceiveData: %v", err)
	}

	if c.Stats.Recvd == 0 {
		t.Errorf("expected non-zero received byte count")
	}
}
