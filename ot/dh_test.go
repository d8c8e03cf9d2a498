//
// dh_test.go
//
// Copyright (c) 2023 Markku Rossi
//
// All rights reserved.

package ot

import (
	"bytes"
	"math/big"
	"testing"
)

func TestDHOneOfFour(t *testing.T) {
	messages := [][]byte{
		[]byte("r"),
		[]byte("r^x"),
		[]byte("r^y"),
		[]byte("r^x^y"),
	}

	for choice := 0; choice < len(messages); choice++ {
		sender, receiver := NewPipe()

		done := make(chan error, 1)
		go func() {
			ot := NewDH(DefaultGroup, sender)
			done <- ot.Send(messages)
		}()

		ot := NewDH(DefaultGroup, receiver)
		got, err := ot.Receive(choice, len(messages))
		if err != nil {
			t.Fatalf("choice %d: Receive failed: %v", choice, err)
		}
		if err := <-done; err != nil {
			t.Fatalf("choice %d: Send failed: %v", choice, err)
		}
		if !bytes.Equal(got, messages[choice]) {
			t.Fatalf("choice %d: got %q, want %q", choice, got, messages[choice])
		}
	}
}

func TestDHOutOfRange(t *testing.T) {
	g := &Group{
		P: DefaultGroup.P,
		G: DefaultGroup.G,
		Q: DefaultGroup.Q,
	}
	if g.InRange(big.NewInt(0)) {
		t.Fatalf("0 must not be in range")
	}
	if g.InRange(g.P) {
		t.Fatalf("P must not be in range")
	}
}
