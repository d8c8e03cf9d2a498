//
// ot_test.go
//
// Copyright (c) 2025 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"bytes"
	"testing"

	"github.com/markkurossi/gmw/ot"
)

// TestPeerLinkCarriesOT checks that the oblivious transfer subprotocol
// runs correctly over an already keyed PeerLink, i.e. that OT
// messages are carried inside the link's authenticated envelope
// rather than needing a channel of their own.
func TestPeerLinkCarriesOT(t *testing.T) {
	l0, l1 := newLinkedPair(t)

	messages := [][]byte{
		[]byte("00"), []byte("01"), []byte("10"), []byte("11"),
	}
	const choice = 2

	done := make(chan error, 1)
	go func() {
		done <- ot.NewDH(ot.DefaultGroup, l0).Send(messages)
	}()

	got, err := ot.NewDH(ot.DefaultGroup, l1).Receive(choice, len(messages))
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if !bytes.Equal(got, messages[choice]) {
		t.Fatalf("got %q, want %q", got, messages[choice])
	}
	if err := <-done; err != nil {
		t.Fatalf("Send: %v", err)
	}
}
