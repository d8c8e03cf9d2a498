//
// peerlink_test.go
//
// Copyright (c) 2025 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"bytes"
	"testing"
)

func newLinkedPair(t *testing.T) (*PeerLink, *PeerLink) {
	t.Helper()
	c0, c1 := Pipe()
	l0 := NewPeerLink(c0)
	l1 := NewPeerLink(c1)

	done := make(chan error, 1)
	go func() {
		done <- l0.KeyExchange(true)
	}()
	if err := l1.KeyExchange(false); err != nil {
		t.Fatalf("l1.KeyExchange: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("l0.KeyExchange: %v", err)
	}
	return l0, l1
}

func TestPeerLinkKeyExchange(t *testing.T) {
	l0, l1 := newLinkedPair(t)
	if !bytes.Equal(l0.aesKey, l1.aesKey) {
		t.Fatalf("AES keys differ between ends of the link")
	}
	if !bytes.Equal(l0.hmacKey, l1.hmacKey) {
		t.Fatalf("HMAC keys differ between ends of the link")
	}
}

func TestPeerLinkSendReceive(t *testing.T) {
	l0, l1 := newLinkedPair(t)

	msg := []byte("the quick brown fox")
	done := make(chan error, 1)
	go func() {
		if err := l0.SendData(msg); err != nil {
			done <- err
			return
		}
		done <- l0.Flush()
	}()

	got, err := l1.ReceiveData()
	if err != nil {
		t.Fatalf("ReceiveData: %v", err)
	}
	if !bytes.Equal(got, msg) {
		t.Fatalf("got %q, want %q", got, msg)
	}
	if err := <-done; err != nil {
		t.Fatalf("SendData/Flush: %v", err)
	}
}

func TestPeerLinkMacFailure(t *testing.T) {
	l0, l1 := newLinkedPair(t)

	// Corrupt the peer's HMAC key so an honestly sent message fails
	// to authenticate on receipt.
	l1.hmacKey = bytes.Repeat([]byte{0xff}, len(l1.hmacKey))

	done := make(chan error, 1)
	go func() {
		if err := l0.SendData([]byte("hello")); err != nil {
			done <- err
			return
		}
		done <- l0.Flush()
	}()

	_, err := l1.ReceiveData()
	if err != ErrMacFail {
		t.Fatalf("got error %v, want ErrMacFail", err)
	}
	<-done
}

func TestPeerLinkShareAndGossip(t *testing.T) {
	l0, l1 := newLinkedPair(t)

	done := make(chan error, 1)
	go func() {
		done <- l0.SendShare(1)
	}()
	bit, err := l1.ReceiveShare()
	if err != nil {
		t.Fatalf("ReceiveShare: %v", err)
	}
	if bit != 1 {
		t.Fatalf("got share %d, want 1", bit)
	}
	if err := <-done; err != nil {
		t.Fatalf("SendShare: %v", err)
	}

	go func() {
		done <- l0.SendGossip([]byte{1, 0, 1})
	}()
	bits, err := l1.ReceiveGossip()
	if err != nil {
		t.Fatalf("ReceiveGossip: %v", err)
	}
	if !bytes.Equal(bits, []byte{1, 0, 1}) {
		t.Fatalf("got gossip %v, want [1 0 1]", bits)
	}
	if err := <-done; err != nil {
		t.Fatalf("SendGossip: %v", err)
	}
}
