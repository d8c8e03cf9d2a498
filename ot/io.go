//
// io.go
//
// Copyright (c) 2023 Markku Rossi
//
// All rights reserved.

package ot

// IO is the transport a DH oblivious transfer runs over: public DH
// values, the message count, and the per-message IV/ciphertext pairs
// all travel as IO.SendData/ReceiveData calls. p2p.PeerLink implements
// IO directly, so a GMW AND gate's OT messages ride inside the same
// authenticated, encrypted channel as everything else on that link.
type IO interface {
	// SendData sends one length-prefixed binary value.
	SendData(val []byte) error

	// SendUint32 sends one uint32 value.
	SendUint32(val int) error

	// Flush flushes any data buffered by a prior Send call.
	Flush() error

	// ReceiveData receives one length-prefixed binary value.
	ReceiveData() ([]byte, error)

	// ReceiveUint32 receives one uint32 value.
	ReceiveUint32() (int, error)
}
