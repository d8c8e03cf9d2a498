//
// errors.go
//
// Copyright (c) 2025 Markku Rossi
//
// All rights reserved.
//

package p2p

import "errors"

// Errors a PeerLink can return. All of them are fatal to the party: a
// message that fails to authenticate or violates the expected
// protocol sequence is never retried, since a semi-honest peer never
// produces one and a malicious or buggy one cannot be trusted to
// produce anything recoverable.
var (
	// ErrMacFail indicates that an incoming message's HMAC tag did
	// not match its ciphertext; the plaintext is never exposed.
	ErrMacFail = errors.New("p2p: message authentication failed")

	// ErrGroupElementOutOfRange indicates that a received
	// Diffie-Hellman public value was not in the group's valid
	// range.
	ErrGroupElementOutOfRange = errors.New("p2p: Diffie-Hellman public value out of range")

	// ErrProtocolViolation indicates that a message arrived with the
	// wrong tag for the phase the computation is in.
	ErrProtocolViolation = errors.New("p2p: protocol violation")

	// ErrDisconnected indicates that the peer connection was closed
	// before a complete message arrived.
	ErrDisconnected = errors.New("p2p: peer disconnected")
)
