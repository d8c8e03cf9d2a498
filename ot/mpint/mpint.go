//
// mpint.go
//
// Copyright (c) 2019 Markku Rossi
//
// All rights reserved.
//

// Package mpint wraps the handful of big.Int operations the
// Diffie-Hellman group arithmetic in ot and p2p needs, so the DH
// exponentiations in ot.DH and p2p.PeerLink.KeyExchange read as group
// operations rather than a string of big.Int method chains.
package mpint

import (
	"math/big"
)

// FromBytes creates a big.Int from the data, as received over the
// wire for a peer's public DH value or a group element.
func FromBytes(data []byte) *big.Int {
	return big.NewInt(0).SetBytes(data)
}

// Exp computes x^y MOD m and returns the result as a new big.Int:
// the one operation every DH public-value and shared-secret
// derivation in this module reduces to.
func Exp(x, y, m *big.Int) *big.Int {
	return big.NewInt(0).Exp(x, y, m)
}
