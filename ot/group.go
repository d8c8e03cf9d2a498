//
// group.go
//
// Copyright (c) 2023 Markku Rossi
//
// All rights reserved.

package ot

import (
	"crypto/rand"
	"io"
	"math/big"
)

// Group defines the fixed prime-order multiplicative group in which
// the Diffie-Hellman based oblivious transfer operates: a safe prime
// P, a generator G of the order-Q subgroup, and Q itself. Every party
// in a computation shares the same Group; it carries no secret state
// and needs no negotiation between peers.
type Group struct {
	P *big.Int
	G *big.Int
	Q *big.Int
}

// DefaultGroup is the 2048-bit MODP group from RFC 3526 (group 14),
// used as the fixed Diffie-Hellman group for oblivious transfer. Its
// generator is 2, and Q=(P-1)/2 since P is a safe prime.
var DefaultGroup = newRFC3526Group14()

const rfc3526Group14Hex = "" +
	"FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD" +
	"129024E088A67CC74020BBEA63B139B22514A08798E3404" +
	"DDEF9519B3CD3A431B302B0A6DF25F14374FE1356D6D51C" +
	"245E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406" +
	"B7EDEE386BFB5A899FA5AE9F24117C4B1FE649286651ECE" +
	"45B3DC2007CB8A163BF0598DA48361C55D39A69163FA8FD" +
	"24CF5F83655D23DCA3AD961C62F356208552BB9ED529077" +
	"096966D670C354E4ABC9804F1746C08CA18217C32905E46" +
	"2E36CE3BE39E772C180E86039B2783A2EC07A28FB5C55DF" +
	"06F4C52C9DE2BCBF6955817183995497CEA956AE515D225" +
	"6A2F1CF38764840808A202E15D61F4AEF3AFB5AF40DF0B6" +
	"C81F8B6CF96D4A1BA7F0E9D3B04E32DA1395B0BCB9A17C8" +
	"E02BCCA86FFB6FE08F6DF7B6A1C2FAE1FCB45D5A8638DF3" +
	"FFFFFFFFFFFFFFFF"

func newRFC3526Group14() *Group {
	p, ok := new(big.Int).SetString(rfc3526Group14Hex, 16)
	if !ok {
		panic("ot: invalid RFC 3526 group 14 prime")
	}
	q := new(big.Int).Rsh(p, 1)
	return &Group{
		P: p,
		G: big.NewInt(2),
		Q: q,
	}
}

// InRange reports whether v is a valid public group element, i.e.
// 1 <= v < P. A value outside of this range can never be a power of
// G and indicates either corrupted input or an attempted
// small-subgroup attack.
func (g *Group) InRange(v *big.Int) bool {
	return v.Sign() > 0 && v.Cmp(g.P) < 0
}

// RandomExponent draws a random exponent in [1, Q).
func (g *Group) RandomExponent(random io.Reader) (*big.Int, error) {
	for {
		x, err := rand.Int(random, g.Q)
		if err != nil {
			return nil, err
		}
		if x.Sign() > 0 {
			return x, nil
		}
	}
}
