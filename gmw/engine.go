//
// engine.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package gmw implements the GMW secure multi-party computation
// engine: XOR secret sharing of circuit inputs, local evaluation of
// XOR and NOT gates, pairwise oblivious-transfer resharing of AND
// gates, and gossip-based reconstruction of the circuit output.
//
// The engine assumes a semi-honest adversary: every party follows the
// protocol but may try to learn extra information from what it
// observes. Any network or authentication error aborts the party
// outright; there is no recovery from a crashed or misbehaving peer.
package gmw

import (
	"crypto/rand"
	"fmt"
	"sort"

	"github.com/markkurossi/gmw/circuit"
	"github.com/markkurossi/gmw/ot"
	"github.com/markkurossi/gmw/p2p"
)

// Engine evaluates one Circuit's gates over XOR shares, communicating
// with the other parties through a PeerLink per peer. Engine is used
// single-threaded: the gate loop, and the OT partner loop inside an
// AND gate, both run sequentially, so shares needs no locking.
type Engine struct {
	me     int
	circ   *circuit.Circuit
	peers  map[int]*p2p.PeerLink
	order  []int
	shares Shares
}

// Shares is one party's XOR share of every wire in a Circuit. The
// invariant the engine maintains is that, for every wire w whose
// plaintext value is defined, the XOR across all parties of
// Shares[w] equals that value.
type Shares []byte

// NewEngine creates an Engine for party me, evaluating circ, talking
// to the other parties over peers (keyed by party index).
func NewEngine(me int, circ *circuit.Circuit, peers map[int]*p2p.PeerLink) *Engine {
	order := make([]int, 0, len(peers))
	for id := range peers {
		order = append(order, id)
	}
	sort.Ints(order)

	return &Engine{
		me:     me,
		circ:   circ,
		peers:  peers,
		order:  order,
		shares: make(Shares, circ.NumWires),
	}
}

// ShareInputs runs the input-sharing phase: inputs must have exactly
// circ.InputLength() entries, one per input wire in wire-index order.
// For each wire this party owns, it samples fresh random shares for
// every other party and sends them; for a wire another party owns, it
// receives its share from that party's PeerLink.
func (e *Engine) ShareInputs(inputs []InitialWireInput) error {
	if len(inputs) != e.circ.InputLength() {
		return fmt.Errorf("gmw: expected %d input wires, got %d",
			e.circ.InputLength(), len(inputs))
	}
	for wire, in := range inputs {
		if in.PartyIndex == e.me {
			share, err := e.distributeShare(in.Value)
			if err != nil {
				return err
			}
			e.shares[wire] = share
			continue
		}
		peer, ok := e.peers[in.PartyIndex]
		if !ok {
			return fmt.Errorf("gmw: wire %d owned by unknown party %d",
				wire, in.PartyIndex)
		}
		bit, err := peer.ReceiveShare()
		if err != nil {
			return err
		}
		e.shares[wire] = bit
	}
	return nil
}

// distributeShare secret-shares value across every party: it samples
// one random bit per other party, sends each its share, and returns
// this party's own share, chosen so that the XOR of all shares equals
// value.
func (e *Engine) distributeShare(value byte) (byte, error) {
	self := value
	for _, id := range e.order {
		bit, err := randomBit()
		if err != nil {
			return 0, err
		}
		if err := e.peers[id].SendShare(bit); err != nil {
			return 0, err
		}
		self ^= bit
	}
	return self & 1, nil
}

// EvalGate evaluates one gate, reading its input wires from the
// current shares and writing its output wire. XOR and NOT consume no
// network messages; AND reshares its result with every other party
// via 1-of-4 oblivious transfer.
func (e *Engine) EvalGate(g circuit.Gate) error {
	a := e.shares[g.Input0]

	switch g.Op {
	case circuit.XOR:
		b := e.shares[g.Input1]
		e.shares[g.Output] = a ^ b

	case circuit.INV:
		bit := a
		if e.me == 0 {
			bit ^= 1
		}
		e.shares[g.Output] = bit

	case circuit.AND:
		b := e.shares[g.Input1]
		bit, err := e.evalAnd(a, b)
		if err != nil {
			return err
		}
		e.shares[g.Output] = bit

	default:
		return fmt.Errorf("gmw: gate operation %s not supported", g.Op)
	}
	return nil
}

// evalAnd reshares the AND of this party's local shares x and y with
// every other party. For each ordered pair, the lower-indexed party
// is the OT sender and the higher-indexed party is the OT receiver;
// this matches the role split PeerLink already uses for key exchange,
// so the two parties on a link never try to play the same role at
// once.
func (e *Engine) evalAnd(x, y byte) (byte, error) {
	t := x & y

	for _, id := range e.order {
		peer := e.peers[id]
		dh := ot.NewDH(ot.DefaultGroup, peer)

		if e.me < id {
			r, err := randomBit()
			if err != nil {
				return 0, err
			}
			// The receiver's choice c has x as its low bit and y as
			// its high bit, so messages[c] must carry y when only the
			// low bit is set and x when only the high bit is set:
			// that is what makes the receiver's selected message
			// equal r ^ (x & receiverY) ^ (y & receiverX), the share
			// of the AND gate's cross term.
			messages := [][]byte{
				encodeBit(r),
				encodeBit(r ^ y),
				encodeBit(r ^ x),
				encodeBit(r ^ x ^ y),
			}
			if err := dh.Send(messages); err != nil {
				return 0, err
			}
			t ^= r
		} else {
			choice := int(x) + 2*int(y)
			resp, err := dh.Receive(choice, 4)
			if err != nil {
				return 0, err
			}
			bit, err := decodeBit(resp)
			if err != nil {
				return 0, err
			}
			t ^= bit
		}
	}
	return t & 1, nil
}

// ReconstructOutput gossips this party's output-share bitstring to
// every other party and XORs the replies in, yielding the circuit's
// plaintext output: one byte per output bit, in ascending wire order
// (circ.OutputWire(0) first).
func (e *Engine) ReconstructOutput() ([]byte, error) {
	n := e.circ.OutputLength
	start := e.circ.NumWires - n
	local := make([]byte, n)
	copy(local, e.shares[start:start+n])

	result := make([]byte, n)
	copy(result, local)

	for _, id := range e.order {
		peer := e.peers[id]
		var peerShare []byte
		var err error

		if e.me < id {
			err = peer.SendGossip(local)
			if err == nil {
				peerShare, err = peer.ReceiveGossip()
			}
		} else {
			peerShare, err = peer.ReceiveGossip()
			if err == nil {
				err = peer.SendGossip(local)
			}
		}
		if err != nil {
			return nil, err
		}
		if len(peerShare) != n {
			return nil, fmt.Errorf(
				"gmw: peer %d gossiped %d output bits, expected %d",
				id, len(peerShare), n)
		}
		for i, bit := range peerShare {
			result[i] ^= bit
		}
	}
	return result, nil
}

// randomBit draws one uniformly random bit.
func randomBit() (byte, error) {
	var buf [1]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return buf[0] & 1, nil
}

// encodeBit renders a single bit as the one-character ASCII string
// the OT wire format uses for GMW's AND-gate messages.
func encodeBit(bit byte) []byte {
	return []byte{'0' + (bit & 1)}
}

// decodeBit is the inverse of encodeBit.
func decodeBit(data []byte) (byte, error) {
	if len(data) != 1 || (data[0] != '0' && data[0] != '1') {
		return 0, fmt.Errorf("gmw: invalid OT bit encoding %q", data)
	}
	return data[0] - '0', nil
}
