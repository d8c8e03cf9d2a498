//
// orchestrator.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package gmw

import (
	"fmt"

	"github.com/markkurossi/gmw/circuit"
	"github.com/markkurossi/gmw/p2p"
)

// Orchestrator sequences one party's run of the GMW protocol: connect
// the mesh, key-exchange every link, distribute input shares,
// evaluate the circuit gate by gate, gossip output shares, and
// reconstruct the plaintext output. Every phase is a full barrier in
// the sense that all parties finish it before any of them starts the
// next; the protocol's own message exchanges enforce that without any
// extra coordination.
type Orchestrator struct {
	me     int
	addrs  []string
	circ   *circuit.Circuit
	timing *circuit.Timing
}

// New creates an Orchestrator for party me, evaluating circ against
// the other parties named in addrs (addrs[me] is this party's own
// listening address).
func New(me int, addrs []string, circ *circuit.Circuit) *Orchestrator {
	return &Orchestrator{
		me:     me,
		addrs:  addrs,
		circ:   circ,
		timing: circuit.NewTiming(),
	}
}

// Timing returns the phase timing recorded by the most recent Run.
func (o *Orchestrator) Timing() *circuit.Timing {
	return o.timing
}

// Run executes the full protocol and returns the circuit's plaintext
// output, one byte per output bit in ascending wire order.
func (o *Orchestrator) Run(inputs []InitialWireInput) ([]byte, error) {
	conns, err := p2p.Connect(o.me, o.addrs)
	if err != nil {
		return nil, err
	}
	o.timing.Sample("Connect", nil)

	peers := make(map[int]*p2p.PeerLink, len(conns))
	for id, conn := range conns {
		peers[id] = p2p.NewPeerLink(conn)
	}
	defer func() {
		for _, peer := range peers {
			peer.Close()
		}
	}()

	if err := keyExchangeAll(o.me, peers); err != nil {
		return nil, err
	}
	o.timing.Sample("KeyExchange", nil)

	engine := NewEngine(o.me, o.circ, peers)

	if err := engine.ShareInputs(inputs); err != nil {
		return nil, err
	}
	o.timing.Sample("Shares", nil)

	for _, gate := range o.circ.Gates {
		if err := engine.EvalGate(gate); err != nil {
			return nil, err
		}
	}
	o.timing.Sample("Gates", nil)

	output, err := engine.ReconstructOutput()
	if err != nil {
		return nil, err
	}
	o.timing.Sample("Output", nil)

	return output, nil
}

// keyExchangeAll runs the Diffie-Hellman key exchange on every link in
// parallel: each link's handshake only touches that link's own
// socket, so the N-1 exchanges never contend with one another and can
// fan out as independent goroutines, joined at the barrier below.
//
// Party me plays send_first with peers of higher index and
// recv_first with peers of lower index, matching the role split the
// Mesh Connector already establishes by its accept/connect rule, so
// the two ends of every link never pick the same role.
func keyExchangeAll(me int, peers map[int]*p2p.PeerLink) error {
	type result struct {
		id  int
		err error
	}
	results := make(chan result, len(peers))

	for id, peer := range peers {
		go func(id int, peer *p2p.PeerLink) {
			results <- result{id: id, err: peer.KeyExchange(id > me)}
		}(id, peer)
	}

	var firstErr error
	for range peers {
		if r := <-results; r.err != nil && firstErr == nil {
			firstErr = fmt.Errorf("gmw: key exchange with peer %d: %w", r.id, r.err)
		}
	}
	return firstErr
}
