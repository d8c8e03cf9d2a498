//
// engine_test.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package gmw

import (
	"bytes"
	"strings"
	"testing"

	"github.com/markkurossi/gmw/circuit"
	"github.com/markkurossi/gmw/p2p"
)

// buildMesh creates a full pairwise mesh of PeerLinks over n parties
// using in-memory pipes, skipping the TCP Mesh Connector so the
// engine tests run without any real networking.
func buildMesh(n int) []map[int]*p2p.PeerLink {
	links := make([]map[int]*p2p.PeerLink, n)
	for i := range links {
		links[i] = make(map[int]*p2p.PeerLink)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			ci, cj := p2p.Pipe()
			links[i][j] = p2p.NewPeerLink(ci)
			links[j][i] = p2p.NewPeerLink(cj)
		}
	}
	return links
}

type partyResult struct {
	me     int
	output []byte
	err    error
}

// runParties parses circ, builds a mesh for len(inputsByParty)
// parties, and runs the full share/evaluate/reconstruct protocol for
// every party concurrently, returning one result per party.
func runParties(t *testing.T, circSrc string, inputs []InitialWireInput, n int) []partyResult {
	t.Helper()

	circ, err := circuit.ParseBristol(strings.NewReader(circSrc))
	if err != nil {
		t.Fatalf("ParseBristol: %v", err)
	}

	mesh := buildMesh(n)
	results := make(chan partyResult, n)

	for me := 0; me < n; me++ {
		go func(me int) {
			peers := mesh[me]
			if err := keyExchangeAll(me, peers); err != nil {
				results <- partyResult{me: me, err: err}
				return
			}
			engine := NewEngine(me, circ, peers)
			if err := engine.ShareInputs(inputs); err != nil {
				results <- partyResult{me: me, err: err}
				return
			}
			for _, gate := range circ.Gates {
				if err := engine.EvalGate(gate); err != nil {
					results <- partyResult{me: me, err: err}
					return
				}
			}
			out, err := engine.ReconstructOutput()
			results <- partyResult{me: me, output: out, err: err}
		}(me)
	}

	out := make([]partyResult, n)
	for i := 0; i < n; i++ {
		r := <-results
		out[r.me] = r
	}
	return out
}

func checkOutputs(t *testing.T, results []partyResult, want []byte) {
	t.Helper()
	for _, r := range results {
		if r.err != nil {
			t.Fatalf("party %d: %v", r.me, r.err)
		}
		if !bytes.Equal(r.output, want) {
			t.Fatalf("party %d: got output %v, want %v", r.me, r.output, want)
		}
	}
}

// TestTwoPartyAND evaluates a single AND gate between two parties'
// inputs, the simplest circuit that exercises the OT subprotocol.
func TestTwoPartyAND(t *testing.T) {
	const circ = `1 3
1 1 1

2 1 0 1 2 AND
`
	inputs := []InitialWireInput{
		{PartyIndex: 0, Value: 1},
		{PartyIndex: 1, Value: 1},
	}
	results := runParties(t, circ, inputs, 2)
	checkOutputs(t, results, []byte{1})
}

// TestThreePartyXORChain chains two XOR gates across three parties'
// inputs; XOR gates require no communication once shares are set.
func TestThreePartyXORChain(t *testing.T) {
	const circ = `2 5
1 2 1

2 1 0 1 3 XOR
2 1 3 2 4 XOR
`
	inputs := []InitialWireInput{
		{PartyIndex: 0, Value: 1},
		{PartyIndex: 1, Value: 1},
		{PartyIndex: 2, Value: 0},
	}
	results := runParties(t, circ, inputs, 3)
	checkOutputs(t, results, []byte{0})
}

// TestNotOnly checks the INV gate's party-0-flips convention: every
// party except party 0 passes its share through unchanged, so the
// plaintext output still flips exactly once.
func TestNotOnly(t *testing.T) {
	const circ = `1 2
1 0 1

1 1 0 1 INV
`
	inputs := []InitialWireInput{
		{PartyIndex: 0, Value: 0},
	}
	results := runParties(t, circ, inputs, 2)
	checkOutputs(t, results, []byte{1})
}

// TestThreePartyAND chains two AND gates across three parties, so
// each gate reshares over two pairwise OTs.
func TestThreePartyAND(t *testing.T) {
	const circ = `2 5
1 2 1

2 1 0 1 3 AND
2 1 3 2 4 AND
`
	allOnes := []InitialWireInput{
		{PartyIndex: 0, Value: 1},
		{PartyIndex: 1, Value: 1},
		{PartyIndex: 2, Value: 1},
	}
	checkOutputs(t, runParties(t, circ, allOnes, 3), []byte{1})

	lastZero := []InitialWireInput{
		{PartyIndex: 0, Value: 1},
		{PartyIndex: 1, Value: 1},
		{PartyIndex: 2, Value: 0},
	}
	checkOutputs(t, runParties(t, circ, lastZero, 3), []byte{0})
}

// TestMultiOutput checks that a circuit with more than one output
// wire reconstructs every bit independently, in ascending wire order.
func TestMultiOutput(t *testing.T) {
	const circ = `2 4
1 1 2

2 1 0 1 2 XOR
2 1 0 1 3 AND
`
	inputs := []InitialWireInput{
		{PartyIndex: 0, Value: 1},
		{PartyIndex: 1, Value: 1},
	}
	results := runParties(t, circ, inputs, 2)
	// wire 2 = XOR(1,1) = 0, wire 3 = AND(1,1) = 1.
	checkOutputs(t, results, []byte{0, 1})
}

// TestZeroANDGates checks that a circuit with no AND gates never
// touches the OT subprotocol: corrupting the mesh so any OT call
// would fail is not needed here, the absence of AND gates in the
// Bristol source is enough to exercise the path.
func TestZeroANDGates(t *testing.T) {
	const circ = `1 3
1 1 1

2 1 0 1 2 XOR
`
	inputs := []InitialWireInput{
		{PartyIndex: 0, Value: 1},
		{PartyIndex: 1, Value: 0},
	}
	results := runParties(t, circ, inputs, 2)
	checkOutputs(t, results, []byte{1})
}

// TestShareInputsUnknownParty checks that an input file naming a party
// with no corresponding peer link fails cleanly instead of panicking.
func TestShareInputsUnknownParty(t *testing.T) {
	mesh := buildMesh(2)
	done := make(chan error, 1)
	go func() { done <- keyExchangeAll(1, mesh[1]) }()
	if err := keyExchangeAll(0, mesh[0]); err != nil {
		t.Fatalf("keyExchangeAll(0): %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("keyExchangeAll(1): %v", err)
	}

	const circ = `1 3
1 1 1

2 1 0 1 2 AND
`
	c, err := circuit.ParseBristol(strings.NewReader(circ))
	if err != nil {
		t.Fatalf("ParseBristol: %v", err)
	}
	// Wire 0 is claimed by party 2, which has no link in this mesh;
	// ShareInputs must fail on it before touching the network at all.
	inputs := []InitialWireInput{
		{PartyIndex: 2, Value: 1},
		{PartyIndex: 0, Value: 1},
	}

	engine := NewEngine(0, c, mesh[0])
	if err := engine.ShareInputs(inputs); err == nil {
		t.Fatalf("ShareInputs: expected error for unknown party, got nil")
	}
}
