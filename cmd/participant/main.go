//
// main.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Command participant runs one party of a GMW secure multi-party
// computation: it connects to every other party named in the address
// file, secret-shares its own input wires, evaluates the circuit
// gate by gate, and prints the reconstructed output bitstring.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/markkurossi/gmw/circuit"
	"github.com/markkurossi/gmw/gmw"
)

func main() {
	timing := flag.Bool("t", false, "Print phase timing on exit")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) != 4 {
		usage()
		os.Exit(1)
	}
	addrFile, circFile, inputFile, partyArg := args[0], args[1], args[2], args[3]

	me, err := strconv.Atoi(partyArg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "participant: invalid party index %q: %s\n",
			partyArg, err)
		os.Exit(1)
	}

	addrs, err := gmw.ParseAddrFile(addrFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "participant: %s\n", err)
		os.Exit(1)
	}
	if me < 0 || me >= len(addrs) {
		fmt.Fprintf(os.Stderr,
			"participant: party index %d out of range [0,%d)\n", me, len(addrs))
		os.Exit(1)
	}

	circ, err := circuit.Parse(circFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "participant: %s\n", err)
		os.Exit(1)
	}

	inputs, err := gmw.ParseInputFile(inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "participant: %s\n", err)
		os.Exit(1)
	}
	if len(inputs) != circ.InputLength() {
		fmt.Fprintf(os.Stderr,
			"participant: input file names %d wires, circuit expects %d\n",
			len(inputs), circ.InputLength())
		os.Exit(1)
	}

	orch := gmw.New(me, addrs, circ)

	output, err := orch.Run(inputs)
	if err != nil {
		log.Fatalf("participant %d: %s", me, err)
	}

	if *timing {
		orch.Timing().Print()
	}

	fmt.Println(bitString(output))
}

func bitString(bits []byte) string {
	buf := make([]byte, len(bits))
	for i, bit := range bits {
		buf[i] = '0' + (bit & 1)
	}
	return string(buf)
}

func usage() {
	fmt.Fprintf(os.Stderr,
		"usage: participant [flags] <addr_file> <circuit_file> <input_file> <my_party>\n")
	flag.PrintDefaults()
}
