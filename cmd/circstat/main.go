//
// main.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Command circstat parses one or more Bristol-format circuit files and
// reports their gate statistics and estimated oblivious-transfer cost,
// without running any computation.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/markkurossi/gmw/circuit"
)

func main() {
	dump := flag.Bool("d", false, "Dump every gate")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Println("usage: circstat [-d] circuit...")
		return
	}

	for _, file := range flag.Args() {
		c, err := circuit.Parse(file)
		if err != nil {
			log.Fatalf("circstat: %s: %s", file, err)
		}

		fmt.Printf("%s: %s\n", file, c)
		fmt.Printf("  inputs=%d outputs=%d estimated OTs=%d\n",
			c.InputLength(), c.OutputLength, c.Cost())

		if *dump {
			c.Dump()
		}
	}
}
