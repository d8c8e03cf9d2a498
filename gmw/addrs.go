//
// addrs.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package gmw

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseAddrFile reads an address file: one "host:port" line per
// party, in party-index order. Blank trailing lines are ignored.
func ParseAddrFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseAddrs(f)
}

// ParseAddrs reads the address-file format from in. See
// ParseAddrFile.
func ParseAddrs(in io.Reader) ([]string, error) {
	var lines []string

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		if line == "" {
			return nil, fmt.Errorf("address file: blank line %d", i+1)
		}
	}
	return lines, nil
}
