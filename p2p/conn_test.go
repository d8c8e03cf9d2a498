//
// conn_test.go
//
// Copyright (c) 2023 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"bytes"
	"testing"
)

func TestConn(t *testing.T) {
	p0, p1 := Pipe()

	values := [][]byte{
		[]byte("Hello, world!"),
		[]byte(""),
		bytes.Repeat([]byte{0x42}, 4096),
	}

	done := make(chan error, 1)
	go func() {
		for _, v := range values {
			if err := p0.SendData(v); err != nil {
				done <- err
				return
			}
		}
		if err := p0.SendUint32(12345); err != nil {
			done <- err
			return
		}
		done <- p0.Close()
	}()

	for _, want := range values {
		got, err := p1.ReceiveData()
		if err != nil {
			t.Fatalf("ReceiveData: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("ReceiveData: got %x, want %x", got, want)
		}
	}
	v, err := p1.ReceiveUint32()
	if err != nil {
		t.Fatalf("ReceiveUint32: %v", err)
	}
	if v != 12345 {
		t.Fatalf("ReceiveUint32: got %d, want 12345", v)
	}
	if err := <-done; err != nil {
		t.Fatalf("writer failed: %v", err)
	}
}
