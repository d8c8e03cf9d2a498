//
// pipe.go
//
// Copyright (c) 2023 Markku Rossi
//
// All rights reserved.

package ot

import (
	"encoding/binary"
	"fmt"
	"io"
)

var _ IO = &Pipe{}

// Pipe is an in-memory IO, so ot/dh_test.go can run Send and Receive
// against each other directly, without going through a p2p.PeerLink
// or any real socket.
type Pipe struct {
	buf [64 * 1024]byte
	r   *io.PipeReader
	w   *io.PipeWriter
}

// NewPipe creates the two ends of one in-memory OT transfer: messages
// written to one end's SendData/SendUint32 arrive at the other end's
// ReceiveData/ReceiveUint32, and vice versa.
func NewPipe() (*Pipe, *Pipe) {
	ar, aw := io.Pipe()
	br, bw := io.Pipe()

	return &Pipe{r: ar, w: bw}, &Pipe{r: br, w: aw}
}

// SendData sends a length-prefixed binary value.
func (p *Pipe) SendData(val []byte) error {
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(val)))
	if _, err := p.w.Write(header[:]); err != nil {
		return err
	}
	_, err := p.w.Write(val)
	return err
}

// SendUint32 sends a uint32 value.
func (p *Pipe) SendUint32(val int) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(val))
	_, err := p.w.Write(buf[:])
	return err
}

// Flush is a no-op: Pipe has no internal buffering to drain.
func (p *Pipe) Flush() error {
	return nil
}

// Close closes the pipe's write side.
func (p *Pipe) Close() error {
	return p.w.Close()
}

// ReceiveData receives one length-prefixed binary value.
func (p *Pipe) ReceiveData() ([]byte, error) {
	length, err := p.ReceiveUint32()
	if err != nil {
		return nil, err
	}
	if length > len(p.buf) {
		return nil, fmt.Errorf("ot: pipe message too large: %d > %d",
			length, len(p.buf))
	}
	if _, err := io.ReadFull(p.r, p.buf[:length]); err != nil {
		return nil, err
	}
	result := make([]byte, length)
	copy(result, p.buf[:length])
	return result, nil
}

// ReceiveUint32 receives one uint32 value.
func (p *Pipe) ReceiveUint32() (int, error) {
	var buf [4]byte
	if _, err := io.ReadFull(p.r, buf[:]); err != nil {
		return 0, err
	}
	return int(binary.BigEndian.Uint32(buf[:])), nil
}
