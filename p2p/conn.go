//
// Copyright (c) 2019 Markku Rossi
//
// All rights reserved.
//

// Package p2p implements the peer-to-peer transport that connects the
// parties of a GMW computation: a length-prefixed framed channel, a
// deadlock-free mesh rendezvous, and an authenticated, encrypted
// PeerLink built on top of both.
package p2p

import (
	"bufio"
	"encoding/binary"
	"io"
)

// Conn is a length-prefixed framed channel over an underlying
// io.ReadWriter. Every SendData call is preceded by a 4-byte
// big-endian length, and ReceiveData blocks until a complete message
// has arrived.
type Conn struct {
	closer io.Closer
	io     *bufio.ReadWriter
	Stats  IOStats
}

// IOStats tracks the bytes a Conn has sent and received.
type IOStats struct {
	Sent  uint64
	Recvd uint64
}

// Sub returns the difference between two IOStats snapshots.
func (stats IOStats) Sub(o IOStats) IOStats {
	return IOStats{
		Sent:  stats.Sent - o.Sent,
		Recvd: stats.Recvd - o.Recvd,
	}
}

// Sum returns the total bytes transferred, sent plus received.
func (stats IOStats) Sum() uint64 {
	return stats.Sent + stats.Recvd
}

// NewConn wraps conn in a framed Conn.
func NewConn(conn io.ReadWriter) *Conn {
	closer, _ := conn.(io.Closer)

	return &Conn{
		closer: closer,
		io: bufio.NewReadWriter(bufio.NewReader(conn),
			bufio.NewWriter(conn)),
	}
}

// Flush flushes any buffered output.
func (c *Conn) Flush() error {
	return c.io.Flush()
}

// Close flushes and closes the underlying connection.
func (c *Conn) Close() error {
	if err := c.Flush(); err != nil {
		return err
	}
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

// SendUint32 sends val as a 4-byte big-endian integer.
func (c *Conn) SendUint32(val int) error {
	err := binary.Write(c.io, binary.BigEndian, uint32(val))
	if err != nil {
		return err
	}
	c.Stats.Sent += 4
	return nil
}

// SendData sends val as a length-prefixed byte string.
func (c *Conn) SendData(val []byte) error {
	err := c.SendUint32(len(val))
	if err != nil {
		return err
	}
	_, err = c.io.Write(val)
	if err != nil {
		return err
	}
	c.Stats.Sent += uint64(len(val))
	return nil
}

// ReceiveUint32 reads a 4-byte big-endian integer.
func (c *Conn) ReceiveUint32() (int, error) {
	var buf [4]byte

	_, err := io.ReadFull(c.io, buf[:])
	if err != nil {
		return 0, err
	}
	c.Stats.Recvd += 4

	return int(binary.BigEndian.Uint32(buf[:])), nil
}

// ReceiveData reads a length-prefixed byte string.
func (c *Conn) ReceiveData() ([]byte, error) {
	length, err := c.ReceiveUint32()
	if err != nil {
		return nil, err
	}

	result := make([]byte, length)
	_, err = io.ReadFull(c.io, result)
	if err != nil {
		return nil, err
	}
	c.Stats.Recvd += uint64(length)

	return result, nil
}
