//
// Copyright (c) 2025 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"io"
)

// Pipe wires up one in-memory link between two parties, as a pair of
// framed Conns backed by io.Pipe instead of a TCP socket. Tests use it
// to build a full N-party mesh (one Pipe per ordered pair) without a
// Mesh Connector or any real networking; both ends see exactly the
// framing and authentication a real link would.
func Pipe() (*Conn, *Conn) {
	near, far := pipeHalves()
	return NewConn(near), NewConn(far)
}

// pipeHalves builds the two io.ReadWriteClosers a Pipe connects,
// crossing each side's writer to the other's reader.
func pipeHalves() (io.ReadWriteCloser, io.ReadWriteCloser) {
	ar, aw := io.Pipe()
	br, bw := io.Pipe()
	return &pipeEnd{r: ar, w: bw}, &pipeEnd{r: br, w: aw}
}

// pipeEnd is one side of an in-memory duplex pipe.
type pipeEnd struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (p *pipeEnd) Read(data []byte) (int, error) {
	return p.r.Read(data)
}

func (p *pipeEnd) Write(data []byte) (int, error) {
	return p.w.Write(data)
}

func (p *pipeEnd) Close() error {
	if err := p.r.Close(); err != nil {
		return err
	}
	return p.w.Close()
}
