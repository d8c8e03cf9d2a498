//
// mesh.go
//
// Copyright (c) 2025 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"fmt"
	"log"
	"net"
	"time"
)

// connectRetryDelay is how long Connect waits between outbound dial
// attempts after a connection is refused.
const connectRetryDelay = 2 * time.Second

// connectMaxAttempts bounds how many times Connect retries a single
// outbound dial before giving up.
const connectMaxAttempts = 30

// Connect establishes the full mesh of transport connections for
// party me, given the addresses of all len(addrs) parties in
// party-index order. For every ordered pair (i,j) with i<j, the
// lower-indexed party accepts the connection and the higher-indexed
// party dials it: party me therefore accepts exactly me inbound
// connections, from parties 0..me-1, and then dials outbound to
// parties me+1..len(addrs)-1. This rule is symmetric and known to
// every party in advance, so the mesh always completes without
// requiring a leader or any further coordination.
func Connect(me int, addrs []string) (map[int]*Conn, error) {
	if me < 0 || me >= len(addrs) {
		return nil, fmt.Errorf("p2p: party index %d out of range [0,%d)",
			me, len(addrs))
	}

	listener, err := net.Listen("tcp", addrs[me])
	if err != nil {
		return nil, err
	}
	defer listener.Close()

	conns := make(map[int]*Conn)

	for i := 0; i < me; i++ {
		nc, err := listener.Accept()
		if err != nil {
			return nil, err
		}
		conn := NewConn(nc)
		id, err := conn.ReceiveUint32()
		if err != nil {
			conn.Close()
			return nil, err
		}
		if id < 0 || id >= me {
			conn.Close()
			return nil, fmt.Errorf("p2p: unexpected peer id %d from inbound connection", id)
		}
		if _, ok := conns[id]; ok {
			conn.Close()
			return nil, fmt.Errorf("p2p: duplicate connection from party %d", id)
		}
		conns[id] = conn
	}

	for i := me + 1; i < len(addrs); i++ {
		conn, err := dial(addrs[i], me)
		if err != nil {
			return nil, err
		}
		conns[i] = conn
	}

	return conns, nil
}

// dial connects to addr and announces me as the connecting party's
// index, retrying with a fixed delay while the remote end has not yet
// started listening.
func dial(addr string, me int) (*Conn, error) {
	var lastErr error
	for attempt := 0; attempt < connectMaxAttempts; attempt++ {
		nc, err := net.Dial("tcp", addr)
		if err != nil {
			lastErr = err
			log.Printf("p2p %d: connect to %s failed: %s, retrying in %s",
				me, addr, err, connectRetryDelay)
			time.Sleep(connectRetryDelay)
			continue
		}
		conn := NewConn(nc)
		if err := conn.SendUint32(me); err != nil {
			conn.Close()
			return nil, err
		}
		if err := conn.Flush(); err != nil {
			conn.Close()
			return nil, err
		}
		return conn, nil
	}
	return nil, fmt.Errorf("p2p %d: giving up connecting to %s: %w",
		me, addr, lastErr)
}
