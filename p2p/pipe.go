//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"net"
)

// Pipe creates a connected Conn pair over a synchronous in-memory
// network connection. Unlike channel.Pipe, a flush blocks until the
// peer reads the data, so the pair behaves like a TCP connection with
// the parties running the handshake and the write buffering of the
// real transport.
func Pipe() (*Conn, *Conn) {
	a, b := net.Pipe()
	return NewConn(a), NewConn(b)
}
