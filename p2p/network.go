//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"net"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/gcmpc/channel"
	"github.com/markkurossi/gcmpc/env"
	"go.uber.org/zap"
)

// ErrClosed is returned when the network is closed while waiting for
// a peer.
var ErrClosed = errors.New("network closed")

// Network implements peer-to-peer network. The peers identify
// themselves with their party IDs when connecting.
type Network struct {
	ID         int
	RetryDelay time.Duration
	log        *zap.Logger
	m          sync.Mutex
	c          *sync.Cond
	closed     bool
	peers      map[int]*Conn
	listener   net.Listener
}

// NewNetwork creats a new peer-to-peer network listening for peer
// connections at addr.
func NewNetwork(cfg *env.Config, addr string, id int) (*Network, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	nw := &Network{
		ID:         id,
		RetryDelay: 5 * time.Second,
		log:        cfg.GetLogger().With(zap.Int("network", id)),
		peers:      make(map[int]*Conn),
		listener:   listener,
	}
	nw.c = sync.NewCond(&nw.m)
	go nw.acceptLoop()
	return nw, nil
}

// Addr returns the network's listener address.
func (nw *Network) Addr() net.Addr {
	return nw.listener.Addr()
}

// Close closes the network and all peer connections.
func (nw *Network) Close() error {
	nw.m.Lock()
	nw.closed = true
	peers := nw.peers
	nw.peers = make(map[int]*Conn)
	nw.c.Broadcast()
	nw.m.Unlock()

	err := nw.listener.Close()
	for _, conn := range peers {
		if cerr := conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// AddPeer connects to the peer id at addr. The connection is retried
// until it succeeds or maxAttempts attempts have failed. If
// maxAttempts is 0, the connection is retried forever.
func (nw *Network) AddPeer(addr string, id, maxAttempts int) (*Conn, error) {
	for attempt := 1; ; attempt++ {
		nw.m.Lock()
		conn, ok := nw.peers[id]
		closed := nw.closed
		nw.m.Unlock()
		if ok {
			return conn, nil
		}
		if closed {
			return nil, ErrClosed
		}

		nw.log.Debug("connecting to peer", zap.Int("peer", id),
			zap.String("addr", addr))
		nc, err := net.Dial("tcp", addr)
		if err != nil {
			if maxAttempts > 0 && attempt >= maxAttempts {
				return nil, errors.Wrapf(err, "connect to peer %d", id)
			}
			nw.log.Debug("connect failed", zap.Int("peer", id),
				zap.Duration("retry", nw.RetryDelay), zap.Error(err))
			<-time.After(nw.RetryDelay)
			continue
		}
		conn = NewConn(nc)
		ch := channel.New(conn)
		if err := ch.WriteU32(uint32(nw.ID)); err != nil {
			conn.Close()
			return nil, err
		}
		if err := ch.Flush(); err != nil {
			conn.Close()
			return nil, err
		}
		if err := nw.newPeer(conn, id); err != nil {
			return nil, err
		}
		return conn, nil
	}
}

// Peer waits until the peer id has connected to this network and
// returns its connection.
func (nw *Network) Peer(id int) (*Conn, error) {
	nw.m.Lock()
	defer nw.m.Unlock()

	for {
		if nw.closed {
			return nil, ErrClosed
		}
		conn, ok := nw.peers[id]
		if ok {
			return conn, nil
		}
		nw.c.Wait()
	}
}

// Stats returns the I/O stats from the network.
func (nw *Network) Stats() IOStats {
	nw.m.Lock()
	defer nw.m.Unlock()

	var result IOStats
	for _, conn := range nw.peers {
		result = result.Add(conn.Stats())
	}
	return result
}

func (nw *Network) acceptLoop() {
	for {
		nc, err := nw.listener.Accept()
		if err != nil {
			nw.log.Debug("accept failed", zap.Error(err))
			return
		}
		conn := NewConn(nc)

		// Read peer ID.
		id, err := channel.New(conn).ReadU32()
		if err != nil {
			nw.log.Warn("peer handshake failed", zap.Error(err))
			conn.Close()
			continue
		}
		if err := nw.newPeer(conn, int(id)); err != nil {
			nw.log.Warn("inbound connection error", zap.Error(err))
		}
	}
}

func (nw *Network) newPeer(conn *Conn, id int) error {
	nw.m.Lock()
	_, ok := nw.peers[id]
	if ok || nw.closed {
		nw.m.Unlock()
		conn.Close()
		if ok {
			return errors.Newf("peer %d already connected", id)
		}
		return ErrClosed
	}
	nw.peers[id] = conn
	nw.c.Broadcast()
	nw.m.Unlock()

	nw.log.Debug("peer connected", zap.Int("peer", id))
	return nil
}
