//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

// Package p2p implements the peer-to-peer transport for running the
// protocol parties in separate processes.
package p2p

import (
	"io"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/gcmpc/channel"
)

var (
	_ channel.Stream = &Conn{}
)

// ErrConnClosed is returned when writing to a closed connection.
var ErrConnClosed = errors.New("connection closed")

const (
	numBuffers   = 3
	writeBufSize = 64 * 1024
	readBufSize  = 1024 * 1024
)

// IOStats contains the I/O statistics of a connection.
type IOStats struct {
	Sent    uint64
	Recvd   uint64
	Flushed uint64
}

// Add returns the sum of the stats and o.
func (stats IOStats) Add(o IOStats) IOStats {
	return IOStats{
		Sent:    stats.Sent + o.Sent,
		Recvd:   stats.Recvd + o.Recvd,
		Flushed: stats.Flushed + o.Flushed,
	}
}

// Sum returns sum of sent and received bytes.
func (stats IOStats) Sum() uint64 {
	return stats.Sent + stats.Recvd
}

// Conn implements a buffered protocol connection. Writes collect into
// a write buffer which Flush hands to a writer goroutine. The
// connection has numBuffers write buffers so the party can keep
// garbling while earlier buffers are being sent.
type Conn struct {
	conn      io.ReadWriter
	writeBuf  []byte
	writePos  int
	readBuf   []byte
	readStart int
	readEnd   int
	closed    bool

	sent    atomic.Uint64
	recvd   atomic.Uint64
	flushed atomic.Uint64

	free    chan []byte
	pending chan []byte
	err     atomic.Pointer[error]
}

// NewConn creates a new connection around the argument connection.
func NewConn(conn io.ReadWriter) *Conn {
	c := &Conn{
		conn:    conn,
		readBuf: make([]byte, readBufSize),
		free:    make(chan []byte, numBuffers),
		pending: make(chan []byte, numBuffers),
	}
	for i := 0; i < numBuffers; i++ {
		c.free <- make([]byte, writeBufSize)
	}
	c.writeBuf = <-c.free

	go c.writer()

	return c
}

// Stats returns the connection's I/O statistics.
func (c *Conn) Stats() IOStats {
	return IOStats{
		Sent:    c.sent.Load(),
		Recvd:   c.recvd.Load(),
		Flushed: c.flushed.Load(),
	}
}

// writer sends the pending buffers. After the first write error, the
// remaining buffers are dropped and the error is reported from the
// following Flush calls.
func (c *Conn) writer() {
	for buf := range c.pending {
		if c.err.Load() == nil {
			if _, err := c.conn.Write(buf); err != nil {
				c.err.Store(&err)
			}
		}
		c.free <- buf[:cap(buf)]
	}
	close(c.free)
}

func (c *Conn) writeErr() error {
	if err := c.err.Load(); err != nil {
		return *err
	}
	return nil
}

// Write implements io.Writer. The data is buffered until the write
// buffer is full or the connection is flushed.
func (c *Conn) Write(data []byte) (int, error) {
	if c.closed {
		return 0, ErrConnClosed
	}
	var written int
	for len(data) > 0 {
		if c.writePos == len(c.writeBuf) {
			if err := c.Flush(); err != nil {
				return written, err
			}
		}
		n := copy(c.writeBuf[c.writePos:], data)
		c.writePos += n
		written += n
		data = data[n:]
	}
	return written, nil
}

// Flush hands the buffered data to the writer goroutine. It returns
// the error of an earlier failed write.
func (c *Conn) Flush() error {
	if c.closed || c.writePos == 0 {
		return c.writeErr()
	}
	c.sent.Add(uint64(c.writePos))
	c.flushed.Add(1)
	c.pending <- c.writeBuf[:c.writePos]

	c.writeBuf = <-c.free
	c.writePos = 0

	return c.writeErr()
}

// Read implements io.Reader. Small reads are served from the read
// buffer. A read into an empty buffer that is at least as large as
// the read buffer goes directly to the connection.
func (c *Conn) Read(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, nil
	}
	if c.readStart == c.readEnd {
		if len(data) >= len(c.readBuf) {
			n, err := c.conn.Read(data)
			c.recvd.Add(uint64(n))
			return n, err
		}
		c.readStart = 0
		c.readEnd = 0
		n, err := c.conn.Read(c.readBuf)
		c.recvd.Add(uint64(n))
		c.readEnd = n
		if n == 0 {
			if err == nil {
				err = io.ErrNoProgress
			}
			return 0, err
		}
	}
	n := copy(data, c.readBuf[c.readStart:c.readEnd])
	c.readStart += n
	return n, nil
}

// Close flushes any pending data, waits until the writer goroutine
// has sent it, and closes the underlying connection.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	err := c.Flush()
	c.closed = true

	close(c.pending)
	for range c.free {
	}
	if err == nil {
		err = c.writeErr()
	}
	closer, ok := c.conn.(io.Closer)
	if ok {
		if cerr := closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
