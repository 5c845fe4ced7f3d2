//
// pipe.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package channel

import (
	"io"
	"sync"
)

var (
	_ Stream = &PipeEnd{}
)

// Pipe creates an in-process duplex channel pair. Anything written
// to the first endpoint can be read from the second and vice
// versa. Writes never block; reads block until data is available or
// the peer closes its end.
func Pipe() (*PipeEnd, *PipeEnd) {
	a := newQueue()
	b := newQueue()

	return &PipeEnd{
			r: a,
			w: b,
		}, &PipeEnd{
			r: b,
			w: a,
		}
}

// PipeEnd implements one endpoint of an in-process pipe.
type PipeEnd struct {
	r *queue
	w *queue
}

// Read implements io.Reader.
func (p *PipeEnd) Read(data []byte) (int, error) {
	return p.r.read(data)
}

// Write implements io.Writer.
func (p *PipeEnd) Write(data []byte) (int, error) {
	return p.w.write(data)
}

// Flush implements Stream.Flush. Pipe writes are delivered
// immediately so there is nothing to flush.
func (p *PipeEnd) Flush() error {
	return nil
}

// Close closes the endpoint. The peer reads io.EOF after it has
// consumed all pending data, and writes to the closed endpoint fail.
func (p *PipeEnd) Close() error {
	p.w.close()
	p.r.close()
	return nil
}

type queue struct {
	m      sync.Mutex
	c      *sync.Cond
	data   []byte
	closed bool
}

func newQueue() *queue {
	q := new(queue)
	q.c = sync.NewCond(&q.m)
	return q
}

func (q *queue) write(data []byte) (int, error) {
	q.m.Lock()
	defer q.m.Unlock()

	if q.closed {
		return 0, io.ErrClosedPipe
	}
	q.data = append(q.data, data...)
	q.c.Broadcast()

	return len(data), nil
}

func (q *queue) read(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, nil
	}
	q.m.Lock()
	defer q.m.Unlock()

	for len(q.data) == 0 && !q.closed {
		q.c.Wait()
	}
	if len(q.data) == 0 {
		return 0, io.EOF
	}
	n := copy(data, q.data)
	q.data = q.data[n:]
	if len(q.data) == 0 {
		q.data = nil
	}
	return n, nil
}

func (q *queue) close() {
	q.m.Lock()
	q.closed = true
	q.c.Broadcast()
	q.m.Unlock()
}
