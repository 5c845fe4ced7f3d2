//
// hash.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package channel

import (
	"github.com/zeebo/blake3"
)

var (
	_ Stream = &HashChannel{}
)

// HashChannel implements a stream that hashes all data read and
// written. Two peers that exchange data over hash channels compute
// the same transcript hash.
type HashChannel struct {
	s Stream
	h *blake3.Hasher
}

// NewHashChannel creates a transcript hashing stream around the
// argument stream.
func NewHashChannel(s Stream) *HashChannel {
	return &HashChannel{
		s: s,
		h: blake3.New(),
	}
}

// Read implements io.Reader.
func (h *HashChannel) Read(data []byte) (int, error) {
	n, err := h.s.Read(data)
	h.h.Write(data[:n])
	return n, err
}

// Write implements io.Writer.
func (h *HashChannel) Write(data []byte) (int, error) {
	n, err := h.s.Write(data)
	h.h.Write(data[:n])
	return n, err
}

// Flush implements Stream.Flush.
func (h *HashChannel) Flush() error {
	return h.s.Flush()
}

// Finish returns the transcript hash and resets the hash state.
func (h *HashChannel) Finish() [32]byte {
	var sum [32]byte
	h.h.Sum(sum[:0])
	h.h.Reset()
	return sum
}
