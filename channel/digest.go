//
// digest.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package channel

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/poly1305"
)

// UniversalHash defines a keyed hash accumulating the bytes written
// to it. The verification channels keep one instance per checkpoint
// and reset it after each check.
type UniversalHash interface {
	io.Writer

	// Sum returns the digest of the data written since the last
	// reset.
	Sum() []byte

	// Reset clears the accumulated state and keeps the key.
	Reset()

	// Size returns the digest size in bytes.
	Size() int
}

// UniversalHashFunc creates universal hash instances from a key.
type UniversalHashFunc struct {
	Name    string
	KeySize int
	New     func(key []byte) (UniversalHash, error)
}

var (
	// Poly1305Hash creates Poly1305 universal hashes.
	Poly1305Hash = UniversalHashFunc{
		Name:    "poly1305",
		KeySize: 32,
		New:     NewPoly1305,
	}

	// Blake3Hash creates keyed BLAKE3 hashes.
	Blake3Hash = UniversalHashFunc{
		Name:    "blake3",
		KeySize: 32,
		New:     NewBlake3MAC,
	}
)

// Poly1305 implements UniversalHash with the Poly1305 polynomial
// evaluation hash.
type Poly1305 struct {
	key [32]byte
	mac *poly1305.MAC
}

// NewPoly1305 creates a new Poly1305 universal hash.
func NewPoly1305(key []byte) (UniversalHash, error) {
	if len(key) != 32 {
		return nil, errors.Newf("invalid poly1305 key size %d", len(key))
	}
	p := new(Poly1305)
	copy(p.key[:], key)
	p.Reset()
	return p, nil
}

// Write implements io.Writer.
func (p *Poly1305) Write(data []byte) (int, error) {
	return p.mac.Write(data)
}

// Sum implements UniversalHash.Sum.
func (p *Poly1305) Sum() []byte {
	return p.mac.Sum(nil)
}

// Reset implements UniversalHash.Reset.
func (p *Poly1305) Reset() {
	p.mac = poly1305.New(&p.key)
}

// Size implements UniversalHash.Size.
func (p *Poly1305) Size() int {
	return poly1305.TagSize
}

// Blake3MAC implements UniversalHash with keyed BLAKE3.
type Blake3MAC struct {
	h *blake3.Hasher
}

// NewBlake3MAC creates a new keyed BLAKE3 hash.
func NewBlake3MAC(key []byte) (UniversalHash, error) {
	h, err := blake3.NewKeyed(key)
	if err != nil {
		return nil, err
	}
	return &Blake3MAC{
		h: h,
	}, nil
}

// Write implements io.Writer.
func (b *Blake3MAC) Write(data []byte) (int, error) {
	return b.h.Write(data)
}

// Sum implements UniversalHash.Sum.
func (b *Blake3MAC) Sum() []byte {
	return b.h.Sum(nil)
}

// Reset implements UniversalHash.Reset.
func (b *Blake3MAC) Reset() {
	b.h.Reset()
}

// Size implements UniversalHash.Size.
func (b *Blake3MAC) Size() int {
	return b.h.Size()
}
