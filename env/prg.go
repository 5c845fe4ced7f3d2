//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package env

import (
	"io"

	"github.com/markkurossi/gcmpc/ot"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/chacha20"
)

// PRG implements a deterministic pseudorandom generator. Two PRGs
// created from the same seed produce the same byte stream.
type PRG struct {
	cipher *chacha20.Cipher
}

var (
	_ io.Reader = &PRG{}
)

// NewPRG creates a new PRG from the seed label.
func NewPRG(seed ot.Label) *PRG {
	var data ot.LabelData
	seed.GetData(&data)

	h := blake3.NewDeriveKey("gcmpc prg seed")
	h.Write(data[:])

	var key [chacha20.KeySize]byte
	h.Sum(key[:0])

	var nonce [chacha20.NonceSize]byte
	cipher, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		panic(err)
	}
	return &PRG{
		cipher: cipher,
	}
}

// Read implements io.Reader.
func (prg *PRG) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	prg.cipher.XORKeyStream(p, p)
	return len(p), nil
}
