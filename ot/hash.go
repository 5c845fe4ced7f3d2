//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//
// Efficient Garbling from a Fixed-Key Blockcipher
//  - https://eprint.iacr.org/2013/426.pdf
//
// Better Concrete Security for Half-Gates Garbling (in the
// Multi-Instance Setting)
//  - https://eprint.iacr.org/2019/1168.pdf

package ot

import (
	"crypto/aes"
	"crypto/cipher"
)

var (
	fixedKey = LabelData{
		0x61, 0x7e, 0x8d, 0xa2, 0xa0, 0x51, 0x1e, 0x96,
		0x5e, 0x41, 0xc2, 0x9b, 0x15, 0x3f, 0xc7, 0x7a,
	}
	fixedCipher cipher.Block
)

func init() {
	block, err := aes.NewCipher(fixedKey[:])
	if err != nil {
		panic(err)
	}
	fixedCipher = block
}

func permute(l Label) Label {
	var data LabelData
	l.GetData(&data)
	fixedCipher.Encrypt(data[:], data[:])

	var result Label
	result.SetData(&data)
	return result
}

// Hash computes the tweakable circular correlation robust hash
// π(π(l) ⊕ tweak) ⊕ π(l) where π is the fixed-key AES permutation.
func (l Label) Hash(tweak Label) Label {
	pl := permute(l)
	h := permute(pl.Xored(tweak))
	h.Xor(pl)
	return h
}
