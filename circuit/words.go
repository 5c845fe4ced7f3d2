//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"encoding/binary"
	"math/big"

	"github.com/cockroachdb/errors"
)

// MaxBlockMessage is the longest message that fits into one padded
// 64-byte hash block.
const MaxBlockMessage = 55

// ErrMessageTooLong is returned when a message does not fit into one
// padded hash block.
var ErrMessageTooLong = errors.New("message too long for one block")

// PackWords packs 32-bit words into a circuit argument value. The
// word i occupies the bits [32i, 32i+32).
func PackWords(words []uint32) *big.Int {
	result := new(big.Int)
	for i := len(words) - 1; i >= 0; i-- {
		result.Lsh(result, 32)
		result.Or(result, big.NewInt(int64(words[i])))
	}
	return result
}

// BlockWords returns the 16 big-endian message words of the 64-byte
// block.
func BlockWords(block []byte) []uint32 {
	result := make([]uint32, 16)
	for i := range result {
		result[i] = binary.BigEndian.Uint32(block[i*4:])
	}
	return result
}

// PadBlock pads a short message into one 64-byte block with the
// SHA-1 and SHA-2 padding.
func PadBlock(msg []byte) ([]byte, error) {
	if len(msg) > MaxBlockMessage {
		return nil, errors.Wrapf(ErrMessageTooLong, "%d bytes", len(msg))
	}
	block := make([]byte, 64)
	copy(block, msg)
	block[len(msg)] = 0x80
	binary.BigEndian.PutUint64(block[56:], uint64(len(msg))*8)
	return block, nil
}

// UnpackDigest converts the first n words of a compression output
// into big-endian digest bytes.
func UnpackDigest(state *big.Int, n int) []byte {
	digest := make([]byte, 4*n)
	mask := big.NewInt(0xffffffff)
	for i := 0; i < n; i++ {
		v := new(big.Int).Rsh(state, uint(32*i))
		v.And(v, mask)
		binary.BigEndian.PutUint32(digest[i*4:], uint32(v.Uint64()))
	}
	return digest
}

// SHA256Digest converts the SHA-256 compression output into a digest.
func SHA256Digest(state *big.Int) []byte {
	return UnpackDigest(state, 8)
}

// SHA1Digest converts the SHA-1 compression output into a digest.
func SHA1Digest(state *big.Int) []byte {
	return UnpackDigest(state, 5)
}
