//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"math/big"
)

var aesRcon = [10]uint64{
	0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80, 0x1b, 0x36,
}

// NewAES128 creates the AES-128 block encryption circuit. The inputs
// are the 128-bit key and the 128-bit plaintext block and the output
// is the ciphertext block. Blocks are packed with AESBlock: the byte
// i occupies the bits [8i, 8i+8).
func NewAES128() *Circuit {
	b := NewBuilder()

	keyIn := b.Input("key", 128)
	blockIn := b.Input("block", 128)

	key := aesBytes(keyIn)
	state := aesBytes(blockIn)

	// Key expansion into 44 words of 4 bytes.
	var w [44][4][]Wire
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			w[i][j] = key[4*i+j]
		}
	}
	for i := 4; i < 44; i++ {
		tmp := w[i-1]
		if i%4 == 0 {
			tmp = [4][]Wire{
				b.XORConst(b.aesSbox(tmp[1]), aesRcon[i/4-1]),
				b.aesSbox(tmp[2]),
				b.aesSbox(tmp[3]),
				b.aesSbox(tmp[0]),
			}
		}
		for j := 0; j < 4; j++ {
			w[i][j] = b.XORW(w[i-4][j], tmp[j])
		}
	}
	addRoundKey := func(round int) {
		for c := 0; c < 4; c++ {
			for r := 0; r < 4; r++ {
				state[4*c+r] = b.XORW(state[4*c+r], w[4*round+c][r])
			}
		}
	}

	addRoundKey(0)
	for round := 1; round <= 10; round++ {
		for i := range state {
			state[i] = b.aesSbox(state[i])
		}
		var shifted [16][]Wire
		for c := 0; c < 4; c++ {
			for r := 0; r < 4; r++ {
				shifted[4*c+r] = state[4*((c+r)%4)+r]
			}
		}
		state = shifted
		if round < 10 {
			for c := 0; c < 4; c++ {
				b.aesMixColumn(state[4*c : 4*c+4])
			}
		}
		addRoundKey(round)
	}

	var out []Wire
	for _, s := range state {
		out = append(out, s...)
	}
	return b.Compile(out)
}

func aesBytes(bits []Wire) [16][]Wire {
	var result [16][]Wire
	for i := range result {
		result[i] = bits[8*i : 8*i+8]
	}
	return result
}

// xorAll returns the XOR of the wires or the constant 0 for an empty
// list.
func (b *Builder) xorAll(ws []Wire) Wire {
	if len(ws) == 0 {
		return b.Zero()
	}
	result := ws[0]
	for _, w := range ws[1:] {
		result = b.XOR(result, w)
	}
	return result
}

// gfReduce reduces the polynomial terms modulo the AES polynomial
// x^8 + x^4 + x^3 + x + 1.
func (b *Builder) gfReduce(terms [15][]Wire) []Wire {
	for k := 14; k >= 8; k-- {
		for _, d := range []int{4, 5, 7, 8} {
			terms[k-d] = append(terms[k-d], terms[k]...)
		}
	}
	result := make([]Wire, 8)
	for i := range result {
		result[i] = b.xorAll(terms[i])
	}
	return result
}

func (b *Builder) gfMul(x, y []Wire) []Wire {
	var terms [15][]Wire
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			terms[i+j] = append(terms[i+j], b.AND(x[i], y[j]))
		}
	}
	return b.gfReduce(terms)
}

// gfSquare squares x with XOR gates only.
func (b *Builder) gfSquare(x []Wire) []Wire {
	var terms [15][]Wire
	for i := 0; i < 8; i++ {
		terms[2*i] = []Wire{x[i]}
	}
	return b.gfReduce(terms)
}

// aesSbox computes the S-box as the affine transform of x^254.
func (b *Builder) aesSbox(x []Wire) []Wire {
	x2 := b.gfSquare(x)
	x3 := b.gfMul(x2, x)
	x6 := b.gfSquare(x3)
	x7 := b.gfMul(x6, x)
	x12 := b.gfSquare(x6)
	x15 := b.gfMul(x12, x3)
	x120 := b.gfSquare(b.gfSquare(b.gfSquare(x15)))
	x127 := b.gfMul(x120, x7)
	inv := b.gfSquare(x127)

	result := make([]Wire, 8)
	for i := range result {
		result[i] = b.xorAll([]Wire{
			inv[i], inv[(i+4)%8], inv[(i+5)%8], inv[(i+6)%8], inv[(i+7)%8],
		})
	}
	return b.XORConst(result, 0x63)
}

// xtime multiplies x by 2 in GF(2^8).
func (b *Builder) xtime(x []Wire) []Wire {
	result := make([]Wire, 8)
	result[0] = x[7]
	for i := 1; i < 8; i++ {
		result[i] = x[i-1]
	}
	for _, i := range []int{1, 3, 4} {
		result[i] = b.XOR(result[i], x[7])
	}
	return result
}

func (b *Builder) aesMixColumn(col [][]Wire) {
	var a, a2 [4][]Wire
	for i := range a {
		a[i] = col[i]
		a2[i] = b.xtime(col[i])
	}
	for i := range a {
		// 2a[i] ^ 3a[i+1] ^ a[i+2] ^ a[i+3]
		r := b.XORW(a2[i], b.XORW(a2[(i+1)%4], a[(i+1)%4]))
		col[i] = b.XORW(r, b.XORW(a[(i+2)%4], a[(i+3)%4]))
	}
}

// AESBlock packs a 16-byte key or block into a circuit argument value.
func AESBlock(data []byte) *big.Int {
	le := make([]byte, len(data))
	for i, v := range data {
		le[len(data)-1-i] = v
	}
	return new(big.Int).SetBytes(le)
}

// AESBytes unpacks a 128-bit circuit value into 16 bytes.
func AESBytes(v *big.Int) []byte {
	be := v.FillBytes(make([]byte, 16))
	result := make([]byte, 16)
	for i, b := range be {
		result[15-i] = b
	}
	return result
}
