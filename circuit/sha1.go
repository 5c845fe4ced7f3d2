//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

// SHA1IV is the SHA-1 initial hash value.
var SHA1IV = []uint32{
	0x67452301, 0xefcdab89, 0x98badcfe, 0x10325476, 0xc3d2e1f0,
}

var sha1K = [4]uint64{
	0x5a827999, 0x6ed9eba1, 0x8f1bbcdc, 0xca62c1d6,
}

// NewSHA1Compression creates the SHA-1 compression function circuit.
// The inputs are the 160-bit chaining state and the 512-bit message
// block as words packed with PackWords. The output is the next
// chaining state.
func NewSHA1Compression() *Circuit {
	b := NewBuilder()

	stateIn := b.Input("state", 160)
	blockIn := b.Input("block", 512)

	var state [5][]Wire
	for i := range state {
		state[i] = stateIn[i*32 : (i+1)*32]
	}
	var w [80][]Wire
	for i := 0; i < 16; i++ {
		w[i] = blockIn[i*32 : (i+1)*32]
	}
	for t := 16; t < 80; t++ {
		x := b.XORW(b.XORW(w[t-3], w[t-8]), b.XORW(w[t-14], w[t-16]))
		w[t] = b.RotL(x, 1)
	}

	a, bb, c, d, e := state[0], state[1], state[2], state[3], state[4]

	for t := 0; t < 80; t++ {
		var f []Wire
		switch t / 20 {
		case 0:
			f = b.Choose(bb, c, d)
		case 2:
			f = b.Majority(bb, c, d)
		default:
			f = b.XORW(b.XORW(bb, c), d)
		}
		tmp := b.Add(b.Add(b.RotL(a, 5), f),
			b.Add(b.Add(e, b.Const(sha1K[t/20], 32)), w[t]))

		e = d
		d = c
		c = b.RotL(bb, 30)
		bb = a
		a = tmp
	}

	vars := [5][]Wire{a, bb, c, d, e}
	var out []Wire
	for i := range vars {
		out = append(out, b.Add(state[i], vars[i])...)
	}
	return b.Compile(out)
}
