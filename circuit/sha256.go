//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

var sha256K = [64]uint64{
	0x428a2f98, 0x71374491, 0xb5c0fbcf, 0xe9b5dba5,
	0x3956c25b, 0x59f111f1, 0x923f82a4, 0xab1c5ed5,
	0xd807aa98, 0x12835b01, 0x243185be, 0x550c7dc3,
	0x72be5d74, 0x80deb1fe, 0x9bdc06a7, 0xc19bf174,
	0xe49b69c1, 0xefbe4786, 0x0fc19dc6, 0x240ca1cc,
	0x2de92c6f, 0x4a7484aa, 0x5cb0a9dc, 0x76f988da,
	0x983e5152, 0xa831c66d, 0xb00327c8, 0xbf597fc7,
	0xc6e00bf3, 0xd5a79147, 0x06ca6351, 0x14292967,
	0x27b70a85, 0x2e1b2138, 0x4d2c6dfc, 0x53380d13,
	0x650a7354, 0x766a0abb, 0x81c2c92e, 0x92722c85,
	0xa2bfe8a1, 0xa81a664b, 0xc24b8b70, 0xc76c51a3,
	0xd192e819, 0xd6990624, 0xf40e3585, 0x106aa070,
	0x19a4c116, 0x1e376c08, 0x2748774c, 0x34b0bcb5,
	0x391c0cb3, 0x4ed8aa4a, 0x5b9cca4f, 0x682e6ff3,
	0x748f82ee, 0x78a5636f, 0x84c87814, 0x8cc70208,
	0x90befffa, 0xa4506ceb, 0xbef9a3f7, 0xc67178f2,
}

// SHA256IV is the SHA-256 initial hash value.
var SHA256IV = []uint32{
	0x6a09e667, 0xbb67ae85, 0x3c6ef372, 0xa54ff53a,
	0x510e527f, 0x9b05688c, 0x1f83d9ab, 0x5be0cd19,
}

// NewSHA256Compression creates the SHA-256 compression function
// circuit. The circuit's first input is the 256-bit chaining state
// and the second input is the 512-bit message block, both as 32-bit
// words packed with PackWords. The output is the next chaining
// state.
func NewSHA256Compression() *Circuit {
	b := NewBuilder()

	stateIn := b.Input("state", 256)
	blockIn := b.Input("block", 512)

	var state [8][]Wire
	for i := 0; i < 8; i++ {
		state[i] = stateIn[i*32 : (i+1)*32]
	}
	var w [64][]Wire
	for i := 0; i < 16; i++ {
		w[i] = blockIn[i*32 : (i+1)*32]
	}

	xor3 := func(x, y, z []Wire) []Wire {
		return b.XORW(b.XORW(x, y), z)
	}

	for t := 16; t < 64; t++ {
		s0 := xor3(b.RotR(w[t-15], 7), b.RotR(w[t-15], 18), b.ShR(w[t-15], 3))
		s1 := xor3(b.RotR(w[t-2], 17), b.RotR(w[t-2], 19), b.ShR(w[t-2], 10))
		w[t] = b.Add(b.Add(s1, w[t-7]), b.Add(s0, w[t-16]))
	}

	a, bb, c, d := state[0], state[1], state[2], state[3]
	e, f, g, h := state[4], state[5], state[6], state[7]

	for t := 0; t < 64; t++ {
		S1 := xor3(b.RotR(e, 6), b.RotR(e, 11), b.RotR(e, 25))
		ch := b.Choose(e, f, g)
		t1 := b.Add(b.Add(h, S1), b.Add(ch, b.Add(b.Const(sha256K[t], 32), w[t])))

		S0 := xor3(b.RotR(a, 2), b.RotR(a, 13), b.RotR(a, 22))
		maj := b.Majority(a, bb, c)
		t2 := b.Add(S0, maj)

		h = g
		g = f
		f = e
		e = b.Add(d, t1)
		d = c
		c = bb
		bb = a
		a = b.Add(t1, t2)
	}

	vars := [8][]Wire{a, bb, c, d, e, f, g, h}
	var out []Wire
	for i := 0; i < 8; i++ {
		out = append(out, b.Add(state[i], vars[i])...)
	}

	return b.Compile(out)
}
