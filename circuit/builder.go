//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"fmt"
)

// Builder creates circuits programmatically. All inputs must be
// declared before the first gate.
type Builder struct {
	numWires int
	inputs   IO
	gates    []Gate
	stats    Stats
	zero     *Wire
	one      *Wire
}

// NewBuilder creates a new circuit builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) newWire() Wire {
	w := Wire(b.numWires)
	b.numWires++
	return w
}

func (b *Builder) add(op Operation, i0, i1 Wire) Wire {
	o := b.newWire()
	b.gates = append(b.gates, Gate{
		Input0: i0,
		Input1: i1,
		Output: o,
		Op:     op,
	})
	b.stats[op]++
	return o
}

// Input declares a new input argument of size bits.
func (b *Builder) Input(name string, size int) []Wire {
	if len(b.gates) > 0 {
		panic("input declared after gates")
	}
	b.inputs = append(b.inputs, IOArg{
		Name: name,
		Size: size,
	})
	result := make([]Wire, size)
	for i := range result {
		result[i] = b.newWire()
	}
	return result
}

// Zero returns the constant 0 wire.
func (b *Builder) Zero() Wire {
	if b.zero == nil {
		w := b.add(EQ, 0, 0)
		b.zero = &w
	}
	return *b.zero
}

// One returns the constant 1 wire.
func (b *Builder) One() Wire {
	if b.one == nil {
		w := b.add(EQ, 1, 0)
		b.one = &w
	}
	return *b.one
}

// XOR adds an XOR gate.
func (b *Builder) XOR(x, y Wire) Wire {
	return b.add(XOR, x, y)
}

// XNOR adds an XNOR gate.
func (b *Builder) XNOR(x, y Wire) Wire {
	return b.add(XNOR, x, y)
}

// AND adds an AND gate.
func (b *Builder) AND(x, y Wire) Wire {
	return b.add(AND, x, y)
}

// OR adds an OR gate.
func (b *Builder) OR(x, y Wire) Wire {
	return b.add(OR, x, y)
}

// INV adds an INV gate.
func (b *Builder) INV(x Wire) Wire {
	return b.add(INV, x, 0)
}

// Const returns the wires of the bits-wide constant v, least
// significant bit first.
func (b *Builder) Const(v uint64, bits int) []Wire {
	result := make([]Wire, bits)
	for i := range result {
		if v&(1<<i) != 0 {
			result[i] = b.One()
		} else {
			result[i] = b.Zero()
		}
	}
	return result
}

func checkWidth(op string, x, y []Wire) {
	if len(x) != len(y) {
		panic(fmt.Sprintf("%s: width mismatch: %d != %d", op, len(x), len(y)))
	}
}

// XORW returns x ^ y.
func (b *Builder) XORW(x, y []Wire) []Wire {
	checkWidth("xor", x, y)
	result := make([]Wire, len(x))
	for i := range x {
		result[i] = b.XOR(x[i], y[i])
	}
	return result
}

// ANDW returns x & y.
func (b *Builder) ANDW(x, y []Wire) []Wire {
	checkWidth("and", x, y)
	result := make([]Wire, len(x))
	for i := range x {
		result[i] = b.AND(x[i], y[i])
	}
	return result
}

// INVW returns ^x.
func (b *Builder) INVW(x []Wire) []Wire {
	result := make([]Wire, len(x))
	for i := range x {
		result[i] = b.INV(x[i])
	}
	return result
}

// Add returns x + y modulo 2^len(x). The full adders compute the carry
// as cin ^ ((x ^ cin) & (y ^ cin)) with one AND gate per bit.
func (b *Builder) Add(x, y []Wire) []Wire {
	checkWidth("add", x, y)
	result := make([]Wire, len(x))

	// Half adder.
	result[0] = b.XOR(x[0], y[0])
	if len(x) == 1 {
		return result
	}
	cin := b.AND(x[0], y[0])

	for i := 1; i < len(x); i++ {
		w1 := b.XOR(y[i], cin)
		result[i] = b.XOR(x[i], w1)
		if i+1 < len(x) {
			w2 := b.XOR(x[i], cin)
			w3 := b.AND(w1, w2)
			cin = b.XOR(cin, w3)
		}
	}
	return result
}

// RotR rotates x right by n bits. Rotations are free.
func (b *Builder) RotR(x []Wire, n int) []Wire {
	result := make([]Wire, len(x))
	for i := range x {
		result[i] = x[(i+n)%len(x)]
	}
	return result
}

// RotL rotates x left by n bits.
func (b *Builder) RotL(x []Wire, n int) []Wire {
	return b.RotR(x, len(x)-n%len(x))
}

// Choose returns the bits of y where x is set and the bits of z
// elsewhere.
func (b *Builder) Choose(x, y, z []Wire) []Wire {
	return b.XORW(z, b.ANDW(x, b.XORW(y, z)))
}

// Majority returns the bitwise majority of x, y, and z.
func (b *Builder) Majority(x, y, z []Wire) []Wire {
	return b.XORW(x, b.ANDW(b.XORW(x, y), b.XORW(x, z)))
}

// XORConst returns x ^ c where c holds the constant bits, least
// significant bit first. Bits of c beyond 64 are zero.
func (b *Builder) XORConst(x []Wire, c uint64) []Wire {
	result := make([]Wire, len(x))
	for i := range x {
		if i < 64 && c&(1<<i) != 0 {
			result[i] = b.INV(x[i])
		} else {
			result[i] = x[i]
		}
	}
	return result
}

// ShR shifts x right by n bits.
func (b *Builder) ShR(x []Wire, n int) []Wire {
	result := make([]Wire, len(x))
	for i := range x {
		if i+n < len(x) {
			result[i] = x[i+n]
		} else {
			result[i] = b.Zero()
		}
	}
	return result
}

// Compile creates the circuit with the output arguments. The output
// wires are copied to the end of the wire space.
func (b *Builder) Compile(outputs ...[]Wire) *Circuit {
	var io IO
	var ws []Wire
	for _, o := range outputs {
		io = append(io, IOArg{
			Size: len(o),
		})
		ws = append(ws, o...)
	}
	for _, w := range ws {
		b.add(EQW, w, 0)
	}

	gates := make([]Gate, len(b.gates))
	copy(gates, b.gates)

	return &Circuit{
		NumGates: len(gates),
		NumWires: b.numWires,
		Inputs:   append(IO(nil), b.inputs...),
		Outputs:  io,
		Gates:    gates,
		Stats:    b.stats,
	}
}
