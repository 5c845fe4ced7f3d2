//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package fancy defines the gate-operation interface shared by the
// garbling, evaluating, and plaintext parties. Circuits are written
// once against Fancy and run by any of the implementations.
package fancy

// Fancy defines the gate operations over wires of type W. Every wire
// has a modulus q and all arithmetic is modulo q. Binary operations
// require their inputs to have the same modulus, with the exception of
// Mul that may combine a small modulus with a larger one.
type Fancy[W any] interface {
	// Constant returns a wire carrying the public value x mod q.
	Constant(x, q uint16) (W, error)

	// Add returns x + y.
	Add(x, y W) (W, error)

	// Sub returns x - y.
	Sub(x, y W) (W, error)

	// Cmul returns c·x.
	Cmul(x W, c uint16) (W, error)

	// Negate returns -x.
	Negate(x W) (W, error)

	// Mul returns x·y.
	Mul(x, y W) (W, error)

	// Proj maps the wire x to a new wire of modulus q with the truth
	// table tt: the result carries tt[x].
	Proj(x W, q uint16, tt []uint16) (W, error)

	// Output releases the decoding information of the wire x. Only
	// the evaluating party learns the value; other parties return
	// false.
	Output(x W) (uint16, bool, error)
}

// Reveal extends Fancy with the Reveal operation that exposes a wire's
// value to all parties.
type Reveal[W any] interface {
	Fancy[W]

	// Reveal returns the value of the wire x.
	Reveal(x W) (uint16, error)
}

// Input defines how parties bring private inputs into the
// computation. P is the party identifier type.
type Input[W any, P any] interface {
	// EncodeMany encodes the caller's private values.
	EncodeMany(values, moduli []uint16) ([]W, error)

	// ReceiveMany receives wires for the values of the party from.
	ReceiveMany(from P, moduli []uint16) ([]W, error)
}

// Encode encodes one private value.
func Encode[W any, P any](f Input[W, P], value, q uint16) (W, error) {
	ws, err := f.EncodeMany([]uint16{value}, []uint16{q})
	if err != nil {
		var zero W
		return zero, err
	}
	return ws[0], nil
}

// Receive receives one wire from the party from.
func Receive[W any, P any](f Input[W, P], from P, q uint16) (W, error) {
	ws, err := f.ReceiveMany(from, []uint16{q})
	if err != nil {
		var zero W
		return zero, err
	}
	return ws[0], nil
}

// OutputMany outputs all wires. The returned bool is true if the
// caller learned all values.
func OutputMany[W any](f Fancy[W], xs []W) ([]uint16, bool, error) {
	result := make([]uint16, len(xs))
	all := true
	for i, x := range xs {
		v, ok, err := f.Output(x)
		if err != nil {
			return nil, false, err
		}
		result[i] = v
		all = all && ok
	}
	return result, all, nil
}

// ManyRevealer is implemented by parties that reveal a batch of wires
// with one protocol round.
type ManyRevealer[W any] interface {
	RevealMany(xs []W) ([]uint16, error)
}

// RevealMany reveals all wires.
func RevealMany[W any](f Reveal[W], xs []W) ([]uint16, error) {
	if m, ok := f.(ManyRevealer[W]); ok {
		return m.RevealMany(xs)
	}
	result := make([]uint16, len(xs))
	for i, x := range xs {
		v, err := f.Reveal(x)
		if err != nil {
			return nil, err
		}
		result[i] = v
	}
	return result, nil
}
