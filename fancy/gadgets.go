//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package fancy

// Boolean gadgets over wires of modulus 2.

// Xor returns a ^ b.
func Xor[W any](f Fancy[W], a, b W) (W, error) {
	return f.Add(a, b)
}

// And returns a & b.
func And[W any](f Fancy[W], a, b W) (W, error) {
	return f.Mul(a, b)
}

// Not returns !a.
func Not[W any](f Fancy[W], a W) (W, error) {
	one, err := f.Constant(1, 2)
	if err != nil {
		return a, err
	}
	return f.Add(a, one)
}

// Xnor returns !(a ^ b).
func Xnor[W any](f Fancy[W], a, b W) (W, error) {
	x, err := f.Add(a, b)
	if err != nil {
		return x, err
	}
	return Not(f, x)
}

// Or returns a | b computed as a ^ b ^ (a & b).
func Or[W any](f Fancy[W], a, b W) (W, error) {
	x, err := f.Add(a, b)
	if err != nil {
		return x, err
	}
	ab, err := f.Mul(a, b)
	if err != nil {
		return ab, err
	}
	return f.Add(x, ab)
}

// Mux returns t if s is 1 and f if s is 0: f ^ (s & (t ^ f)).
func Mux[W any](fy Fancy[W], s, t, f W) (W, error) {
	x, err := fy.Add(t, f)
	if err != nil {
		return x, err
	}
	x, err = fy.Mul(s, x)
	if err != nil {
		return x, err
	}
	return fy.Add(f, x)
}

// AddMany returns the sum of the wires. The wires must share a
// modulus and the argument must not be empty.
func AddMany[W any](f Fancy[W], ws []W) (W, error) {
	result := ws[0]
	var err error
	for _, w := range ws[1:] {
		result, err = f.Add(result, w)
		if err != nil {
			return result, err
		}
	}
	return result, nil
}
