//
// crt.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package fancy

import (
	"math/big"

	"github.com/cockroachdb/errors"
)

// Primes lists the small primes used as CRT moduli.
var Primes = []uint16{
	2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47,
}

// ErrBundleMismatch is returned when the operands of a bundle
// operation have different moduli.
var ErrBundleMismatch = errors.New("bundle moduli mismatch")

// Bundle represents a value in the Chinese Remainder Theorem form:
// the wire i carries the value modulo Moduli[i]. The moduli are
// pairwise coprime and the bundle holds values modulo their product.
type Bundle[W any] struct {
	Wires  []W
	Moduli []uint16
}

// Size returns the number of wires in the bundle.
func (b Bundle[W]) Size() int {
	return len(b.Wires)
}

// CRTModuli returns the first n primes. Their product fits into 64
// bits.
func CRTModuli(n int) ([]uint16, error) {
	if n <= 0 || n > len(Primes) {
		return nil, errors.Newf("invalid number of CRT moduli %d", n)
	}
	result := make([]uint16, n)
	copy(result, Primes)
	return result, nil
}

// CRTModulus returns the product of the moduli.
func CRTModulus(moduli []uint16) *big.Int {
	result := big.NewInt(1)
	for _, q := range moduli {
		result.Mul(result, big.NewInt(int64(q)))
	}
	return result
}

// CRTResidues returns the residues of x modulo each of the moduli.
func CRTResidues(x uint64, moduli []uint16) []uint16 {
	result := make([]uint16, len(moduli))
	for i, q := range moduli {
		result[i] = uint16(x % uint64(q))
	}
	return result
}

// CRTCompose reconstructs the value modulo the product of the moduli
// from its residues.
func CRTCompose(residues, moduli []uint16) (uint64, error) {
	if len(residues) != len(moduli) {
		return 0, errors.Newf("%d residues for %d moduli",
			len(residues), len(moduli))
	}
	m := CRTModulus(moduli)
	if m.BitLen() > 64 {
		return 0, errors.Newf("CRT modulus %s too large", m)
	}
	result := new(big.Int)
	for i, q := range moduli {
		bq := big.NewInt(int64(q))
		mi := new(big.Int).Div(m, bq)
		inv := new(big.Int).ModInverse(mi, bq)
		if inv == nil {
			return 0, errors.Newf("moduli not coprime: %v", moduli)
		}
		term := new(big.Int).Mul(big.NewInt(int64(residues[i])), mi)
		term.Mul(term, inv)
		result.Add(result, term)
	}
	return result.Mod(result, m).Uint64(), nil
}

// EncodeBundle encodes the caller's private value x as a bundle over
// the moduli.
func EncodeBundle[W any, P any](f Input[W, P], x uint64, moduli []uint16) (
	Bundle[W], error) {

	ws, err := f.EncodeMany(CRTResidues(x, moduli), moduli)
	if err != nil {
		return Bundle[W]{}, err
	}
	return Bundle[W]{
		Wires:  ws,
		Moduli: moduli,
	}, nil
}

// ReceiveBundle receives the bundle of the party from.
func ReceiveBundle[W any, P any](f Input[W, P], from P, moduli []uint16) (
	Bundle[W], error) {

	ws, err := f.ReceiveMany(from, moduli)
	if err != nil {
		return Bundle[W]{}, err
	}
	return Bundle[W]{
		Wires:  ws,
		Moduli: moduli,
	}, nil
}

// CRTConstant returns a bundle carrying the public value c.
func CRTConstant[W any](f Fancy[W], c uint64, moduli []uint16) (
	Bundle[W], error) {

	result := Bundle[W]{
		Wires:  make([]W, len(moduli)),
		Moduli: moduli,
	}
	for i, q := range moduli {
		var err error
		result.Wires[i], err = f.Constant(uint16(c%uint64(q)), q)
		if err != nil {
			return Bundle[W]{}, err
		}
	}
	return result, nil
}

func checkBundles[W any](op string, x, y Bundle[W]) error {
	if len(x.Moduli) != len(y.Moduli) || len(x.Wires) != len(x.Moduli) ||
		len(y.Wires) != len(y.Moduli) {
		return errors.Wrapf(ErrBundleMismatch, "%s: sizes %d and %d",
			op, len(x.Wires), len(y.Wires))
	}
	for i, q := range x.Moduli {
		if y.Moduli[i] != q {
			return errors.Wrapf(ErrBundleMismatch, "%s: wire %d: %d != %d",
				op, i, q, y.Moduli[i])
		}
	}
	return nil
}

func crtBinary[W any](op string, x, y Bundle[W], fn func(x, y W) (W, error)) (
	Bundle[W], error) {

	if err := checkBundles(op, x, y); err != nil {
		return Bundle[W]{}, err
	}
	result := Bundle[W]{
		Wires:  make([]W, len(x.Wires)),
		Moduli: x.Moduli,
	}
	for i := range x.Wires {
		var err error
		result.Wires[i], err = fn(x.Wires[i], y.Wires[i])
		if err != nil {
			return Bundle[W]{}, errors.Wrapf(err, "%s: wire %d", op, i)
		}
	}
	return result, nil
}

// CRTAdd returns x + y.
func CRTAdd[W any](f Fancy[W], x, y Bundle[W]) (Bundle[W], error) {
	return crtBinary("add", x, y, f.Add)
}

// CRTSub returns x - y.
func CRTSub[W any](f Fancy[W], x, y Bundle[W]) (Bundle[W], error) {
	return crtBinary("sub", x, y, f.Sub)
}

// CRTMul returns x·y. Each wire pair costs one multiplication gate.
func CRTMul[W any](f Fancy[W], x, y Bundle[W]) (Bundle[W], error) {
	return crtBinary("mul", x, y, f.Mul)
}

// CRTCmul returns c·x.
func CRTCmul[W any](f Fancy[W], x Bundle[W], c uint64) (Bundle[W], error) {
	result := Bundle[W]{
		Wires:  make([]W, len(x.Wires)),
		Moduli: x.Moduli,
	}
	for i, q := range x.Moduli {
		var err error
		result.Wires[i], err = f.Cmul(x.Wires[i], uint16(c%uint64(q)))
		if err != nil {
			return Bundle[W]{}, errors.Wrapf(err, "cmul: wire %d", i)
		}
	}
	return result, nil
}

// CRTOutput outputs the bundle. The returned bool is true if the
// caller learned the value.
func CRTOutput[W any](f Fancy[W], x Bundle[W]) (uint64, bool, error) {
	residues, ok, err := OutputMany(f, x.Wires)
	if err != nil || !ok {
		return 0, false, err
	}
	v, err := CRTCompose(residues, x.Moduli)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// CRTReveal reveals the bundle's value to all parties.
func CRTReveal[W any](f Reveal[W], x Bundle[W]) (uint64, error) {
	residues, err := RevealMany(f, x.Wires)
	if err != nil {
		return 0, err
	}
	return CRTCompose(residues, x.Moduli)
}
