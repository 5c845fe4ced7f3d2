//
// wire.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package garble

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"

	"github.com/markkurossi/gcmpc/ot"
)

// Wire implements a wire label in the domain of its modulus q. The
// label of value x is label(0) + x·Δ(q). Boolean wires (q=2) are
// 128-bit blocks where addition is XOR. Wires of larger moduli are
// vectors of base-q digits where addition is digit-wise modulo q. The
// wire's color is its least significant bit (q=2) or its first digit
// (q>2).
//
// Wires are values; all operations return new wires.
type Wire struct {
	q  uint16
	l  ot.Label
	ds []uint16
}

// DigitsPerLabel returns the number of base-q digits a label of
// modulus q holds. The digits fit into 128 bits.
func DigitsPerLabel(q uint16) int {
	if q < 2 {
		panic(fmt.Sprintf("invalid modulus %d", q))
	}
	return 128 / bits.Len16(q-1)
}

// Zero creates the all-zero wire of modulus q.
func Zero(q uint16) Wire {
	if q == 2 {
		return Wire{
			q: q,
		}
	}
	return Wire{
		q:  q,
		ds: make([]uint16, DigitsPerLabel(q)),
	}
}

// FromBlock creates a wire of modulus q from the 128-bit block. For
// q>2, the block is interpreted as a 128-bit integer and decomposed
// into base-q digits.
func FromBlock(b ot.Label, q uint16) Wire {
	if q == 2 {
		return Wire{
			q: q,
			l: b,
		}
	}
	n := DigitsPerLabel(q)
	ds := make([]uint16, n)

	hi, lo := b.D0, b.D1
	for i := 0; i < n; i++ {
		var r uint64
		hi, lo, r = divmod128(hi, lo, uint64(q))
		ds[i] = uint16(r)
	}
	return Wire{
		q:  q,
		ds: ds,
	}
}

// RandomWire creates a random wire of modulus q.
func RandomWire(rand io.Reader, q uint16) (Wire, error) {
	if q < 2 {
		return Wire{}, fmt.Errorf("invalid modulus %d", q)
	}
	if q == 2 {
		l, err := ot.NewLabel(rand)
		if err != nil {
			return Wire{}, err
		}
		return Wire{
			q: q,
			l: l,
		}, nil
	}
	ds := make([]uint16, DigitsPerLabel(q))
	for i := range ds {
		d, err := RandomMod(rand, q)
		if err != nil {
			return Wire{}, err
		}
		ds[i] = d
	}
	return Wire{
		q:  q,
		ds: ds,
	}, nil
}

// RandomMod returns a uniformly random value in [0, q). Values from
// the incomplete last multiple of q are rejected and redrawn.
func RandomMod(rand io.Reader, q uint16) (uint16, error) {
	if q == 0 {
		return 0, ErrInvalidModulus
	}
	limit := 1<<16 - (1<<16)%uint32(q)
	var buf [2]byte
	for {
		if _, err := io.ReadFull(rand, buf[:]); err != nil {
			return 0, err
		}
		v := uint32(binary.LittleEndian.Uint16(buf[:]))
		if v < limit {
			return uint16(v % uint32(q)), nil
		}
	}
}

// RandomDelta creates a random Free-XOR offset of modulus q. The
// offset's color is 1 so that label(x) has color label(0)+x mod q.
func RandomDelta(rand io.Reader, q uint16) (Wire, error) {
	w, err := RandomWire(rand, q)
	if err != nil {
		return w, err
	}
	if q == 2 {
		w.l.D1 |= 1
	} else {
		w.ds[0] = 1
	}
	return w, nil
}

// Modulus returns the wire's modulus.
func (w Wire) Modulus() uint16 {
	return w.q
}

// Color returns the wire's point-and-permute color in [0,q).
func (w Wire) Color() uint16 {
	if w.q == 2 {
		return uint16(w.l.Lsb())
	}
	return w.ds[0]
}

// Digits returns a copy of the wire's base-q digits.
func (w Wire) Digits() []uint16 {
	if w.q == 2 {
		result := make([]uint16, 128)
		for i := 0; i < 128; i++ {
			result[i] = uint16(w.l.Bit(i))
		}
		return result
	}
	return append([]uint16(nil), w.ds...)
}

// Block returns the wire as a 128-bit block. FromBlock(w.Block(), q)
// equals w.
func (w Wire) Block() ot.Label {
	if w.q == 2 {
		return w.l
	}
	var hi, lo uint64
	q := uint64(w.q)
	for i := len(w.ds) - 1; i >= 0; i-- {
		hi, lo = muladd128(hi, lo, q, uint64(w.ds[i]))
	}
	return ot.Label{
		D0: hi,
		D1: lo,
	}
}

// Equal tests if the wires are equal.
func (w Wire) Equal(o Wire) bool {
	if w.q != o.q {
		return false
	}
	if w.q == 2 {
		return w.l.Equal(o.l)
	}
	for i, d := range w.ds {
		if o.ds[i] != d {
			return false
		}
	}
	return true
}

func (w Wire) check(o Wire) {
	if w.q != o.q {
		panic(fmt.Sprintf("modulus mismatch: %d != %d", w.q, o.q))
	}
}

// Plus returns w + o.
func (w Wire) Plus(o Wire) Wire {
	w.check(o)
	if w.q == 2 {
		return Wire{
			q: 2,
			l: w.l.Xored(o.l),
		}
	}
	q := uint32(w.q)
	ds := make([]uint16, len(w.ds))
	for i, d := range w.ds {
		ds[i] = uint16((uint32(d) + uint32(o.ds[i])) % q)
	}
	return Wire{
		q:  w.q,
		ds: ds,
	}
}

// Minus returns w - o.
func (w Wire) Minus(o Wire) Wire {
	w.check(o)
	if w.q == 2 {
		return w.Plus(o)
	}
	q := uint32(w.q)
	ds := make([]uint16, len(w.ds))
	for i, d := range w.ds {
		ds[i] = uint16((uint32(d) + q - uint32(o.ds[i])) % q)
	}
	return Wire{
		q:  w.q,
		ds: ds,
	}
}

// Cmul returns c·w.
func (w Wire) Cmul(c uint16) Wire {
	if w.q == 2 {
		if c&1 == 1 {
			return w
		}
		return Zero(2)
	}
	q := uint32(w.q)
	cm := uint32(c) % q
	ds := make([]uint16, len(w.ds))
	for i, d := range w.ds {
		ds[i] = uint16((uint32(d) * cm) % q)
	}
	return Wire{
		q:  w.q,
		ds: ds,
	}
}

// Negate returns -w.
func (w Wire) Negate() Wire {
	if w.q == 2 {
		return w
	}
	q := uint32(w.q)
	ds := make([]uint16, len(w.ds))
	for i, d := range w.ds {
		ds[i] = uint16((q - uint32(d)) % q)
	}
	return Wire{
		q:  w.q,
		ds: ds,
	}
}

// Hash hashes the wire with the tweak.
func (w Wire) Hash(tweak ot.Label) ot.Label {
	return w.Block().Hash(tweak)
}

// HashBack hashes the wire with the tweak and returns the hash as a
// wire of modulus q.
func (w Wire) HashBack(tweak ot.Label, q uint16) Wire {
	return FromBlock(w.Hash(tweak), q)
}

func (w Wire) String() string {
	return fmt.Sprintf("%s/%d", w.Block(), w.q)
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (w Wire) MarshalBinary() ([]byte, error) {
	var data ot.LabelData
	w.Block().GetData(&data)

	result := make([]byte, 2+len(data))
	binary.BigEndian.PutUint16(result, w.q)
	copy(result[2:], data[:])
	return result, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (w *Wire) UnmarshalBinary(data []byte) error {
	if len(data) != 2+len(ot.LabelData{}) {
		return fmt.Errorf("invalid wire length %d", len(data))
	}
	q := binary.BigEndian.Uint16(data)
	if q < 2 {
		return fmt.Errorf("invalid modulus %d", q)
	}
	var l ot.Label
	l.SetBytes(data[2:])
	*w = FromBlock(l, q)
	return nil
}

// divmod128 divides the 128-bit value hi:lo by q and returns the
// quotient and remainder.
func divmod128(hi, lo, q uint64) (qhi, qlo, r uint64) {
	qhi = hi / q
	qlo, r = bits.Div64(hi%q, lo, q)
	return
}

// muladd128 computes hi:lo * m + a modulo 2^128.
func muladd128(hi, lo, m, a uint64) (uint64, uint64) {
	phi, plo := bits.Mul64(lo, m)
	hi = hi*m + phi

	var carry uint64
	plo, carry = bits.Add64(plo, a, 0)
	return hi + carry, plo
}
