//
// evaluator.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package garble

import (
	"github.com/cockroachdb/errors"
	"github.com/markkurossi/gcmpc/channel"
	"github.com/markkurossi/gcmpc/ot"
)

// Evaluator implements the streaming evaluator. It reads gate tables
// and output decoding rows from the channel in the order the garbler
// wrote them.
type Evaluator struct {
	ch      *channel.Channel
	gateID  uint64
	outputs uint64
}

// NewEvaluator creates a new evaluator reading from the channel.
func NewEvaluator(ch *channel.Channel) *Evaluator {
	return &Evaluator{
		ch: ch,
	}
}

// Channel returns the evaluator's input channel.
func (e *Evaluator) Channel() *channel.Channel {
	return e.ch
}

func (e *Evaluator) nextGate() uint64 {
	id := e.gateID
	e.gateID++
	return id
}

func (e *Evaluator) nextOutput() uint64 {
	id := e.outputs
	e.outputs++
	return id
}

// Receive reads a garbler-encoded wire of modulus q from the channel.
func (e *Evaluator) Receive(q uint16) (Wire, error) {
	if err := checkModulus(q); err != nil {
		return Wire{}, evaluatorError(err)
	}
	b, err := e.ch.ReadBlock()
	if err != nil {
		return Wire{}, err
	}
	return FromBlock(b, q), nil
}

// Constant implements Fancy.Constant.
func (e *Evaluator) Constant(x, q uint16) (Wire, error) {
	if err := checkModulus(q); err != nil {
		return Wire{}, evaluatorError(err)
	}
	return Zero(q), nil
}

// Add implements Fancy.Add.
func (e *Evaluator) Add(x, y Wire) (Wire, error) {
	if err := checkModuli("add", x, y); err != nil {
		return Wire{}, evaluatorError(err)
	}
	return x.Plus(y), nil
}

// Sub implements Fancy.Sub.
func (e *Evaluator) Sub(x, y Wire) (Wire, error) {
	if err := checkModuli("sub", x, y); err != nil {
		return Wire{}, evaluatorError(err)
	}
	return x.Minus(y), nil
}

// Cmul implements Fancy.Cmul.
func (e *Evaluator) Cmul(x Wire, c uint16) (Wire, error) {
	return x.Cmul(c), nil
}

// Negate implements Fancy.Negate.
func (e *Evaluator) Negate(x Wire) (Wire, error) {
	return x.Negate(), nil
}

// Mul implements Fancy.Mul.
func (e *Evaluator) Mul(A, B Wire) (Wire, error) {
	if A.q < B.q {
		A, B = B, A
	}
	q := A.q
	qb := B.q
	if qb < q && qb > 8 {
		return Wire{}, evaluatorError(errors.Wrapf(ErrAsymmetricModulus,
			"mul: %d and %d", q, qb))
	}
	gateNum := e.nextGate()

	n := int(q) + int(qb) - 2
	if q != qb {
		n++
	}
	gate, err := e.ch.ReadBlocks(n)
	if err != nil {
		return Wire{}, err
	}

	t := ot.NewTweak2(gateNum, 0)

	h := A.Hash(t)
	var L Wire
	if A.Color() == 0 {
		L = FromBlock(h, q)
	} else {
		L = FromBlock(gate[A.Color()-1].Xored(h), q)
	}

	h = B.Hash(t)
	var R Wire
	if B.Color() == 0 {
		R = FromBlock(h, q)
	} else {
		R = FromBlock(gate[int(q)+int(B.Color())-2].Xored(h), q)
	}

	var color uint16
	if q != qb {
		ct := getMinitable(gate[n-1], B.Color())
		pt := B.Hash(ot.NewTweak2(gateNum, 1)).D1
		color = uint16(ct^pt) % q
	} else {
		color = B.Color()
	}

	return L.Plus(R).Plus(A.Cmul(color)), nil
}

// Proj implements Fancy.Proj. The evaluator does not need the truth
// table but it must match the garbler's table size.
func (e *Evaluator) Proj(x Wire, q uint16, tt []uint16) (Wire, error) {
	if err := checkModulus(q); err != nil {
		return Wire{}, evaluatorError(err)
	}
	gateNum := e.nextGate()
	gate, err := e.ch.ReadBlocks(int(x.q) - 1)
	if err != nil {
		return Wire{}, err
	}
	t := ot.NewTweak(gateNum)
	if x.Color() == 0 {
		return x.HashBack(t, q), nil
	}
	return FromBlock(gate[x.Color()-1].Xored(x.Hash(t)), q), nil
}

// Output implements Fancy.Output. It returns false if the wire does
// not match any of the decoding rows. The check is best-effort and not
// a security guarantee.
func (e *Evaluator) Output(x Wire) (uint16, bool, error) {
	q := x.q
	i := e.nextOutput()

	rows, err := e.ch.ReadBlocks(int(q))
	if err != nil {
		return 0, false, err
	}
	var result uint16
	var found bool
	for k := uint16(0); k < q; k++ {
		h := x.Hash(ot.NewTweak2(i, uint64(k)))
		if h.Equal(rows[k]) && !found {
			result = k
			found = true
		}
	}
	return result, found, nil
}

// Reveal implements Reveal.Reveal for semi-honest evaluation: the
// evaluator decodes the output and sends the value to the garbler.
func (e *Evaluator) Reveal(x Wire) (uint16, error) {
	v, ok, err := e.Output(x)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, evaluatorError(ErrDecodingFailed)
	}
	if err := e.ch.WriteU16(v); err != nil {
		return 0, err
	}
	if err := e.ch.Flush(); err != nil {
		return 0, err
	}
	return v, nil
}
