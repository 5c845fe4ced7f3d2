//
// garbler.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package garble

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/gcmpc/channel"
	"github.com/markkurossi/gcmpc/ot"
)

// Garbler implements the streaming garbler. Gate tables and output
// decoding rows are written to the channel as the circuit is
// traversed. The Free-XOR offsets are created lazily, one per
// modulus, on first use.
type Garbler struct {
	ch      *channel.Channel
	rand    io.Reader
	deltas  map[uint16]Wire
	gateID  uint64
	outputs uint64
}

// NewGarbler creates a new garbler writing to the channel and drawing
// randomness from rand. Two garblers created with identical random
// streams produce identical deltas, wires, and gate tables.
func NewGarbler(ch *channel.Channel, rand io.Reader) *Garbler {
	return &Garbler{
		ch:     ch,
		rand:   rand,
		deltas: make(map[uint16]Wire),
	}
}

// Channel returns the garbler's output channel.
func (g *Garbler) Channel() *channel.Channel {
	return g.ch
}

// Rand returns the garbler's random source.
func (g *Garbler) Rand() io.Reader {
	return g.rand
}

// Deltas returns the garbler's Free-XOR offsets.
func (g *Garbler) Deltas() map[uint16]Wire {
	result := make(map[uint16]Wire)
	for k, v := range g.deltas {
		result[k] = v
	}
	return result
}

// Delta returns the Free-XOR offset of modulus q, creating it if it
// does not exist yet.
func (g *Garbler) Delta(q uint16) (Wire, error) {
	d, ok := g.deltas[q]
	if ok {
		return d, nil
	}
	if err := checkModulus(q); err != nil {
		return Wire{}, garblerError(err)
	}
	d, err := RandomDelta(g.rand, q)
	if err != nil {
		return Wire{}, garblerError(errors.Wrap(err, "delta"))
	}
	g.deltas[q] = d
	return d, nil
}

func (g *Garbler) nextGate() uint64 {
	id := g.gateID
	g.gateID++
	return id
}

func (g *Garbler) nextOutput() uint64 {
	id := g.outputs
	g.outputs++
	return id
}

// EncodeWire encodes the value val in modulus q. It returns the
// zero-label mine and the value's label theirs = mine + val·Δ(q).
func (g *Garbler) EncodeWire(val, q uint16) (mine, theirs Wire, err error) {
	if err = checkModulus(q); err != nil {
		return mine, theirs, garblerError(err)
	}
	mine, err = RandomWire(g.rand, q)
	if err != nil {
		return mine, theirs, garblerError(errors.Wrap(err, "encode wire"))
	}
	delta, err := g.Delta(q)
	if err != nil {
		return mine, theirs, err
	}
	theirs = mine.Plus(delta.Cmul(val))
	return
}

// CreateWire creates a fresh zero-label of modulus q.
func (g *Garbler) CreateWire(q uint16) (Wire, error) {
	mine, _, err := g.EncodeWire(0, q)
	return mine, err
}

// Encode encodes the value val in modulus q, sends the value's label
// to the evaluator, and returns the zero-label.
func (g *Garbler) Encode(val, q uint16) (Wire, error) {
	mine, theirs, err := g.EncodeWire(val, q)
	if err != nil {
		return mine, err
	}
	if err := g.ch.WriteBlock(theirs.Block()); err != nil {
		return mine, err
	}
	return mine, nil
}

// Constant implements Fancy.Constant. The garbler's label for the
// constant x is -x·Δ(q) so that the evaluator's all-zero label decodes
// to x.
func (g *Garbler) Constant(x, q uint16) (Wire, error) {
	delta, err := g.Delta(q)
	if err != nil {
		return Wire{}, err
	}
	return delta.Negate().Cmul(x), nil
}

// Add implements Fancy.Add.
func (g *Garbler) Add(x, y Wire) (Wire, error) {
	if err := checkModuli("add", x, y); err != nil {
		return Wire{}, garblerError(err)
	}
	return x.Plus(y), nil
}

// Sub implements Fancy.Sub.
func (g *Garbler) Sub(x, y Wire) (Wire, error) {
	if err := checkModuli("sub", x, y); err != nil {
		return Wire{}, garblerError(err)
	}
	return x.Minus(y), nil
}

// Cmul implements Fancy.Cmul.
func (g *Garbler) Cmul(x Wire, c uint16) (Wire, error) {
	return x.Cmul(c), nil
}

// Negate implements Fancy.Negate.
func (g *Garbler) Negate(x Wire) (Wire, error) {
	return x.Negate(), nil
}

// Mul implements Fancy.Mul with generalized half-gates. If the inputs
// have different moduli, the smaller modulus must be at most 8 and the
// gate carries an additional row that translates the smaller input's
// color into the larger modulus.
func (g *Garbler) Mul(A, B Wire) (Wire, error) {
	if A.q < B.q {
		A, B = B, A
	}
	q := A.q
	qb := B.q
	if qb < q && qb > 8 {
		return Wire{}, garblerError(errors.Wrapf(ErrAsymmetricModulus,
			"mul: %d and %d", q, qb))
	}
	gateNum := g.nextGate()

	D, err := g.Delta(q)
	if err != nil {
		return Wire{}, err
	}
	Db, err := g.Delta(qb)
	if err != nil {
		return Wire{}, err
	}

	gate := make([]ot.Label, int(q)+int(qb)-2)

	var r uint16
	if q != qb {
		var err error
		r, err = RandomMod(g.rand, q)
		if err != nil {
			return Wire{}, garblerError(errors.Wrap(err, "mul"))
		}

		t := ot.NewTweak2(gateNum, 1)
		var minitable ot.Label

		B_ := B
		for b := uint16(0); b < qb; b++ {
			if b > 0 {
				B_ = B_.Plus(Db)
			}
			color := (uint32(r) + uint32(b)) % uint32(q)
			ct := (B_.Hash(t).D1 & 0xffff) ^ uint64(color)
			setMinitable(&minitable, B_.Color(), ct)
		}
		gate = append(gate, minitable)
	} else {
		r = B.Color()
	}

	t := ot.NewTweak2(gateNum, 0)

	// The garbler's half.
	alpha := (q - A.Color()) % q
	X := A.Plus(D.Cmul(alpha)).HashBack(t, q).Plus(D.Cmul(mulmod(alpha, r, q)))

	// The evaluator's half.
	beta := (qb - B.Color()) % qb
	Y := B.Plus(Db.Cmul(beta)).HashBack(t, q).Plus(A.Cmul(addmod(beta, r, q)))

	precompX := make([]ot.Label, q)
	precompY := make([]ot.Label, q)
	Xk := X
	Yk := Y
	for k := uint16(0); k < q; k++ {
		if k > 0 {
			Xk = Xk.Plus(D)
			Yk = Yk.Plus(A)
		}
		precompX[k] = Xk.Block()
		precompY[k] = Yk.Block()
	}

	A_ := A
	for a := uint16(0); a < q; a++ {
		if a > 0 {
			A_ = A_.Plus(D)
		}
		color := A_.Color()
		if color == 0 {
			continue
		}
		ix := (q - mulmod(a, r, q)) % q
		gate[color-1] = A_.Hash(t).Xored(precompX[ix])
	}

	B_ := B
	for b := uint16(0); b < qb; b++ {
		if b > 0 {
			B_ = B_.Plus(Db)
		}
		color := B_.Color()
		if color == 0 {
			continue
		}
		ix := (q - addmod(b, r, q)) % q
		gate[int(q)-1+int(color)-1] = B_.Hash(t).Xored(precompY[ix])
	}

	if err := g.ch.WriteBlocks(gate); err != nil {
		return Wire{}, err
	}
	return X.Plus(Y), nil
}

// Proj implements Fancy.Proj: it maps the input wire of modulus qin to
// an output wire of modulus q with the truth table tt.
func (g *Garbler) Proj(A Wire, q uint16, tt []uint16) (Wire, error) {
	if err := checkTruthTable(tt, A.q); err != nil {
		return Wire{}, garblerError(err)
	}
	if err := checkModulus(q); err != nil {
		return Wire{}, garblerError(err)
	}
	qin := A.q

	gateNum := g.nextGate()
	t := ot.NewTweak(gateNum)

	Din, err := g.Delta(qin)
	if err != nil {
		return Wire{}, err
	}
	Dout, err := g.Delta(q)
	if err != nil {
		return Wire{}, err
	}

	gate := make([]ot.Label, int(qin)-1)

	tao := A.Color()
	ix := (qin - tao) % qin
	C := A.Plus(Din.Cmul(ix)).HashBack(t, q).
		Plus(Dout.Cmul((q - tt[ix]%q) % q))

	A_ := A
	for x := uint16(0); x < qin; x++ {
		if x > 0 {
			A_ = A_.Plus(Din)
		}
		ix := addmod(tao, x, qin)
		if ix == 0 {
			continue
		}
		gate[ix-1] = A_.Hash(t).Xored(C.Plus(Dout.Cmul(tt[x])).Block())
	}
	if err := g.ch.WriteBlocks(gate); err != nil {
		return Wire{}, err
	}
	return C, nil
}

// Output implements Fancy.Output. The garbler writes the decoding rows
// H(X + k·Δ, tweak2(i,k)) for all k in [0,q) and learns nothing.
func (g *Garbler) Output(X Wire) (uint16, bool, error) {
	q := X.q
	i := g.nextOutput()
	D, err := g.Delta(q)
	if err != nil {
		return 0, false, err
	}
	for k := uint16(0); k < q; k++ {
		h := X.Plus(D.Cmul(k)).Hash(ot.NewTweak2(i, uint64(k)))
		if err := g.ch.WriteBlock(h); err != nil {
			return 0, false, err
		}
	}
	return 0, false, nil
}

// Reveal implements Reveal.Reveal for semi-honest evaluation: the
// garbler outputs the wire and reads the decoded value from the
// evaluator.
func (g *Garbler) Reveal(X Wire) (uint16, error) {
	if _, _, err := g.Output(X); err != nil {
		return 0, err
	}
	if err := g.ch.Flush(); err != nil {
		return 0, err
	}
	return g.ch.ReadU16()
}

func setMinitable(l *ot.Label, idx uint16, v uint64) {
	if idx < 4 {
		l.D1 |= v << (16 * idx)
	} else {
		l.D0 |= v << (16 * (idx - 4))
	}
}

func getMinitable(l ot.Label, idx uint16) uint64 {
	if idx < 4 {
		return l.D1 >> (16 * idx)
	}
	return l.D0 >> (16 * (idx - 4))
}

func addmod(a, b, q uint16) uint16 {
	return uint16((uint32(a) + uint32(b)) % uint32(q))
}

func mulmod(a, b, q uint16) uint16 {
	return uint16((uint32(a) * uint32(b)) % uint32(q))
}
