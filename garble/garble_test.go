//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package garble

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/gcmpc/channel"
	"github.com/markkurossi/gcmpc/ot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

var testModuli = []uint16{2, 3, 5, 7, 16, 17, 255, 256, 1000}

func TestWireAlgebra(t *testing.T) {
	for _, q := range testModuli {
		x, err := RandomWire(rand.Reader, q)
		require.NoError(t, err)
		y, err := RandomWire(rand.Reader, q)
		require.NoError(t, err)

		assert.True(t, FromBlock(x.Block(), q).Equal(x), "q=%d", q)
		assert.True(t, x.Plus(y).Minus(y).Equal(x), "q=%d", q)
		assert.True(t, x.Plus(x.Negate()).Equal(Zero(q)), "q=%d", q)
		assert.True(t, x.Cmul(0).Equal(Zero(q)), "q=%d", q)
		assert.True(t, x.Cmul(q+1).Equal(x), "q=%d", q)
		assert.True(t, x.Cmul(3).Equal(x.Plus(x).Plus(x)), "q=%d", q)
		assert.Equal(t, (x.Color()+y.Color())%q, x.Plus(y).Color(), "q=%d", q)

		for _, d := range x.Digits() {
			assert.Less(t, d, q)
		}
		if q > 2 {
			assert.Len(t, x.Digits(), DigitsPerLabel(q))
		}

		delta, err := RandomDelta(rand.Reader, q)
		require.NoError(t, err)
		assert.Equal(t, uint16(1), delta.Color())

		assert.False(t, x.HashBack(ot.NewTweak(1), q).Equal(x))
		assert.Equal(t, q, x.HashBack(ot.NewTweak(1), q).Modulus())

		data, err := x.MarshalBinary()
		require.NoError(t, err)
		var x2 Wire
		require.NoError(t, x2.UnmarshalBinary(data))
		assert.True(t, x2.Equal(x))
	}
}

func TestRandomMod(t *testing.T) {
	// 0xffff is the incomplete last multiple of 257 and is redrawn.
	r := bytes.NewReader([]byte{0xff, 0xff, 0x05, 0x00})
	v, err := RandomMod(r, 257)
	require.NoError(t, err)
	assert.Equal(t, uint16(5), v)

	// 0xffff is below the limit for q=256.
	r = bytes.NewReader([]byte{0xff, 0xff})
	v, err = RandomMod(r, 256)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xff), v)

	_, err = RandomMod(bytes.NewReader([]byte{0xff, 0xff}), 257)
	assert.Error(t, err)

	_, err = RandomMod(rand.Reader, 0)
	assert.True(t, errors.Is(err, ErrInvalidModulus))

	for _, q := range testModuli {
		for i := 0; i < 100; i++ {
			v, err := RandomMod(rand.Reader, q)
			require.NoError(t, err)
			assert.Less(t, v, q)
		}
	}
}

func TestWireMismatchPanics(t *testing.T) {
	assert.Panics(t, func() {
		Zero(2).Plus(Zero(3))
	})
	assert.False(t, Zero(2).Equal(Zero(3)))
}

func TestEncodeWire(t *testing.T) {
	g := NewGarbler(nil, rand.Reader)

	for _, q := range testModuli {
		delta, err := g.Delta(q)
		require.NoError(t, err)
		for x := uint16(0); x < q && x < 20; x++ {
			mine, theirs, err := g.EncodeWire(x, q)
			require.NoError(t, err)
			assert.True(t, theirs.Equal(mine.Plus(delta.Cmul(x))))
			assert.Equal(t, (mine.Color()+x)%q, theirs.Color())
		}
	}
	_, _, err := g.EncodeWire(1, 1)
	assert.ErrorIs(t, err, ErrInvalidModulus)
	assert.True(t, errors.Is(err, ErrGarbler))
}

type gateTest struct {
	x, y uint16
	qx   uint16
	qy   uint16
	tt   []uint16
	qout uint16
}

// Circuit:
//
//	add = x + x
//	mul = x * y
//	proj = tt[x]
//	c = 1 + x
func runGates(t *testing.T, test gateTest) []uint16 {
	ga, ea := channel.Pipe()
	gch := channel.New(ga)
	ech := channel.New(ea)

	var eg errgroup.Group

	eg.Go(func() error {
		g := NewGarbler(gch, rand.Reader)
		x, err := g.Encode(test.x, test.qx)
		if err != nil {
			return err
		}
		y, err := g.Encode(test.y, test.qy)
		if err != nil {
			return err
		}
		add, err := g.Add(x, x)
		if err != nil {
			return err
		}
		mul, err := g.Mul(x, y)
		if err != nil {
			return err
		}
		proj, err := g.Proj(x, test.qout, test.tt)
		if err != nil {
			return err
		}
		one, err := g.Constant(1, test.qx)
		if err != nil {
			return err
		}
		c, err := g.Add(one, x)
		if err != nil {
			return err
		}
		for _, w := range []Wire{add, mul, proj, c} {
			if _, _, err := g.Output(w); err != nil {
				return err
			}
		}
		return nil
	})

	e := NewEvaluator(ech)
	x, err := e.Receive(test.qx)
	require.NoError(t, err)
	y, err := e.Receive(test.qy)
	require.NoError(t, err)
	add, err := e.Add(x, x)
	require.NoError(t, err)
	mul, err := e.Mul(x, y)
	require.NoError(t, err)
	proj, err := e.Proj(x, test.qout, test.tt)
	require.NoError(t, err)
	one, err := e.Constant(1, test.qx)
	require.NoError(t, err)
	c, err := e.Add(one, x)
	require.NoError(t, err)

	var result []uint16
	for _, w := range []Wire{add, mul, proj, c} {
		v, ok, err := e.Output(w)
		require.NoError(t, err)
		require.True(t, ok)
		result = append(result, v)
	}
	require.NoError(t, eg.Wait())

	return result
}

func TestGates(t *testing.T) {
	for _, q := range []uint16{2, 3, 5, 7} {
		tt := make([]uint16, q)
		for i := range tt {
			tt[i] = uint16((i*i + 1) % 4)
		}
		for x := uint16(0); x < q; x++ {
			for y := uint16(0); y < q; y++ {
				result := runGates(t, gateTest{
					x:    x,
					y:    y,
					qx:   q,
					qy:   q,
					tt:   tt,
					qout: 4,
				})
				assert.Equal(t, []uint16{
					(2 * x) % q,
					(x * y) % q,
					tt[x],
					(1 + x) % q,
				}, result, "q=%d, x=%d, y=%d", q, x, y)
			}
		}
	}
}

func TestMulAsymmetric(t *testing.T) {
	for _, moduli := range [][2]uint16{{5, 2}, {7, 3}, {17, 8}} {
		qx := moduli[0]
		qy := moduli[1]
		tt := make([]uint16, qx)
		for i := range tt {
			tt[i] = uint16(i % 2)
		}
		for x := uint16(0); x < qx; x++ {
			for y := uint16(0); y < qy; y++ {
				result := runGates(t, gateTest{
					x:    x,
					y:    y,
					qx:   qx,
					qy:   qy,
					tt:   tt,
					qout: 2,
				})
				assert.Equal(t, (x*y)%qx, result[1],
					"q=%v, x=%d, y=%d", moduli, x, y)
				assert.Equal(t, x%2, result[2])
			}
		}
	}
}

func TestReveal(t *testing.T) {
	ga, ea := channel.Pipe()
	gch := channel.New(ga)
	ech := channel.New(ea)

	var eg errgroup.Group
	var garblerResult uint16

	eg.Go(func() error {
		g := NewGarbler(gch, rand.Reader)
		x, err := g.Encode(2, 3)
		if err != nil {
			return err
		}
		y, err := g.Encode(2, 3)
		if err != nil {
			return err
		}
		z, err := g.Mul(x, y)
		if err != nil {
			return err
		}
		garblerResult, err = g.Reveal(z)
		return err
	})

	e := NewEvaluator(ech)
	x, err := e.Receive(3)
	require.NoError(t, err)
	y, err := e.Receive(3)
	require.NoError(t, err)
	z, err := e.Mul(x, y)
	require.NoError(t, err)
	v, err := e.Reveal(z)
	require.NoError(t, err)
	require.NoError(t, eg.Wait())

	assert.Equal(t, uint16(1), v)
	assert.Equal(t, uint16(1), garblerResult)
}

func TestOutputUnknownLabel(t *testing.T) {
	ga, ea := channel.Pipe()

	g := NewGarbler(channel.New(ga), rand.Reader)
	x, err := g.CreateWire(5)
	require.NoError(t, err)
	_, ok, err := g.Output(x)
	require.NoError(t, err)
	assert.False(t, ok)

	e := NewEvaluator(channel.New(ea))
	forged, err := RandomWire(rand.Reader, 5)
	require.NoError(t, err)
	_, ok, err = e.Output(forged)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGateErrors(t *testing.T) {
	ga, ea := channel.Pipe()
	g := NewGarbler(channel.New(ga), rand.Reader)
	e := NewEvaluator(channel.New(ea))

	_, err := g.Add(Zero(2), Zero(3))
	assert.True(t, errors.Is(err, ErrModulusMismatch))
	assert.True(t, errors.Is(err, ErrGarbler))

	_, err = e.Sub(Zero(2), Zero(3))
	assert.True(t, errors.Is(err, ErrModulusMismatch))
	assert.True(t, errors.Is(err, ErrEvaluator))

	_, err = g.Proj(Zero(3), 2, nil)
	assert.True(t, errors.Is(err, ErrTruthTableRequired))

	_, err = g.Proj(Zero(3), 2, []uint16{0, 1})
	assert.True(t, errors.Is(err, ErrTruthTableRequired))

	_, err = g.Mul(Zero(13), Zero(11))
	assert.True(t, errors.Is(err, ErrAsymmetricModulus))

	_, err = e.Mul(Zero(11), Zero(13))
	assert.True(t, errors.Is(err, ErrAsymmetricModulus))
}

func TestIOError(t *testing.T) {
	ga, ea := channel.Pipe()
	require.NoError(t, ga.Close())

	e := NewEvaluator(channel.New(ea))
	_, err := e.Receive(2)
	assert.True(t, errors.Is(err, channel.ErrIO))
}
