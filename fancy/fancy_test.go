//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package fancy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDummyArithmetic(t *testing.T) {
	d := NewDummy()

	for _, q := range []uint16{2, 3, 5, 17} {
		for x := uint16(0); x < q; x++ {
			for y := uint16(0); y < q; y++ {
				ws, err := d.EncodeMany([]uint16{x, y}, []uint16{q, q})
				require.NoError(t, err)

				sum, err := d.Add(ws[0], ws[1])
				require.NoError(t, err)
				assert.Equal(t, (x+y)%q, sum.Val)

				diff, err := d.Sub(ws[0], ws[1])
				require.NoError(t, err)
				assert.Equal(t, (x+q-y)%q, diff.Val)

				prod, err := d.Mul(ws[0], ws[1])
				require.NoError(t, err)
				assert.Equal(t, (x*y)%q, prod.Val)

				neg, err := d.Negate(ws[0])
				require.NoError(t, err)
				assert.Equal(t, (q-x)%q, neg.Val)
			}
		}
	}
}

func TestDummyErrors(t *testing.T) {
	d := NewDummy(1)

	a, err := d.Constant(1, 2)
	require.NoError(t, err)
	b, err := d.Constant(1, 3)
	require.NoError(t, err)

	_, err = d.Add(a, b)
	assert.Error(t, err)

	_, err = d.Proj(b, 2, nil)
	assert.Error(t, err)

	_, err = d.ReceiveMany(0, []uint16{2, 2})
	assert.Error(t, err)

	ws, err := d.ReceiveMany(0, []uint16{2})
	require.NoError(t, err)
	assert.Equal(t, uint16(1), ws[0].Val)
}

func TestGadgets(t *testing.T) {
	d := NewDummy()

	for a := uint16(0); a < 2; a++ {
		for b := uint16(0); b < 2; b++ {
			wa, err := d.Constant(a, 2)
			require.NoError(t, err)
			wb, err := d.Constant(b, 2)
			require.NoError(t, err)

			w, err := Xor[Item](d, wa, wb)
			require.NoError(t, err)
			assert.Equal(t, a^b, w.Val)

			w, err = And[Item](d, wa, wb)
			require.NoError(t, err)
			assert.Equal(t, a&b, w.Val)

			w, err = Or[Item](d, wa, wb)
			require.NoError(t, err)
			assert.Equal(t, a|b, w.Val)

			w, err = Xnor[Item](d, wa, wb)
			require.NoError(t, err)
			assert.Equal(t, 1^a^b, w.Val)

			w, err = Not[Item](d, wa)
			require.NoError(t, err)
			assert.Equal(t, 1^a, w.Val)

			for s := uint16(0); s < 2; s++ {
				ws, err := d.Constant(s, 2)
				require.NoError(t, err)
				w, err = Mux[Item](d, ws, wa, wb)
				require.NoError(t, err)
				if s == 1 {
					assert.Equal(t, a, w.Val)
				} else {
					assert.Equal(t, b, w.Val)
				}
			}
		}
	}
}

func TestHelpers(t *testing.T) {
	d := NewDummy(2, 1)

	x, err := Encode[Item, int](d, 4, 5)
	require.NoError(t, err)
	y, err := Receive[Item, int](d, 1, 5)
	require.NoError(t, err)
	z, err := Receive[Item, int](d, 1, 5)
	require.NoError(t, err)

	sum, err := AddMany[Item](d, []Item{x, y, z})
	require.NoError(t, err)

	p, err := d.Proj(sum, 2, []uint16{1, 0, 1, 0, 1})
	require.NoError(t, err)

	vals, ok, err := OutputMany[Item](d, []Item{sum, p})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []uint16{2, 1}, vals)

	vals, err = RevealMany[Item](d, []Item{sum, p})
	require.NoError(t, err)
	assert.Equal(t, []uint16{2, 1}, vals)
}
