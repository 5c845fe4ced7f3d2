//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package fancy

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Item is a plaintext wire value.
type Item struct {
	Val uint16
	Q   uint16
}

func (i Item) String() string {
	return fmt.Sprintf("%d/%d", i.Val, i.Q)
}

// Dummy implements all gate operations in plaintext. It is the
// reference for the garbled implementations.
type Dummy struct {
	inputs []uint16
}

var (
	_ Reveal[Item]     = &Dummy{}
	_ Input[Item, int] = &Dummy{}
)

// NewDummy creates a plaintext party. The values are consumed in order
// by ReceiveMany.
func NewDummy(values ...uint16) *Dummy {
	return &Dummy{
		inputs: values,
	}
}

func checkItems(op string, x, y Item) error {
	if x.Q != y.Q {
		return errors.Newf("%s: modulus mismatch: %d != %d", op, x.Q, y.Q)
	}
	return nil
}

func newItem(val uint32, q uint16) Item {
	return Item{
		Val: uint16(val % uint32(q)),
		Q:   q,
	}
}

// EncodeMany implements Input.EncodeMany.
func (d *Dummy) EncodeMany(values, moduli []uint16) ([]Item, error) {
	if len(values) != len(moduli) {
		return nil, errors.Newf("got %d values for %d moduli",
			len(values), len(moduli))
	}
	result := make([]Item, len(values))
	for i, v := range values {
		if moduli[i] < 2 {
			return nil, errors.Newf("invalid modulus %d", moduli[i])
		}
		result[i] = newItem(uint32(v), moduli[i])
	}
	return result, nil
}

// ReceiveMany implements Input.ReceiveMany. The party argument is
// ignored.
func (d *Dummy) ReceiveMany(from int, moduli []uint16) ([]Item, error) {
	if len(d.inputs) < len(moduli) {
		return nil, errors.Newf("not enough inputs: got %d, need %d",
			len(d.inputs), len(moduli))
	}
	values := d.inputs[:len(moduli)]
	d.inputs = d.inputs[len(moduli):]
	return d.EncodeMany(values, moduli)
}

// Constant implements Fancy.Constant.
func (d *Dummy) Constant(x, q uint16) (Item, error) {
	if q < 2 {
		return Item{}, errors.Newf("invalid modulus %d", q)
	}
	return newItem(uint32(x), q), nil
}

// Add implements Fancy.Add.
func (d *Dummy) Add(x, y Item) (Item, error) {
	if err := checkItems("add", x, y); err != nil {
		return Item{}, err
	}
	return newItem(uint32(x.Val)+uint32(y.Val), x.Q), nil
}

// Sub implements Fancy.Sub.
func (d *Dummy) Sub(x, y Item) (Item, error) {
	if err := checkItems("sub", x, y); err != nil {
		return Item{}, err
	}
	return newItem(uint32(x.Val)+uint32(x.Q)-uint32(y.Val), x.Q), nil
}

// Cmul implements Fancy.Cmul.
func (d *Dummy) Cmul(x Item, c uint16) (Item, error) {
	return newItem(uint32(x.Val)*uint32(c), x.Q), nil
}

// Negate implements Fancy.Negate.
func (d *Dummy) Negate(x Item) (Item, error) {
	return newItem(uint32(x.Q)-uint32(x.Val), x.Q), nil
}

// Mul implements Fancy.Mul. The result has the larger of the two
// moduli.
func (d *Dummy) Mul(x, y Item) (Item, error) {
	if x.Q < y.Q {
		x, y = y, x
	}
	return newItem(uint32(x.Val)*uint32(y.Val), x.Q), nil
}

// Proj implements Fancy.Proj.
func (d *Dummy) Proj(x Item, q uint16, tt []uint16) (Item, error) {
	if int(x.Val) >= len(tt) {
		return Item{}, errors.New("truth table required")
	}
	if q < 2 {
		return Item{}, errors.Newf("invalid modulus %d", q)
	}
	return newItem(uint32(tt[x.Val]), q), nil
}

// Output implements Fancy.Output.
func (d *Dummy) Output(x Item) (uint16, bool, error) {
	return x.Val, true, nil
}

// Reveal implements Reveal.Reveal.
func (d *Dummy) Reveal(x Item) (uint16, error) {
	return x.Val, nil
}
