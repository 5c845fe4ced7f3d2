//
// eval.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"github.com/cockroachdb/errors"
	"github.com/markkurossi/gcmpc/fancy"
)

// ErrUnsetWire is returned when a gate reads a wire that no input or
// earlier gate has set.
var ErrUnsetWire = errors.New("unset wire")

// EvalWires runs the circuit's gates over the Fancy implementation f
// and returns the output wires. The input wires are the garbler's
// wires gb followed by the evaluator's wires ev. All wires have
// modulus 2.
func EvalWires[W any](c *Circuit, f fancy.Fancy[W], gb, ev []W) ([]W, error) {
	if len(gb)+len(ev) != c.Inputs.Size() {
		return nil, errors.Newf("invalid inputs: got %d wires, expected %d",
			len(gb)+len(ev), c.Inputs.Size())
	}

	wires := make([]W, c.NumWires)
	set := make([]bool, c.NumWires)

	for i, w := range gb {
		wires[i] = w
		set[i] = true
	}
	for i, w := range ev {
		wires[len(gb)+i] = w
		set[len(gb)+i] = true
	}

	get := func(idx int, w Wire) (W, error) {
		if !set[w] {
			var zero W
			return zero, errors.Wrapf(ErrUnsetWire, "gate %d: %s", idx, w)
		}
		return wires[w], nil
	}

	var err error
	for idx, gate := range c.Gates {
		var a, b, r W

		switch gate.Op {
		case XOR, XNOR, AND, OR:
			a, err = get(idx, gate.Input0)
			if err != nil {
				return nil, err
			}
			b, err = get(idx, gate.Input1)
			if err != nil {
				return nil, err
			}
		case INV, EQW:
			a, err = get(idx, gate.Input0)
			if err != nil {
				return nil, err
			}
		}

		switch gate.Op {
		case XOR:
			r, err = fancy.Xor(f, a, b)
		case XNOR:
			r, err = fancy.Xnor(f, a, b)
		case AND:
			r, err = fancy.And(f, a, b)
		case OR:
			r, err = fancy.Or(f, a, b)
		case INV:
			r, err = fancy.Not(f, a)
		case EQ:
			r, err = f.Constant(uint16(gate.Input0), 2)
		case EQW:
			r = a
		default:
			err = errors.Newf("gate %d: invalid operation %s", idx, gate.Op)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "gate %d", idx)
		}
		wires[gate.Output] = r
		set[gate.Output] = true
	}

	n := c.Outputs.Size()
	result := make([]W, n)
	for i := 0; i < n; i++ {
		result[i], err = get(len(c.Gates), Wire(c.NumWires-n+i))
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Eval runs the circuit and outputs its result wires. The returned
// bool is true if the caller learned the output values.
func Eval[W any](c *Circuit, f fancy.Fancy[W], gb, ev []W) (
	[]uint16, bool, error) {

	outputs, err := EvalWires(c, f, gb, ev)
	if err != nil {
		return nil, false, err
	}
	return fancy.OutputMany(f, outputs)
}

// EvalReveal runs the circuit and reveals its result to all parties.
func EvalReveal[W any](c *Circuit, f fancy.Reveal[W], gb, ev []W) (
	[]uint16, error) {

	outputs, err := EvalWires[W](c, f, gb, ev)
	if err != nil {
		return nil, err
	}
	return fancy.RevealMany(f, outputs)
}
