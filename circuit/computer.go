//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"fmt"
	"math/big"
)

// Compute evaluates the circuit in plaintext. The inputs are given
// per input argument and the result is returned per output argument.
func (c *Circuit) Compute(inputs []*big.Int) ([]*big.Int, error) {
	bits, err := c.Inputs.Bits(inputs)
	if err != nil {
		return nil, err
	}
	out, err := c.ComputeBits(bits)
	if err != nil {
		return nil, err
	}
	return c.Outputs.Join(out), nil
}

// ComputeBits evaluates the circuit in plaintext over input bits.
func (c *Circuit) ComputeBits(inputs []uint16) ([]uint16, error) {
	if len(inputs) != c.Inputs.Size() {
		return nil, fmt.Errorf("invalid inputs: got %d bits, expected %d",
			len(inputs), c.Inputs.Size())
	}

	wires := make([]byte, c.NumWires)
	for w, bit := range inputs {
		wires[w] = byte(bit & 1)
	}

	// Evaluate circuit.
	for _, gate := range c.Gates {
		var result byte

		switch gate.Op {
		case XOR:
			result = wires[gate.Input0] ^ wires[gate.Input1]

		case XNOR:
			result = 1 ^ wires[gate.Input0] ^ wires[gate.Input1]

		case AND:
			result = wires[gate.Input0] & wires[gate.Input1]

		case OR:
			result = wires[gate.Input0] | wires[gate.Input1]

		case INV:
			result = 1 ^ wires[gate.Input0]

		case EQ:
			result = byte(gate.Input0)

		case EQW:
			result = wires[gate.Input0]

		default:
			return nil, fmt.Errorf("invalid gate %s", gate.Op)
		}

		wires[gate.Output] = result
	}

	// Construct outputs
	w := c.NumWires - c.Outputs.Size()
	result := make([]uint16, c.Outputs.Size())
	for i := range result {
		result[i] = uint16(wires[w+i])
	}

	return result, nil
}
