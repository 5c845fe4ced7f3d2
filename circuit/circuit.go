//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

// Package circuit implements Boolean circuits: the circuit
// representation, the Bristol parsers, a plaintext evaluator, the
// traversal that runs a circuit over any fancy.Fancy implementation,
// and a builder for programmatic circuits.
package circuit

import (
	"fmt"
	"io"
	"math/big"
)

// Operation specifies gate function.
type Operation byte

// Gate functions.
const (
	XOR Operation = iota
	XNOR
	AND
	OR
	INV
	EQ
	EQW
)

// Stats holds statistics about circuit operations.
type Stats [EQW + 1]int

// NonFree returns the number of gates that need garbled tables.
func (stats Stats) NonFree() int {
	return stats[AND] + stats[OR]
}

var opNames = map[Operation]string{
	XOR:  "XOR",
	XNOR: "XNOR",
	AND:  "AND",
	OR:   "OR",
	INV:  "INV",
	EQ:   "EQ",
	EQW:  "EQW",
}

func (op Operation) String() string {
	name, ok := opNames[op]
	if ok {
		return name
	}
	return fmt.Sprintf("{Operation %d}", op)
}

// IOArg describes circuit input argument.
type IOArg struct {
	Name string
	Size int
}

func (io IOArg) String() string {
	if len(io.Name) > 0 {
		return fmt.Sprintf("%s:%d", io.Name, io.Size)
	}
	return fmt.Sprintf("%d", io.Size)
}

// IO specifies circuit input and output arguments.
type IO []IOArg

// Size computes the size of the circuit input and output arguments in
// bits.
func (io IO) Size() int {
	var sum int
	for _, a := range io {
		sum += a.Size
	}
	return sum
}

func (io IO) String() string {
	var str = ""
	for i, a := range io {
		if i > 0 {
			str += ", "
		}
		str += a.String()
	}
	return str
}

// Split splits the value into separate I/O arguments.
func (io IO) Split(in *big.Int) []*big.Int {
	var result []*big.Int
	var bit int
	for _, arg := range io {
		r := big.NewInt(0)
		for i := 0; i < arg.Size; i++ {
			if in.Bit(bit) == 1 {
				r = big.NewInt(0).SetBit(r, i, 1)
			}
			bit++
		}
		result = append(result, r)
	}
	return result
}

// Bits returns the bits of the argument values, least significant bit
// first.
func (io IO) Bits(values []*big.Int) ([]uint16, error) {
	if len(values) != len(io) {
		return nil, fmt.Errorf("invalid amount of arguments: got %d, expected %d",
			len(values), len(io))
	}
	var result []uint16
	for idx, arg := range io {
		v := values[idx]
		if v.Sign() < 0 || v.BitLen() > arg.Size {
			return nil, fmt.Errorf("argument %d: value %v does not fit in %d bits",
				idx, v, arg.Size)
		}
		for i := 0; i < arg.Size; i++ {
			result = append(result, uint16(v.Bit(i)))
		}
	}
	return result, nil
}

// Join joins the output bits, least significant bit first, into
// argument values.
func (io IO) Join(bits []uint16) []*big.Int {
	in := big.NewInt(0)
	for i, b := range bits {
		if b != 0 {
			in.SetBit(in, i, 1)
		}
	}
	return io.Split(in)
}

// Circuit specifies a boolean circuit. The circuit's input wires are
// numbered from zero in the order of the Inputs arguments and its
// output wires are the last Outputs.Size() wires.
type Circuit struct {
	NumGates int
	NumWires int
	Inputs   IO
	Outputs  IO
	Gates    []Gate
	Stats    Stats
}

func (c *Circuit) String() string {
	var stats string

	for k := XOR; k <= EQW; k++ {
		v := c.Stats[k]
		if v == 0 {
			continue
		}
		if len(stats) > 0 {
			stats += " "
		}
		stats += fmt.Sprintf("%s=%d", k, v)
	}
	return fmt.Sprintf("#gates=%d (%s) #w=%d", c.NumGates, stats, c.NumWires)
}

// Cost computes the relative computational cost of the circuit.
func (c *Circuit) Cost() int {
	return c.Stats.NonFree() * 4
}

// Dump prints a debug dump of the circuit.
func (c *Circuit) Dump(out io.Writer) {
	fmt.Fprintf(out, "circuit %s\n", c)
	for id, gate := range c.Gates {
		fmt.Fprintf(out, "%04d\t%s\n", id, gate)
	}
}

// Gate specifies a boolean gate. For EQ gates, Input0 holds the
// constant value.
type Gate struct {
	Input0 Wire
	Input1 Wire
	Output Wire
	Op     Operation
}

func (g Gate) String() string {
	if g.Op == EQ {
		return fmt.Sprintf("%d %v %v", g.Input0, g.Op, g.Output)
	}
	return fmt.Sprintf("%v %v %v", g.Inputs(), g.Op, g.Output)
}

// Inputs returns gate input wires.
func (g Gate) Inputs() []Wire {
	switch g.Op {
	case XOR, XNOR, AND, OR:
		return []Wire{g.Input0, g.Input1}
	case INV, EQW:
		return []Wire{g.Input0}
	case EQ:
		return nil
	default:
		panic(fmt.Sprintf("unsupported gate type %s", g.Op))
	}
}

// Wire specifies a wire ID.
type Wire uint32

// ID returns the wire ID as integer.
func (w Wire) ID() int {
	return int(w)
}

func (w Wire) String() string {
	return fmt.Sprintf("w%d", w)
}
