//
// parser.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

var reParts = regexp.MustCompilePOSIX("[[:space:]]+")

var opsByName = map[string]Operation{
	"XOR":  XOR,
	"XNOR": XNOR,
	"AND":  AND,
	"OR":   OR,
	"INV":  INV,
	"NOT":  INV,
	"EQ":   EQ,
	"EQW":  EQW,
}

// ErrInvalidCircuit is returned for malformed circuit files.
var ErrInvalidCircuit = errors.New("invalid circuit")

func parseError(line int, format string, args ...interface{}) error {
	args = append([]interface{}{line}, args...)
	return errors.Wrapf(ErrInvalidCircuit, "line %d: "+format, args...)
}

type line struct {
	num   int
	parts []string
}

// Parse parses a circuit in the Bristol or in the Bristol Fashion
// format. The Bristol format has two input arguments and one output
// argument:
//
//	numGates numWires
//	n1 n2 n3
//
// The Bristol Fashion format has any number of input and output
// arguments:
//
//	numGates numWires
//	niv n1 ... nniv
//	nov m1 ... mnov
//
// Both formats are followed by the gate lines:
//
//	numInputs numOutputs in... out... OP
func Parse(in io.Reader) (*Circuit, error) {
	lines, err := readLines(in)
	if err != nil {
		return nil, err
	}
	if len(lines) < 3 {
		return nil, errors.Wrap(ErrInvalidCircuit, "truncated header")
	}

	hdr := lines[0]
	if len(hdr.parts) != 2 {
		return nil, parseError(hdr.num, "invalid header: %v", hdr.parts)
	}
	numGates, err := atoi(hdr, 0)
	if err != nil {
		return nil, err
	}
	numWires, err := atoi(hdr, 1)
	if err != nil {
		return nil, err
	}

	circ := &Circuit{
		NumGates: numGates,
		NumWires: numWires,
	}

	var gates []line
	if isGate(lines[2]) {
		// Bristol: n1 n2 n3
		l := lines[1]
		if len(l.parts) != 3 {
			return nil, parseError(l.num, "invalid I/O line: %v", l.parts)
		}
		var sizes [3]int
		for i := 0; i < 3; i++ {
			sizes[i], err = atoi(l, i)
			if err != nil {
				return nil, err
			}
		}
		circ.Inputs = IO{
			{Name: "g", Size: sizes[0]},
			{Name: "e", Size: sizes[1]},
		}
		circ.Outputs = IO{
			{Size: sizes[2]},
		}
		gates = lines[2:]
	} else {
		circ.Inputs, err = parseIO(lines[1])
		if err != nil {
			return nil, err
		}
		circ.Outputs, err = parseIO(lines[2])
		if err != nil {
			return nil, err
		}
		gates = lines[3:]
	}

	if len(gates) != numGates {
		return nil, errors.Wrapf(ErrInvalidCircuit,
			"got %d gates, expected %d", len(gates), numGates)
	}
	if circ.Inputs.Size()+circ.Outputs.Size() > numWires {
		return nil, errors.Wrapf(ErrInvalidCircuit,
			"%d wires is too few for %d inputs and %d outputs",
			numWires, circ.Inputs.Size(), circ.Outputs.Size())
	}

	for _, l := range gates {
		gate, err := parseGate(l, numWires)
		if err != nil {
			return nil, err
		}
		circ.Gates = append(circ.Gates, gate)
		circ.Stats[gate.Op]++
	}

	return circ, nil
}

func parseIO(l line) (IO, error) {
	n, err := atoi(l, 0)
	if err != nil {
		return nil, err
	}
	if n+1 != len(l.parts) {
		return nil, parseError(l.num, "invalid I/O line: %v", l.parts)
	}
	var result IO
	for i := 0; i < n; i++ {
		size, err := atoi(l, 1+i)
		if err != nil {
			return nil, err
		}
		result = append(result, IOArg{
			Size: size,
		})
	}
	return result, nil
}

func isGate(l line) bool {
	_, ok := opsByName[l.parts[len(l.parts)-1]]
	return ok
}

func parseGate(l line, numWires int) (Gate, error) {
	var gate Gate

	if len(l.parts) < 4 {
		return gate, parseError(l.num, "invalid gate: %v", l.parts)
	}
	op, ok := opsByName[l.parts[len(l.parts)-1]]
	if !ok {
		return gate, parseError(l.num, "invalid operation '%s'",
			l.parts[len(l.parts)-1])
	}
	gate.Op = op

	n1, err := atoi(l, 0)
	if err != nil {
		return gate, err
	}
	n2, err := atoi(l, 1)
	if err != nil {
		return gate, err
	}
	if 2+n1+n2+1 != len(l.parts) || n2 != 1 {
		return gate, parseError(l.num, "invalid gate: %v", l.parts)
	}

	var expected int
	switch op {
	case XOR, XNOR, AND, OR:
		expected = 2
	default:
		expected = 1
	}
	if n1 != expected {
		return gate, parseError(l.num, "%s: got %d inputs, expected %d",
			op, n1, expected)
	}

	var ws [3]int
	for i := 0; i < n1+n2; i++ {
		ws[i], err = atoi(l, 2+i)
		if err != nil {
			return gate, err
		}
		if ws[i] < 0 {
			return gate, parseError(l.num, "invalid wire %d", ws[i])
		}
		if op == EQ && i == 0 {
			if ws[i] > 1 {
				return gate, parseError(l.num, "invalid constant %d", ws[i])
			}
		} else if ws[i] >= numWires {
			return gate, parseError(l.num, "wire %d out of range", ws[i])
		}
	}

	gate.Input0 = Wire(ws[0])
	if n1 == 2 {
		gate.Input1 = Wire(ws[1])
	}
	gate.Output = Wire(ws[n1])

	return gate, nil
}

func atoi(l line, idx int) (int, error) {
	v, err := strconv.Atoi(l.parts[idx])
	if err != nil {
		return 0, parseError(l.num, "invalid number '%s'", l.parts[idx])
	}
	return v, nil
}

func readLines(in io.Reader) ([]line, error) {
	var result []line

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var num int
	for scanner.Scan() {
		num++
		text := strings.TrimSpace(scanner.Text())
		if len(text) == 0 {
			continue
		}
		result = append(result, line{
			num:   num,
			parts: reParts.Split(text, -1),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
