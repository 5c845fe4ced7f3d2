//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"fmt"
	"io"
)

// Dot creates graphviz dot output of the circuit. The input wires are
// grouped into one cluster per input argument so the parties' inputs
// are visible. Gates that need garbled tables are filled, free gates
// are drawn as outlines.
func (c *Circuit) Dot(out io.Writer) {
	fmt.Fprintf(out, "digraph circuit {\n")
	fmt.Fprintf(out, "  overlap=scale;\n")
	fmt.Fprintf(out, "  node [fontname=\"Helvetica\"];\n")

	var w int
	for idx, arg := range c.Inputs {
		fmt.Fprintf(out, "  subgraph cluster_in%d {\n", idx)
		fmt.Fprintf(out, "    label=\"%s\";\n    rank=same;\n", arg)
		for i := 0; i < arg.Size; i++ {
			fmt.Fprintf(out, "    w%d [shape=plaintext,label=\"%d\"];\n",
				w, w)
			w++
		}
		fmt.Fprintf(out, "  }\n")
	}

	fmt.Fprintf(out, "  {\n    rank=same;\n")
	for i := c.NumWires - c.Outputs.Size(); i < c.NumWires; i++ {
		fmt.Fprintf(out, "    w%d [shape=plaintext,label=\"%d\"];\n", i, i)
	}
	fmt.Fprintf(out, "  }\n")

	drivers := make(map[Wire]int)
	for idx, gate := range c.Gates {
		drivers[gate.Output] = idx
	}
	source := func(w Wire) string {
		idx, ok := drivers[w]
		if ok && int(w) >= c.Inputs.Size() {
			return fmt.Sprintf("g%d", idx)
		}
		return w.String()
	}

	for idx, gate := range c.Gates {
		var label, style string
		switch gate.Op {
		case EQ:
			label = fmt.Sprintf("%s %d", gate.Op, gate.Input0)
		default:
			label = gate.Op.String()
		}
		switch gate.Op {
		case AND, OR:
			style = ",style=filled,fillcolor=lightgray"
		}
		fmt.Fprintf(out, "  g%d [shape=box,label=\"%s\"%s];\n",
			idx, label, style)

		for _, i := range gate.Inputs() {
			fmt.Fprintf(out, "  %s -> g%d;\n", source(i), idx)
		}
	}
	for idx, gate := range c.Gates {
		if int(gate.Output) >= c.NumWires-c.Outputs.Size() {
			fmt.Fprintf(out, "  g%d -> w%d;\n", idx, gate.Output)
		}
	}
	fmt.Fprintf(out, "}\n")
}
