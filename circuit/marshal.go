//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"bufio"
	"fmt"
	"io"
)

// MarshalFormat marshals circuit in the specified format.
func (c *Circuit) MarshalFormat(out io.Writer, format string) error {
	switch format {
	case "bristol":
		return c.MarshalBristol(out)
	case "dump":
		c.Dump(out)
		return nil
	case "dot":
		c.Dot(out)
		return nil
	default:
		return fmt.Errorf("unsupported circuit format: %s", format)
	}
}

// MarshalBristol marshals the circuit in the Bristol Fashion format.
func (c *Circuit) MarshalBristol(out io.Writer) error {
	w := bufio.NewWriter(out)

	fmt.Fprintf(w, "%d %d\n", c.NumGates, c.NumWires)
	fmt.Fprintf(w, "%d", len(c.Inputs))
	for _, input := range c.Inputs {
		fmt.Fprintf(w, " %d", input.Size)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d", len(c.Outputs))
	for _, ret := range c.Outputs {
		fmt.Fprintf(w, " %d", ret.Size)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)

	for _, g := range c.Gates {
		if g.Op == EQ {
			fmt.Fprintf(w, "1 1 %d %d EQ\n", g.Input0, g.Output)
			continue
		}
		fmt.Fprintf(w, "%d 1", len(g.Inputs()))
		for _, i := range g.Inputs() {
			fmt.Fprintf(w, " %d", i)
		}
		fmt.Fprintf(w, " %d", g.Output)
		fmt.Fprintf(w, " %s\n", g.Op)
	}

	return w.Flush()
}
