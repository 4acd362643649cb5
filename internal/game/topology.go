package game

import (
	"fmt"
	"io"
	"strings"
)

// DumpTopology writes one line per tile listing its neighbors in the order
// the planner visits them.
//
//	(3,2) right      → (1,2) (5,2) (2,2) (4,2) (2,1) (4,1)
func (g *Grid) DumpTopology(w io.Writer) error {
	for _, c := range g.Coords() {
		t := g.tiles[c]
		kind := t.Zone.String()
		if t.Castle {
			kind += " castle"
		}
		ns := g.Neighbors(c)
		parts := make([]string, len(ns))
		for i, n := range ns {
			parts[i] = n.String()
		}
		if _, err := fmt.Fprintf(w, "%-7s %-12s → %s\n", c, kind, strings.Join(parts, " ")); err != nil {
			return err
		}
	}
	return nil
}
