package game

// DefaultNeighborLimit is the maximum world distance between neighbors, as a
// multiple of hex size. Interior diagonals sit roughly 2.64 hex sizes apart,
// so anything below that severs them.
const DefaultNeighborLimit = 3.0

// rawNeighbors lists candidate neighbors of c before filtering.
//
// Forward (x±2) and side (x±1) neighbors exist everywhere. Diagonals depend
// on column parity, and the two bottom rows form a funnel: even columns in
// row 0 have no diagonals, odd columns in row 0 reach up into row 1, even
// columns in row 1 reach down into row 0, and odd columns in row 1 have none.
// Everywhere else even columns reach up and odd columns reach down.
func rawNeighbors(c HexCoord) []HexCoord {
	x, y := c.X, c.Y
	forward := []HexCoord{{x - 2, y}, {x + 2, y}}
	side := []HexCoord{{x - 1, y}, {x + 1, y}}

	out := make([]HexCoord, 0, 6)
	if !c.oddColumn() {
		switch y {
		case 0:
			out = append(out, forward...)
			out = append(out, side...)
		case 1:
			out = append(out, HexCoord{x - 1, y - 1}, HexCoord{x + 1, y - 1})
			out = append(out, forward...)
			out = append(out, side...)
		default:
			out = append(out, forward...)
			out = append(out, side...)
			out = append(out, HexCoord{x - 1, y + 1}, HexCoord{x + 1, y + 1})
		}
		return out
	}
	switch y {
	case 0:
		out = append(out, HexCoord{x - 1, y + 1}, HexCoord{x + 1, y + 1})
		out = append(out, forward...)
		out = append(out, side...)
	case 1:
		out = append(out, forward...)
		out = append(out, side...)
	default:
		out = append(out, forward...)
		out = append(out, side...)
		out = append(out, HexCoord{x - 1, y - 1}, HexCoord{x + 1, y - 1})
	}
	return out
}

// Neighbors returns the valid neighbors of c in a stable order. Candidates
// are dropped when out of bounds, missing a tile, or farther than the
// neighbor limit from c (guards against wrap matches on irregular maps).
// The relation is not symmetric.
func (g *Grid) Neighbors(c HexCoord) []HexCoord {
	raw := rawNeighbors(c)
	out := raw[:0]
	for _, n := range raw {
		if !g.layout.InBounds(n) {
			continue
		}
		if _, ok := g.tiles[n]; !ok {
			continue
		}
		if g.layout.WorldDistance(c, n) > g.neighborLimit {
			continue
		}
		out = append(out, n)
	}
	return out
}

// IsAdjacent reports whether b is in the neighbor set of a.
func (g *Grid) IsAdjacent(a, b HexCoord) bool {
	for _, n := range g.Neighbors(a) {
		if n == b {
			return true
		}
	}
	return false
}

// Edges returns every directed neighbor link, ordered by source coordinate.
func (g *Grid) Edges() [][2]HexCoord {
	var out [][2]HexCoord
	for _, c := range g.Coords() {
		for _, n := range g.Neighbors(c) {
			out = append(out, [2]HexCoord{c, n})
		}
	}
	return out
}
