package game

// Target is what a unit moves toward or attacks this turn.
type Target struct {
	Coord HexCoord
	// Enemy is the chosen enemy, or nil when heading for the objective.
	Enemy *UnitRecord
}

// Objective reports whether the target is the fallback objective tile.
func (t Target) Objective() bool { return t.Enemy == nil }

// selectTarget picks the live enemy nearest to u by cube distance, scanning
// in roster order so the earliest enemy wins ties. With no enemies left the
// team's objective corner is returned.
func selectTarget(u *UnitRecord, g *Grid, r *roster) Target {
	from := r.hexOf(u)
	var best *UnitRecord
	var bestCoord HexCoord
	bestDist := -1
	for _, e := range r.live {
		if e.Team == u.Team {
			continue
		}
		c := r.hexOf(e)
		d := CubeDistance(from, c)
		if bestDist < 0 || d < bestDist {
			best, bestCoord, bestDist = e, c, d
		}
	}
	if best == nil {
		return Target{Coord: g.Objective(u.Team)}
	}
	return Target{Coord: bestCoord, Enemy: best}
}
