package game

import (
	"math/rand"
	"sort"
)

// Deploy places perSide units for each team on distinct, non-castle tiles
// of the team's own zone. The result depends only on rng's seed. Units are
// interleaved left, right, left, ... so neither side always moves first.
func Deploy(rng *rand.Rand, spec MapSpec, perSide, health, attack int) UnitList {
	layout := NewLayout(spec.Width, spec.Height, spec.HexSize)
	seen := make(map[HexCoord]bool)
	pools := map[Zone][]HexCoord{}
	for _, t := range spec.Tiles {
		c := layout.WorldToHex(t.Position)
		if t.Castle || seen[c] {
			continue
		}
		seen[c] = true
		pools[t.Zone] = append(pools[t.Zone], c)
	}

	picks := map[Team][]HexCoord{}
	for _, team := range []Team{TeamLeft, TeamRight} {
		pool := pools[team.Zone()]
		sort.Slice(pool, func(i, j int) bool {
			if pool[i].X != pool[j].X {
				return pool[i].X < pool[j].X
			}
			return pool[i].Y < pool[j].Y
		})
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		picks[team] = pool[:min(perSide, len(pool))]
	}

	var out UnitList
	for i := 0; i < perSide; i++ {
		for _, team := range []Team{TeamLeft, TeamRight} {
			if i >= len(picks[team]) {
				continue
			}
			out = append(out, UnitSpec{
				Team:         team,
				Position:     layout.HexToWorld(picks[team][i]),
				Health:       health,
				AttackDamage: attack,
			})
		}
	}
	return out
}
