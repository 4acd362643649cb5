package game

import "fmt"

// resolveCombat acts on the tile c next to the mover. The occupant is
// re-derived from live positions: an enemy takes the mover's attack damage,
// an empty tile is the enemy objective and ends the battle at once, and a
// friendly occupant means the mover holds.
func (b *Battle) resolveCombat(mover *UnitRecord, c HexCoord) {
	from := b.units.hexOf(mover)
	if !b.grid.IsAdjacent(from, c) {
		return
	}
	occupant, ok := b.units.occupantAt(c)
	switch {
	case !ok:
		b.simLog.addUnit(b.turn, mover, "combat", "capture", c.String(), 0)
		b.log.Info().Int("turn", b.turn).Str("unit", mover.Label).
			Stringer("team", mover.Team).Stringer("tile", c).Msg("Objective captured")
		b.finish(VictoryFor(mover.Team), ReasonObjective, mover.Label)
	case occupant.Team == mover.Team:
		b.simLog.AddVerbose(b.turn, mover.Label, mover.Team.String(), "combat", "hold",
			fmt.Sprintf("%s held by %s", c, occupant.Label), 0)
	default:
		b.applyDamage(mover, occupant)
	}
}

// applyDamage is the takeDamage command: health never drops below zero and
// a unit at zero is removed before anyone else acts.
func (b *Battle) applyDamage(attacker, target *UnitRecord) {
	amount := max(0, attacker.AttackDamage)
	before := target.Health
	target.Health = max(0, before-amount)
	if b.hooks.OnDamage != nil {
		b.hooks.OnDamage(target.ID, amount)
	}
	b.simLog.addUnit(b.turn, attacker, "combat", "hit",
		fmt.Sprintf("%s -%d (%d → %d)", target.Label, amount, before, target.Health), float64(amount))

	killed := target.Health == 0
	b.metrics.attack(attacker.Team, killed)
	if killed {
		b.kill(target, attacker)
	}
}

// kill removes u from the live set and clears its tile. killer is nil for
// deaths reported from outside the engine.
func (b *Battle) kill(u *UnitRecord, killer *UnitRecord) {
	c := b.units.hexOf(u)
	b.units.remove(u.ID)
	b.grid.setOccupied(c, b.units.occupiedByOther(c, u.ID))
	if b.hooks.OnDeath != nil {
		b.hooks.OnDeath(u.ID)
	}

	by := "external"
	if killer != nil {
		by = killer.Label
	}
	b.simLog.addUnit(b.turn, u, "combat", "kill", fmt.Sprintf("%s at %s by %s", u.Label, c, by), 0)
	b.log.Debug().Int("turn", b.turn).Str("unit", u.Label).Str("by", by).Msg("Unit died")
}

// moveUnit is the moveTo command. The destination is checked against live
// positions once more, reserved for the rest of the tick, and the tiles'
// occupied flags are updated.
func (b *Battle) moveUnit(u *UnitRecord, from, to HexCoord) {
	if b.units.occupiedByOther(to, u.ID) {
		b.simLog.addUnit(b.turn, u, "move", "rejected", fmt.Sprintf("%s → %s occupied", from, to), 0)
		b.log.Warn().Int("turn", b.turn).Str("unit", u.Label).Stringer("to", to).Msg("Move rejected, tile occupied")
		return
	}
	b.occ.Reserve(to, u.ID)
	dest := b.grid.layout.HexToWorld(to)
	b.grid.setOccupied(from, b.units.occupiedByOther(from, u.ID))
	b.grid.setOccupied(to, true)
	if b.cfg.InstantMoves {
		u.Position = dest
	}
	if b.hooks.OnMove != nil {
		b.hooks.OnMove(u.ID, dest)
	}
	b.metrics.move(u.Team)
	b.simLog.addUnit(b.turn, u, "move", "step", fmt.Sprintf("%s → %s", from, to), 0)
}
