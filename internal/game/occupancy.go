package game

// Occupancy answers passability questions for the planner and holds the
// per-tick reservation set. Occupation is always read from live unit
// positions, never from the tiles' Occupied flags.
type Occupancy struct {
	grid     *Grid
	units    *roster
	reserved map[HexCoord]UnitID
}

func newOccupancy(g *Grid, r *roster) *Occupancy {
	return &Occupancy{grid: g, units: r, reserved: make(map[HexCoord]UnitID)}
}

// IsPassable reports whether a unit of team may enter c.
//
// With allowGoal set, c is the mover's immediate target: castle tiles and
// enemy-held tiles are enterable, only a friendly occupant blocks. Otherwise
// castles, any occupant and tiles reserved this tick all block.
func (o *Occupancy) IsPassable(c HexCoord, team Team, allowGoal bool) bool {
	t, ok := o.grid.Tile(c)
	if !ok {
		return false
	}
	occupant, occupied := o.units.occupantAt(c)
	if allowGoal {
		return !occupied || occupant.Team != team
	}
	if t.Castle || occupied {
		return false
	}
	_, taken := o.reserved[c]
	return !taken
}

// Reserve claims c for id for the rest of the tick.
func (o *Occupancy) Reserve(c HexCoord, id UnitID) {
	o.reserved[c] = id
}

// Release drops any claim on c.
func (o *Occupancy) Release(c HexCoord) {
	delete(o.reserved, c)
}

// ReservedBy returns the unit holding a claim on c.
func (o *Occupancy) ReservedBy(c HexCoord) (UnitID, bool) {
	id, ok := o.reserved[c]
	return id, ok
}

// ClearReservations empties the reservation set. Called at tick start.
func (o *Occupancy) ClearReservations() {
	clear(o.reserved)
}

// syncFlags rebuilds every tile's Occupied flag from live positions.
func (o *Occupancy) syncFlags() {
	o.grid.clearOccupied()
	for _, u := range o.units.live {
		o.grid.setOccupied(o.units.hexOf(u), true)
	}
}
