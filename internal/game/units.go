package game

import "fmt"

// UnitID addresses a unit in the battle's arena. IDs are assigned in
// registry order at Start and never reused.
type UnitID int

// UnitSpec is one entry of the external unit registry.
type UnitSpec struct {
	Label        string
	Team         Team
	Position     Vec3
	Health       int
	AttackDamage int
}

// UnitSource supplies the unit registry when a battle starts.
type UnitSource interface {
	Units() []UnitSpec
}

// UnitList is a fixed unit registry.
type UnitList []UnitSpec

// Units returns the list itself.
func (l UnitList) Units() []UnitSpec { return l }

// UnitRecord is the simulation's view of a unit. Position is authoritative;
// the unit's hex is derived from it on every use.
type UnitRecord struct {
	ID           UnitID
	Label        string
	Team         Team
	Position     Vec3
	Health       int
	MaxHealth    int
	AttackDamage int
	Alive        bool
}

func (u *UnitRecord) String() string {
	return fmt.Sprintf("%s[%s hp=%d/%d]", u.Label, u.Team, u.Health, u.MaxHealth)
}

// roster owns every unit record and the ordered live set.
type roster struct {
	layout Layout
	all    []*UnitRecord
	live   []*UnitRecord
}

func newRoster(layout Layout, specs []UnitSpec) *roster {
	r := &roster{layout: layout}
	for _, s := range specs {
		if s.Health <= 0 {
			continue
		}
		id := UnitID(len(r.all))
		label := s.Label
		if label == "" {
			label = fmt.Sprintf("%s%d", s.Team.Short(), id)
		}
		u := &UnitRecord{
			ID:           id,
			Label:        label,
			Team:         s.Team,
			Position:     s.Position,
			Health:       s.Health,
			MaxHealth:    s.Health,
			AttackDamage: s.AttackDamage,
			Alive:        true,
		}
		r.all = append(r.all, u)
		r.live = append(r.live, u)
	}
	return r
}

func (r *roster) get(id UnitID) (*UnitRecord, bool) {
	if id < 0 || int(id) >= len(r.all) {
		return nil, false
	}
	return r.all[id], true
}

// hexOf re-derives the unit's coordinate from its position.
func (r *roster) hexOf(u *UnitRecord) HexCoord {
	return r.layout.WorldToHex(u.Position)
}

// snapshot copies the live set so removals during a pass do not shift it.
func (r *roster) snapshot() []*UnitRecord {
	out := make([]*UnitRecord, len(r.live))
	copy(out, r.live)
	return out
}

// occupantAt returns the first live unit standing on c.
func (r *roster) occupantAt(c HexCoord) (*UnitRecord, bool) {
	for _, u := range r.live {
		if r.hexOf(u) == c {
			return u, true
		}
	}
	return nil, false
}

// occupiedByOther reports whether a live unit other than self stands on c.
func (r *roster) occupiedByOther(c HexCoord, self UnitID) bool {
	for _, u := range r.live {
		if u.ID != self && r.hexOf(u) == c {
			return true
		}
	}
	return false
}

func (r *roster) remove(id UnitID) {
	for i, u := range r.live {
		if u.ID == id {
			u.Alive = false
			r.live = append(r.live[:i], r.live[i+1:]...)
			return
		}
	}
}

func (r *roster) aliveCount(t Team) int {
	n := 0
	for _, u := range r.live {
		if u.Team == t {
			n++
		}
	}
	return n
}

func (r *roster) total(t Team) int {
	n := 0
	for _, u := range r.all {
		if u.Team == t {
			n++
		}
	}
	return n
}
