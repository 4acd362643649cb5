package game

import "testing"

func TestOccupancy_PassabilityRules(t *testing.T) {
	tb := NewTestBattle(
		WithCastle(HexCoord{5, 3}),
		WithLeftUnit("L0", 0, 2, 10, 1),
		WithLeftUnit("L1", 2, 2, 10, 1),
		WithRightUnit("R0", 4, 2, 10, 1),
	)
	if err := tb.StartErr(); err != nil {
		t.Fatalf("start: %v", err)
	}
	occ := tb.Battle.Occupancy()

	if occ.IsPassable(HexCoord{5, 3}, TeamLeft, false) {
		t.Error("castle should block ordinary movement")
	}
	if !occ.IsPassable(HexCoord{5, 3}, TeamLeft, true) {
		t.Error("castle should be enterable as the goal")
	}
	if occ.IsPassable(HexCoord{4, 2}, TeamLeft, false) {
		t.Error("enemy tile should block ordinary movement")
	}
	if !occ.IsPassable(HexCoord{4, 2}, TeamLeft, true) {
		t.Error("enemy tile should be enterable as the goal")
	}
	if occ.IsPassable(HexCoord{2, 2}, TeamLeft, false) || occ.IsPassable(HexCoord{2, 2}, TeamLeft, true) {
		t.Error("friendly tile should never be passable")
	}
	if occ.IsPassable(HexCoord{9, 9}, TeamLeft, true) {
		t.Error("missing tile should never be passable")
	}

	occ.Reserve(HexCoord{1, 2}, 0)
	if occ.IsPassable(HexCoord{1, 2}, TeamRight, false) {
		t.Error("reserved tile should block other planners")
	}
	if id, ok := occ.ReservedBy(HexCoord{1, 2}); !ok || id != 0 {
		t.Errorf("ReservedBy = %d, %v", id, ok)
	}
	occ.Release(HexCoord{1, 2})
	if !occ.IsPassable(HexCoord{1, 2}, TeamRight, false) {
		t.Error("released tile should be passable again")
	}
	occ.Reserve(HexCoord{1, 2}, 0)
	occ.ClearReservations()
	if _, ok := occ.ReservedBy(HexCoord{1, 2}); ok {
		t.Error("ClearReservations left a claim behind")
	}
}

func TestOccupancy_FlagsFollowUnits(t *testing.T) {
	tb := NewTestBattle(
		WithLeftUnit("L0", 0, 2, 10, 1),
		WithRightUnit("R0", 5, 2, 10, 1),
	)
	g := tb.Battle.Grid()
	if tile, _ := g.Tile(HexCoord{0, 2}); !tile.Occupied {
		t.Fatal("start should flag occupied tiles")
	}
	tb.RunTicks(1)
	if tile, _ := g.Tile(HexCoord{0, 2}); tile.Occupied {
		t.Fatal("vacated tile still flagged")
	}
	if tile, _ := g.Tile(tb.HexOf("L0")); !tile.Occupied {
		t.Fatal("destination not flagged")
	}
}

func TestSelectTarget_NearestThenFirst(t *testing.T) {
	tb := NewTestBattle(
		WithGrid(16, 4),
		WithLeftUnit("L0", 4, 2, 10, 1),
		WithRightUnit("R0", 12, 2, 10, 1),
		WithRightUnit("R1", 8, 2, 10, 1),
		WithRightUnit("R2", 0, 2, 10, 1),
	)
	l0, _ := tb.ByLabel("L0")
	tgt, err := tb.Battle.SelectTarget(l0.ID)
	if err != nil {
		t.Fatalf("SelectTarget: %v", err)
	}
	// R1 and R2 are both four columns away; R1 comes first in the registry.
	if tgt.Enemy == nil || tgt.Enemy.Label != "R1" {
		t.Fatalf("expected R1, got %+v", tgt)
	}
	if tgt.Objective() {
		t.Fatal("an enemy target is not the objective")
	}
}

func TestSelectTarget_ObjectiveWhenNoEnemies(t *testing.T) {
	tb := NewTestBattle(
		WithLeftUnit("L0", 0, 2, 10, 1),
		WithRightUnit("R0", 5, 2, 10, 1),
	)
	r0, _ := tb.ByLabel("R0")
	if err := tb.Battle.SetUnitHealth(r0.ID, 0); err != nil {
		t.Fatalf("SetUnitHealth: %v", err)
	}
	l0, _ := tb.ByLabel("L0")
	tgt, _ := tb.Battle.SelectTarget(l0.ID)
	if !tgt.Objective() || tgt.Coord != (HexCoord{5, 3}) {
		t.Fatalf("expected objective (5,3), got %+v", tgt)
	}
}
