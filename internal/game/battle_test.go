package game

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestBattle_AdjacentStartResolvesAsCombat(t *testing.T) {
	tb := NewTestBattle(
		WithMaxTurns(10),
		WithLeftUnit("L0", 2, 2, 10, 3),
		WithRightUnit("R0", 3, 2, 10, 4),
	)
	tb.RunTicks(1)

	if len(tb.Moves) != 0 {
		t.Fatalf("adjacent units should not move, got %v", tb.Moves)
	}
	r0, _ := tb.ByLabel("R0")
	if r0.Health != 7 {
		t.Fatalf("defender health = %d, want 7", r0.Health)
	}
	l0, _ := tb.ByLabel("L0")
	if l0.Health != 6 {
		t.Fatalf("R0 should strike back in the same tick, L0 health = %d", l0.Health)
	}
	if tb.SimLog.CountCategory("combat", "hit") != 2 {
		t.Fatalf("expected two hits:\n%s", tb.SimLog.Format())
	}
}

func TestBattle_BottomRowClimbsViaOddColumn(t *testing.T) {
	tb := NewTestBattle(
		WithLeftUnit("L0", 2, 0, 10, 1),
		WithRightUnit("R0", 2, 1, 10, 1),
	)
	tb.RunTicks(1)

	got := tb.HexOf("L0")
	if got.X%2 == 0 || got.Y != 0 {
		t.Fatalf("L0 should step into an odd column of row 0, got %s", got)
	}
	if !tb.SimLog.HasEntry("move", "step", "(2,0) → (1,0)") {
		t.Fatalf("missing move entry:\n%s", tb.SimLog.Format())
	}
}

// sharedDestination builds a single-row fight where L0 and L1 both want
// (2,0) on the first tick: (3,0) is missing, so the corridor runs
// (0,0)/(1,0) → (2,0) → (4,0) → R0 at (6,0).
func sharedDestination(extra ...BattleOption) *TestBattle {
	opts := []BattleOption{
		WithGrid(8, 1),
		WithMissing(HexCoord{3, 0}),
		WithLeftUnit("L0", 0, 0, 10, 1),
		WithLeftUnit("L1", 1, 0, 10, 1),
		WithRightUnit("R0", 6, 0, 10, 1),
	}
	return NewTestBattle(append(opts, extra...)...)
}

func TestBattle_ReservationKeepsDestinationExclusive(t *testing.T) {
	tb := sharedDestination()
	tb.RunTicks(1)

	on := 0
	for _, label := range []string{"L0", "L1", "R0"} {
		if tb.HexOf(label) == (HexCoord{2, 0}) {
			on++
		}
	}
	if on != 1 {
		t.Fatalf("expected exactly one unit on (2,0), got %d\n%s", on, tb.SimLog.Format())
	}
	if tb.HexOf("L1") != (HexCoord{1, 0}) {
		t.Fatalf("L1 should hold, got %s", tb.HexOf("L1"))
	}
}

func TestBattle_ReservationWithDeferredMoves(t *testing.T) {
	tb := sharedDestination(WithDeferredMoves())
	tb.RunTicks(1)

	claims := 0
	for _, m := range tb.Moves {
		if m.To == (HexCoord{2, 0}) {
			claims++
		}
	}
	if claims != 1 {
		t.Fatalf("expected one moveTo into (2,0), got %d: %+v", claims, tb.Moves)
	}
	if tb.HexOf("L0") != (HexCoord{0, 0}) {
		t.Fatal("deferred moves must not change positions")
	}
	if id, ok := tb.Battle.Occupancy().ReservedBy(HexCoord{2, 0}); !ok || id != 0 {
		t.Fatalf("(2,0) should be reserved by L0, got %d %v", id, ok)
	}
	// Reservations last one tick only.
	tb.Battle.Occupancy().Reserve(HexCoord{7, 0}, 2)
	tb.RunTicks(1)
	if _, ok := tb.Battle.Occupancy().ReservedBy(HexCoord{7, 0}); ok {
		t.Fatal("stale reservation survived into the next tick")
	}
}

func TestBattle_SetUnitPositionCompletesDeferredMove(t *testing.T) {
	tb := sharedDestination(WithDeferredMoves())
	tb.RunTicks(1)
	if len(tb.Moves) == 0 {
		t.Fatal("expected a move command")
	}
	m := tb.Moves[0]
	if err := tb.Battle.SetUnitPosition(m.ID, m.Pos); err != nil {
		t.Fatalf("SetUnitPosition: %v", err)
	}
	if c, _ := tb.Battle.UnitHex(m.ID); c != m.To {
		t.Fatalf("unit at %s, want %s", c, m.To)
	}
	tile, _ := tb.Battle.Grid().Tile(m.To)
	if !tile.Occupied {
		t.Fatal("destination not flagged after position report")
	}
	if err := tb.Battle.SetUnitPosition(99, Vec3{}); !errors.Is(err, ErrUnknownUnit) {
		t.Fatalf("expected ErrUnknownUnit, got %v", err)
	}
}

func TestBattle_SeparatedArmiesDrawAtTurnLimit(t *testing.T) {
	tb := NewTestBattle(
		WithGrid(6, 1),
		WithMaxTurns(5),
		WithMissing(HexCoord{2, 0}, HexCoord{3, 0}, HexCoord{4, 0}),
		WithLeftUnit("L0", 0, 0, 10, 1),
		WithRightUnit("R0", 5, 0, 10, 1),
	)
	for i := 1; i <= 4; i++ {
		if st := tb.Battle.Tick(); st != StatusInProgress {
			t.Fatalf("ended early at turn %d", i)
		}
	}
	if st := tb.Battle.Tick(); st != StatusEnded {
		t.Fatalf("expected end at turn 5, status %s", st)
	}
	res, ok := tb.Battle.Result()
	if !ok || res.Outcome != OutcomeDraw || res.Turn != 5 || res.Description != ReasonTurnLimit {
		t.Fatalf("unexpected result %+v", res)
	}
	if tb.SimLog.CountCategory("path", "blocked") != 10 {
		t.Fatalf("both units should be blocked every turn:\n%s", tb.SimLog.Format())
	}
}

func TestBattle_ObjectiveCaptureShortCircuitsTick(t *testing.T) {
	tb := NewTestBattle(
		WithCastle(HexCoord{5, 3}),
		WithLeftUnit("L0", 0, 0, 10, 5),
		WithLeftUnit("L1", 3, 3, 10, 1),
		WithLeftUnit("L2", 0, 3, 10, 1),
		WithRightUnit("R0", 1, 0, 1, 1),
	)
	tb.RunTicks(1)

	res, ok := tb.Battle.Result()
	if !ok {
		t.Fatalf("battle should have ended:\n%s", tb.SimLog.Format())
	}
	if res.Outcome != OutcomeLeftVictory || res.Description != ReasonObjective || res.Capturer != "L1" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Turn != 1 {
		t.Fatalf("capture should happen on turn 1, got %d", res.Turn)
	}
	if len(tb.Moves) != 0 {
		t.Fatalf("L2 must not act after the capture: %+v", tb.Moves)
	}
	if len(tb.Ended) != 1 {
		t.Fatalf("OnBattleEnded fired %d times", len(tb.Ended))
	}
}

func TestBattle_EliminationWins(t *testing.T) {
	tb := NewTestBattle(
		WithLeftUnit("L0", 2, 2, 10, 5),
		WithRightUnit("R0", 3, 2, 3, 1),
	)
	tb.RunTicks(1)
	res, ok := tb.Battle.Result()
	if !ok || res.Outcome != OutcomeLeftVictory || res.Description != ReasonElimination {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.LeftSurvivors != 1 || res.RightSurvivors != 0 || res.RightTotal != 1 {
		t.Fatalf("survivor counts wrong: %+v", res)
	}
}

func TestBattle_DamageClampsAndRemovesDeadAtOnce(t *testing.T) {
	tb := NewTestBattle(
		WithLeftUnit("L0", 2, 2, 10, 50),
		WithRightUnit("R0", 3, 2, 10, 7),
		WithRightUnit("R1", 5, 0, 10, 1),
	)
	tb.RunTicks(1)

	r0, _ := tb.ByLabel("R0")
	if r0.Health != 0 || r0.Alive {
		t.Fatalf("R0 should be dead at 0 health, got %+v", r0)
	}
	l0, _ := tb.ByLabel("L0")
	if l0.Health != 10 {
		t.Fatalf("dead R0 must not act later in the tick, L0 health %d", l0.Health)
	}
	if len(tb.Deaths) != 1 || tb.Deaths[0] != r0.ID {
		t.Fatalf("expected one death event for R0, got %v", tb.Deaths)
	}
	if tb.Battle.Alive(TeamRight) != 1 {
		t.Fatalf("R1 should remain, alive=%d", tb.Battle.Alive(TeamRight))
	}
	tile, _ := tb.Battle.Grid().Tile(HexCoord{3, 2})
	if tile.Occupied {
		t.Fatal("dead unit's tile still flagged")
	}
}

func TestBattle_MutualAnnihilationIsDraw(t *testing.T) {
	tb := NewTestBattle(
		WithLeftUnit("L0", 0, 2, 10, 1),
		WithRightUnit("R0", 5, 2, 10, 1),
	)
	for _, u := range tb.Battle.Units() {
		if err := tb.Battle.SetUnitHealth(u.ID, 0); err != nil {
			t.Fatalf("SetUnitHealth: %v", err)
		}
	}
	tb.RunTicks(1)
	res, ok := tb.Battle.Result()
	if !ok || res.Outcome != OutcomeDraw || res.Description != ReasonAnnihilation || res.Turn != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestBattle_RunsToCompletion(t *testing.T) {
	tb := NewTestBattle(
		WithGrid(16, 4),
		WithMaxTurns(200),
		WithCastle(HexCoord{15, 3}),
		WithLeftUnit("L0", 1, 2, 10, 3),
		WithLeftUnit("L1", 2, 3, 10, 3),
		WithRightUnit("R0", 13, 2, 10, 3),
		WithRightUnit("R1", 14, 3, 10, 3),
	)
	turn := tb.RunUntil(func(tb *TestBattle) bool { return tb.Battle.Status() == StatusEnded }, 200)
	if turn < 0 {
		t.Fatalf("battle never ended:\n%s", tb.Summary())
	}
	if len(tb.Ended) != 1 {
		t.Fatalf("OnBattleEnded fired %d times", len(tb.Ended))
	}
	if st := tb.Battle.Tick(); st != StatusEnded || tb.Battle.Turn() != turn {
		t.Fatal("ticking an ended battle must do nothing")
	}
}

type failingMap struct{ err error }

func (f failingMap) LoadMap() (MapSpec, error) { return MapSpec{}, f.err }

func TestBattle_StartErrors(t *testing.T) {
	units := UnitList{{Team: TeamLeft, Health: 5}}

	b := NewBattle(DefaultConfig(), nil, units)
	if err := b.Start(); !errors.Is(err, ErrNoMapSource) {
		t.Fatalf("expected ErrNoMapSource, got %v", err)
	}

	b = NewBattle(DefaultConfig(), MapSpec{}, units)
	if err := b.Start(); !errors.Is(err, ErrInvalidMap) {
		t.Fatalf("expected ErrInvalidMap, got %v", err)
	}
	if b.Status() != StatusNotStarted || b.Grid() != nil {
		t.Fatal("failed start must leave no partial state")
	}

	boom := errors.New("registry offline")
	b = NewBattle(DefaultConfig(), failingMap{boom}, units)
	if err := b.Start(); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
}

func TestBattle_StartWithEmptyRegistryWarns(t *testing.T) {
	var buf bytes.Buffer
	b := NewBattle(DefaultConfig(), StandardMap(6, 4, 1), UnitList{{Team: TeamLeft, Health: 0}},
		WithLogger(zerolog.New(&buf)))
	if err := b.Start(); err != nil {
		t.Fatalf("empty registry is not an error: %v", err)
	}
	if b.Status() != StatusNotStarted {
		t.Fatalf("status %s, want not_started", b.Status())
	}
	if !strings.Contains(buf.String(), "unit registry is empty") {
		t.Fatalf("expected warning, log was %q", buf.String())
	}
	if st := b.Tick(); st != StatusNotStarted {
		t.Fatal("tick before start must be a no-op")
	}
}

func TestBattle_StartIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	tb := NewTestBattle(
		WithTestLogger(zerolog.New(&buf)),
		WithLeftUnit("L0", 0, 2, 10, 1),
		WithRightUnit("R0", 5, 2, 10, 1),
	)
	tb.RunTicks(2)
	if err := tb.Battle.Start(); err != nil {
		t.Fatalf("second start: %v", err)
	}
	if tb.Battle.Turn() != 2 || tb.Battle.Status() != StatusInProgress {
		t.Fatal("second start must not reset the battle")
	}
	if !strings.Contains(buf.String(), "already in progress") {
		t.Fatalf("expected warning, log was %q", buf.String())
	}
}

func TestBattle_ForceEnd(t *testing.T) {
	tb := NewTestBattle(
		WithLeftUnit("L0", 0, 2, 10, 1),
		WithRightUnit("R0", 5, 2, 10, 1),
	)
	tb.RunTicks(1)
	if !tb.Battle.ForceEnd(OutcomeRightVictory) {
		t.Fatal("ForceEnd on a running battle should succeed")
	}
	res, ok := tb.Battle.Result()
	if !ok || res.Outcome != OutcomeRightVictory || res.Description != ReasonForced {
		t.Fatalf("unexpected result %+v", res)
	}
	if tb.Battle.ForceEnd(OutcomeLeftVictory) {
		t.Fatal("second ForceEnd should be ignored")
	}
	if err := tb.Battle.Start(); !errors.Is(err, ErrBattleEnded) {
		t.Fatalf("expected ErrBattleEnded, got %v", err)
	}
	if len(tb.Ended) != 1 {
		t.Fatalf("OnBattleEnded fired %d times", len(tb.Ended))
	}
}

func TestBattle_ExplicitMeter(t *testing.T) {
	b := NewBattle(DefaultConfig(), StandardMap(6, 4, 1), UnitList{
		{Team: TeamLeft, Position: NewLayout(6, 4, 1).HexToWorld(HexCoord{0, 2}), Health: 3, AttackDamage: 1},
		{Team: TeamRight, Position: NewLayout(6, 4, 1).HexToWorld(HexCoord{5, 2}), Health: 3, AttackDamage: 1},
	}, WithMeter(noop.NewMeterProvider().Meter("test")))
	if err := b.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	for b.Tick() == StatusInProgress {
	}
	if _, ok := b.Result(); !ok {
		t.Fatal("battle should finish")
	}
	units := b.Units()
	if units[0].Label != "L0" || units[1].Label != "R1" {
		t.Fatalf("default labels wrong: %s %s", units[0].Label, units[1].Label)
	}
}
