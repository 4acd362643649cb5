package game

import (
	"github.com/rs/zerolog"
)

// TestBattle is a headless battle harness used by tests and by tooling that
// needs small hand-built fights. Units are placed by hex coordinate and the
// battle is started by NewTestBattle.
type TestBattle struct {
	Width   int
	Height  int
	HexSize float64
	Config  Config
	Battle  *Battle
	SimLog  *SimLog
	Moves   []MoveEvent
	Deaths  []UnitID
	Ended   []BattleOutcomeReason

	missing  []HexCoord
	castles  []HexCoord
	units    UnitList
	logger   zerolog.Logger
	startErr error
}

// MoveEvent is one moveTo command observed through the OnMove hook.
type MoveEvent struct {
	ID  UnitID
	To  HexCoord
	Pos Vec3
}

// battleOptionKind controls the pass in which an option is applied.
type battleOptionKind int

const (
	battleOptInfra battleOptionKind = iota // grid size, holes, castles, config — applied first
	battleOptUnit                          // add units — applied once the layout is known
)

// BattleOption is a builder function applied to a TestBattle during construction.
type BattleOption struct {
	kind battleOptionKind
	fn   func(*TestBattle)
}

// WithGrid sets the grid dimensions.
func WithGrid(w, h int) BattleOption {
	return BattleOption{battleOptInfra, func(tb *TestBattle) {
		tb.Width = w
		tb.Height = h
	}}
}

// WithMissing removes tiles from the otherwise full grid.
func WithMissing(coords ...HexCoord) BattleOption {
	return BattleOption{battleOptInfra, func(tb *TestBattle) {
		tb.missing = append(tb.missing, coords...)
	}}
}

// WithCastle marks castle tiles. Without it the grid has no castles, which
// keeps path tests free of obstacles.
func WithCastle(coords ...HexCoord) BattleOption {
	return BattleOption{battleOptInfra, func(tb *TestBattle) {
		tb.castles = append(tb.castles, coords...)
	}}
}

// WithMaxTurns sets the turn ceiling.
func WithMaxTurns(n int) BattleOption {
	return BattleOption{battleOptInfra, func(tb *TestBattle) {
		tb.Config.MaxTurns = n
	}}
}

// WithHeuristic selects the planner's distance estimate.
func WithHeuristic(h Heuristic) BattleOption {
	return BattleOption{battleOptInfra, func(tb *TestBattle) {
		tb.Config.Heuristic = h
	}}
}

// WithDeferredMoves disables instant moves so positions only change through
// SetUnitPosition.
func WithDeferredMoves() BattleOption {
	return BattleOption{battleOptInfra, func(tb *TestBattle) {
		tb.Config.InstantMoves = false
	}}
}

// WithVerbose enables per-unit targeting entries in the SimLog.
func WithVerbose(v bool) BattleOption {
	return BattleOption{battleOptInfra, func(tb *TestBattle) {
		tb.SimLog = NewSimLog(v)
	}}
}

// WithTestLogger routes engine logs to l.
func WithTestLogger(l zerolog.Logger) BattleOption {
	return BattleOption{battleOptInfra, func(tb *TestBattle) {
		tb.logger = l
	}}
}

// WithLeftUnit adds a left-team unit standing on (x,y).
func WithLeftUnit(label string, x, y, health, attack int) BattleOption {
	return BattleOption{battleOptUnit, func(tb *TestBattle) {
		tb.addUnit(label, TeamLeft, HexCoord{X: x, Y: y}, health, attack)
	}}
}

// WithRightUnit adds a right-team unit standing on (x,y).
func WithRightUnit(label string, x, y, health, attack int) BattleOption {
	return BattleOption{battleOptUnit, func(tb *TestBattle) {
		tb.addUnit(label, TeamRight, HexCoord{X: x, Y: y}, health, attack)
	}}
}

// NewTestBattle constructs and starts a battle from the given options in
// ordered passes:
//  1. Infrastructure (grid size, holes, castles, config, verbose)
//  2. Units
//  3. Start
func NewTestBattle(opts ...BattleOption) *TestBattle {
	tb := &TestBattle{
		Width:   6,
		Height:  4,
		HexSize: 1,
		Config:  DefaultConfig(),
		SimLog:  NewSimLog(false),
		logger:  zerolog.Nop(),
	}
	for _, o := range opts {
		if o.kind == battleOptInfra {
			o.fn(tb)
		}
	}
	for _, o := range opts {
		if o.kind == battleOptUnit {
			o.fn(tb)
		}
	}

	spec := StandardMap(tb.Width, tb.Height, tb.HexSize)
	spec = WithCastles(spec, tb.castles...)
	spec = WithoutTiles(spec, tb.missing...)

	layout := NewLayout(tb.Width, tb.Height, tb.HexSize)
	tb.Battle = NewBattle(tb.Config, spec, tb.units,
		WithLogger(tb.logger),
		WithSimLog(tb.SimLog),
		WithHooks(Hooks{
			OnMove: func(id UnitID, pos Vec3) {
				tb.Moves = append(tb.Moves, MoveEvent{ID: id, To: layout.WorldToHex(pos), Pos: pos})
			},
			OnDeath:       func(id UnitID) { tb.Deaths = append(tb.Deaths, id) },
			OnBattleEnded: func(r BattleOutcomeReason) { tb.Ended = append(tb.Ended, r) },
		}),
	)
	tb.startErr = tb.Battle.Start()
	return tb
}

func (tb *TestBattle) addUnit(label string, team Team, c HexCoord, health, attack int) {
	layout := NewLayout(tb.Width, tb.Height, tb.HexSize)
	tb.units = append(tb.units, UnitSpec{
		Label:        label,
		Team:         team,
		Position:     layout.HexToWorld(c),
		Health:       health,
		AttackDamage: attack,
	})
}

// StartErr returns the error from the initial Start call.
func (tb *TestBattle) StartErr() error { return tb.startErr }

// RunTicks advances the battle n ticks or until it ends.
func (tb *TestBattle) RunTicks(n int) Status {
	for i := 0; i < n; i++ {
		if tb.Battle.Tick() == StatusEnded {
			break
		}
	}
	return tb.Battle.Status()
}

// RunUntil advances up to maxTicks, stopping early if predicate returns
// true. Returns the turn at which the predicate was satisfied, or -1.
func (tb *TestBattle) RunUntil(predicate func(*TestBattle) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		tb.Battle.Tick()
		if predicate(tb) {
			return tb.Battle.Turn()
		}
		if tb.Battle.Status() == StatusEnded {
			break
		}
	}
	return -1
}

// ByLabel finds a unit record by label.
func (tb *TestBattle) ByLabel(label string) (UnitRecord, bool) {
	for _, u := range tb.Battle.Units() {
		if u.Label == label {
			return u, true
		}
	}
	return UnitRecord{}, false
}

// HexOf returns the current coordinate of the unit with the given label.
func (tb *TestBattle) HexOf(label string) HexCoord {
	u, ok := tb.ByLabel(label)
	if !ok {
		return HexCoord{X: -1, Y: -1}
	}
	c, _ := tb.Battle.UnitHex(u.ID)
	return c
}

// Summary is the SimLog summary at the current turn.
func (tb *TestBattle) Summary() string {
	return tb.SimLog.Summary(tb.Battle.Turn(), tb.Battle.Units())
}
