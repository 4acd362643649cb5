package game

import (
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Status is the lifecycle state of a Battle.
type Status int

const (
	StatusNotStarted Status = iota
	StatusInProgress
	StatusEnded
)

func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not_started"
	case StatusInProgress:
		return "in_progress"
	case StatusEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Config holds the engine tunables.
type Config struct {
	MaxTurns      int
	NeighborLimit float64 // multiple of hex size
	Heuristic     Heuristic
	// InstantMoves snaps a unit onto its destination when a move is issued.
	// Drivers that animate movement turn this off and report positions back
	// through SetUnitPosition.
	InstantMoves bool
}

// DefaultConfig returns the stock engine settings.
func DefaultConfig() Config {
	return Config{
		MaxTurns:      100,
		NeighborLimit: DefaultNeighborLimit,
		Heuristic:     HeuristicWorld,
		InstantMoves:  true,
	}
}

// Hooks receive the engine's output commands. Any field may be nil.
type Hooks struct {
	OnMove        func(id UnitID, to Vec3)
	OnDamage      func(id UnitID, amount int)
	OnDeath       func(id UnitID)
	OnBattleEnded func(result BattleOutcomeReason)
}

// Option configures a Battle.
type Option func(*Battle)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Battle) { b.log = l }
}

// WithHooks installs output command callbacks.
func WithHooks(h Hooks) Option {
	return func(b *Battle) { b.hooks = h }
}

// WithMeter overrides the global OpenTelemetry meter.
func WithMeter(m metric.Meter) Option {
	return func(b *Battle) { b.meter = m }
}

// WithSimLog replaces the default (non-verbose) battle history.
func WithSimLog(sl *SimLog) Option {
	return func(b *Battle) { b.simLog = sl }
}

// Battle is one match. It is driven entirely by Start and Tick and is not
// safe for concurrent use; run independent battles on separate goroutines.
type Battle struct {
	cfg     Config
	mapSrc  MapSource
	unitSrc UnitSource

	grid    *Grid
	units   *roster
	occ     *Occupancy
	planner *Planner

	turn   int
	status Status
	result BattleOutcomeReason

	hooks   Hooks
	log     zerolog.Logger
	meter   metric.Meter
	metrics *battleMetrics
	simLog  *SimLog
}

// NewBattle prepares a battle over the given registries. Nothing is read
// from them until Start.
func NewBattle(cfg Config, maps MapSource, units UnitSource, opts ...Option) *Battle {
	if cfg.NeighborLimit <= 0 {
		cfg.NeighborLimit = DefaultNeighborLimit
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = DefaultConfig().MaxTurns
	}
	b := &Battle{
		cfg:     cfg,
		mapSrc:  maps,
		unitSrc: units,
		log:     zerolog.Nop(),
		meter:   meter(),
		simLog:  NewSimLog(false),
	}
	for _, o := range opts {
		o(b)
	}
	bm, err := newBattleMetrics(b.meter)
	if err != nil {
		b.log.Warn().Err(err).Msg("Metrics unavailable, counting disabled")
		bm, _ = newBattleMetrics(noop.NewMeterProvider().Meter(instrumentationName))
	}
	b.metrics = bm
	return b
}

// Start builds the grid (first call only), snapshots the unit registry and
// begins the battle. A failed map load is returned and leaves the battle
// untouched. Starting a running battle or one with no live units is a
// logged no-op.
func (b *Battle) Start() error {
	switch b.status {
	case StatusInProgress:
		b.log.Warn().Int("turn", b.turn).Msg("Start ignored, battle already in progress")
		return nil
	case StatusEnded:
		return ErrBattleEnded
	}
	if b.mapSrc == nil {
		return fmt.Errorf("start battle: %w", ErrNoMapSource)
	}

	var specs []UnitSpec
	if b.unitSrc != nil {
		specs = b.unitSrc.Units()
	}
	live := 0
	for _, s := range specs {
		if s.Health > 0 {
			live++
		}
	}
	if live == 0 {
		b.log.Warn().Msg("Start ignored, unit registry is empty")
		return nil
	}

	if b.grid == nil {
		spec, err := b.mapSrc.LoadMap()
		if err != nil {
			return fmt.Errorf("load map: %w", err)
		}
		g, err := BuildGrid(spec, b.cfg.NeighborLimit)
		if err != nil {
			return fmt.Errorf("build grid: %w", err)
		}
		b.grid = g
	}

	b.units = newRoster(b.grid.layout, specs)
	b.occ = newOccupancy(b.grid, b.units)
	b.planner = newPlanner(b.grid, b.occ, b.cfg.Heuristic)
	b.occ.syncFlags()
	b.turn = 0
	b.status = StatusInProgress

	b.log.Info().
		Int("tiles", b.grid.Len()).
		Int("left", b.units.aliveCount(TeamLeft)).
		Int("right", b.units.aliveCount(TeamRight)).
		Int("maxTurns", b.cfg.MaxTurns).
		Msg("Battle started")
	b.simLog.addBattle(0, "battle", "start",
		fmt.Sprintf("%d tiles, left=%d right=%d", b.grid.Len(),
			b.units.aliveCount(TeamLeft), b.units.aliveCount(TeamRight)), float64(live))
	return nil
}

// Tick runs one turn: clear reservations, check for a decided battle, then
// let every live unit act once in registry order. Later units see the moves,
// reservations and deaths caused by earlier ones. Ticking a battle that is
// not in progress does nothing.
func (b *Battle) Tick() Status {
	if b.status != StatusInProgress {
		return b.status
	}
	b.occ.ClearReservations()
	if o, reason, ok := evaluateWin(b.units); ok {
		b.finish(o, reason, "")
		return b.status
	}

	b.turn++
	b.metrics.turn()
	for _, u := range b.units.snapshot() {
		if !u.Alive {
			continue
		}
		b.processUnit(u)
		if b.status != StatusInProgress {
			return b.status
		}
	}

	if o, reason, ok := evaluateWin(b.units); ok {
		b.finish(o, reason, "")
	} else if b.turn >= b.cfg.MaxTurns {
		b.finish(OutcomeDraw, ReasonTurnLimit, "")
	}
	return b.status
}

// processUnit is one unit's turn: pick a target, then fight if an enemy or
// the target is within reach, otherwise take one step along a shortest path.
func (b *Battle) processUnit(u *UnitRecord) {
	cur := b.units.hexOf(u)
	tgt := selectTarget(u, b.grid, b.units)
	b.simLog.AddVerbose(b.turn, u.Label, u.Team.String(), "target", "select",
		fmt.Sprintf("%s → %s", cur, tgt.Coord), float64(CubeDistance(cur, tgt.Coord)))

	neighbors := b.grid.Neighbors(cur)
	for _, n := range neighbors {
		if e, ok := b.units.occupantAt(n); ok && e.Team != u.Team {
			b.resolveCombat(u, n)
			return
		}
	}
	for _, n := range neighbors {
		if n == tgt.Coord {
			b.resolveCombat(u, n)
			return
		}
	}

	step, ok := b.planner.NextStep(cur, tgt.Coord, u.Team)
	if !ok {
		b.metrics.block()
		b.simLog.addUnit(b.turn, u, "path", "blocked", fmt.Sprintf("%s → %s", cur, tgt.Coord), 0)
		b.log.Debug().Int("turn", b.turn).Str("unit", u.Label).
			Stringer("from", cur).Stringer("to", tgt.Coord).Msg("No path, holding")
		return
	}
	b.moveUnit(u, cur, step)
}

// finish moves the battle to Ended exactly once.
func (b *Battle) finish(o BattleOutcome, reason, capturer string) {
	b.status = StatusEnded
	b.result = BattleOutcomeReason{
		Outcome:     o,
		Turn:        b.turn,
		Capturer:    capturer,
		Description: reason,
	}
	if b.units != nil {
		b.result.LeftSurvivors = b.units.aliveCount(TeamLeft)
		b.result.LeftTotal = b.units.total(TeamLeft)
		b.result.RightSurvivors = b.units.aliveCount(TeamRight)
		b.result.RightTotal = b.units.total(TeamRight)
	}
	if b.occ != nil {
		b.occ.ClearReservations()
	}

	b.log.Info().Int("turn", b.turn).Stringer("outcome", o).Str("reason", reason).Msg("Battle ended")
	b.simLog.addBattle(b.turn, "outcome", "ended", fmt.Sprintf("%s %s", o, reason), float64(b.turn))
	b.metrics.end(b.result)
	if b.hooks.OnBattleEnded != nil {
		b.hooks.OnBattleEnded(b.result)
	}
}

// ForceEnd ends the battle between ticks with the supplied outcome. It
// reports false when the battle had already ended.
func (b *Battle) ForceEnd(o BattleOutcome) bool {
	if b.status == StatusEnded {
		return false
	}
	if o == OutcomeInconclusive {
		o = OutcomeDraw
	}
	b.finish(o, ReasonForced, "")
	return true
}

// SetUnitPosition records an externally observed position for a unit.
func (b *Battle) SetUnitPosition(id UnitID, pos Vec3) error {
	u, err := b.lookup(id)
	if err != nil {
		return err
	}
	if !u.Alive {
		return nil
	}
	from := b.units.hexOf(u)
	u.Position = pos
	to := b.units.hexOf(u)
	if from != to {
		b.grid.setOccupied(from, b.units.occupiedByOther(from, id))
		b.grid.setOccupied(to, true)
	}
	return nil
}

// SetUnitHealth records an externally observed health value. Zero or less
// kills the unit.
func (b *Battle) SetUnitHealth(id UnitID, health int) error {
	u, err := b.lookup(id)
	if err != nil {
		return err
	}
	if !u.Alive {
		return nil
	}
	u.Health = max(0, health)
	if u.Health == 0 {
		b.kill(u, nil)
	}
	return nil
}

func (b *Battle) lookup(id UnitID) (*UnitRecord, error) {
	if b.units == nil {
		return nil, fmt.Errorf("%w: %d (battle not started)", ErrUnknownUnit, id)
	}
	u, ok := b.units.get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownUnit, id)
	}
	return u, nil
}

// SelectTarget reports what unit id would aim for right now.
func (b *Battle) SelectTarget(id UnitID) (Target, error) {
	u, err := b.lookup(id)
	if err != nil {
		return Target{}, err
	}
	return selectTarget(u, b.grid, b.units), nil
}

// Status returns the lifecycle state.
func (b *Battle) Status() Status { return b.status }

// Turn returns the number of completed or in-flight turns.
func (b *Battle) Turn() int { return b.turn }

// MaxTurns returns the turn ceiling.
func (b *Battle) MaxTurns() int { return b.cfg.MaxTurns }

// Result returns the outcome once the battle has ended.
func (b *Battle) Result() (BattleOutcomeReason, bool) {
	return b.result, b.status == StatusEnded
}

// Grid returns the battle grid, or nil before the first successful Start.
func (b *Battle) Grid() *Grid { return b.grid }

// Occupancy returns the passability view, or nil before Start.
func (b *Battle) Occupancy() *Occupancy { return b.occ }

// SimLog returns the battle history.
func (b *Battle) SimLog() *SimLog { return b.simLog }

// Units returns a copy of every unit record, dead ones included, by id.
func (b *Battle) Units() []UnitRecord {
	if b.units == nil {
		return nil
	}
	out := make([]UnitRecord, len(b.units.all))
	for i, u := range b.units.all {
		out[i] = *u
	}
	return out
}

// Unit returns a copy of one unit record.
func (b *Battle) Unit(id UnitID) (UnitRecord, bool) {
	if b.units == nil {
		return UnitRecord{}, false
	}
	u, ok := b.units.get(id)
	if !ok {
		return UnitRecord{}, false
	}
	return *u, true
}

// UnitHex returns the coordinate derived from a unit's current position.
func (b *Battle) UnitHex(id UnitID) (HexCoord, bool) {
	if b.units == nil {
		return HexCoord{}, false
	}
	u, ok := b.units.get(id)
	if !ok {
		return HexCoord{}, false
	}
	return b.units.hexOf(u), true
}

// Alive returns the live unit count for a team.
func (b *Battle) Alive(t Team) int {
	if b.units == nil {
		return 0
	}
	return b.units.aliveCount(t)
}
