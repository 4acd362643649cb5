// Package viewer renders a running battle with ebiten.
package viewer

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/hexbattle/internal/game"
)

// borderWidth is the pixel gap between the window edge and the map.
const borderWidth = 48

// DefaultTicksPerTurn is the number of frames between battle ticks.
const DefaultTicksPerTurn = 30

var (
	bgColor      = color.RGBA{R: 12, G: 14, B: 12, A: 255}
	leftZone     = color.RGBA{R: 40, G: 62, B: 44, A: 255}
	rightZone    = color.RGBA{R: 52, G: 50, B: 38, A: 255}
	castleColor  = color.RGBA{R: 200, G: 170, B: 60, A: 255}
	edgeColor    = color.RGBA{R: 90, G: 110, B: 140, A: 120}
	leftColor    = color.RGBA{R: 220, G: 70, B: 60, A: 255}
	rightColor   = color.RGBA{R: 60, G: 120, B: 230, A: 255}
	hudColor     = color.RGBA{R: 210, G: 220, B: 210, A: 255}
	reservedRing = color.RGBA{R: 255, G: 255, B: 255, A: 160}
)

// Factory builds a fresh, unstarted battle wired to the given hooks.
type Factory func(hooks game.Hooks) *game.Battle

// Viewer implements ebiten.Game.
type Viewer struct {
	factory      Factory
	log          zerolog.Logger
	battle       *game.Battle
	mover        *mover
	result       *game.BattleOutcomeReason
	startErr     error
	ticksPerTurn int

	width, height int
	scale         float64

	paused     bool
	stepOnce   bool
	showEdges  bool
	showCoords bool
	frame      int
	prevKeys   map[ebiten.Key]bool
}

// New creates a viewer and starts its first battle. A battle tick runs
// every ticksPerTurn frames.
func New(factory Factory, width, height, ticksPerTurn int, log zerolog.Logger) *Viewer {
	if ticksPerTurn < 2 {
		ticksPerTurn = DefaultTicksPerTurn
	}
	v := &Viewer{
		factory:      factory,
		log:          log,
		ticksPerTurn: ticksPerTurn,
		width:        width,
		height:       height,
		showEdges:    true,
		prevKeys:     make(map[ebiten.Key]bool),
	}
	v.restart()
	return v
}

func (v *Viewer) restart() {
	v.result = nil
	v.frame = 0
	// Glides take half a turn so units arrive well before the next tick.
	v.mover = newMover(v.ticksPerTurn/2, func(id game.UnitID, pos game.Vec3) {
		if err := v.battle.SetUnitPosition(id, pos); err != nil {
			v.log.Warn().Err(err).Int("unit", int(id)).Msg("Position report rejected")
		}
	})
	v.battle = v.factory(game.Hooks{
		OnMove: func(id game.UnitID, to game.Vec3) { v.mover.moveTo(id, to) },
		OnDeath: func(id game.UnitID) {
			v.mover.remove(id)
		},
		OnBattleEnded: func(r game.BattleOutcomeReason) {
			v.result = &r
			v.log.Info().Str("result", r.String()).Msg("Battle over")
		},
	})
	v.startErr = v.battle.Start()
	if v.startErr == nil && v.battle.Status() != game.StatusInProgress {
		v.startErr = errors.New("no live units")
	}
	if v.startErr != nil {
		v.log.Error().Err(v.startErr).Msg("Battle failed to start")
		return
	}
	for _, u := range v.battle.Units() {
		if u.Alive {
			v.mover.place(u.ID, u.Position)
		}
	}
	v.fitScale()
}

func (v *Viewer) fitScale() {
	l := v.battle.Grid().Layout()
	maxX := float64(l.Width) * l.XOffset
	maxZ := float64(l.Height)*l.ZOffset + l.ZOffset/2
	sx := float64(v.width-2*borderWidth) / maxX
	sz := float64(v.height-3*borderWidth) / maxZ
	v.scale = min(sx, sz)
}

// toScreen maps world X/Z onto the window with row 0 at the bottom.
func (v *Viewer) toScreen(p game.Vec3) (float32, float32) {
	x := float64(borderWidth) + p.X*v.scale
	y := float64(v.height-borderWidth) - p.Z*v.scale
	return float32(x), float32(y)
}

func (v *Viewer) Update() error {
	v.handleInput()
	if v.startErr != nil {
		return nil
	}
	v.mover.advance()

	if v.battle.Status() != game.StatusInProgress {
		return nil
	}
	if v.paused && !v.stepOnce {
		return nil
	}
	v.frame++
	if v.frame < v.ticksPerTurn && !v.stepOnce {
		return nil
	}
	v.frame = 0
	v.stepOnce = false
	v.mover.settle()
	v.battle.Tick()
	return nil
}

func (v *Viewer) pressed(k ebiten.Key, cur map[ebiten.Key]bool) bool {
	cur[k] = ebiten.IsKeyPressed(k)
	return cur[k] && !v.prevKeys[k]
}

// handleInput processes keypresses (edge-triggered).
func (v *Viewer) handleInput() {
	cur := map[ebiten.Key]bool{}
	if v.pressed(ebiten.KeySpace, cur) {
		v.paused = !v.paused
	}
	if v.pressed(ebiten.KeyPeriod, cur) {
		v.stepOnce = true
	}
	if v.pressed(ebiten.KeyN, cur) {
		v.showEdges = !v.showEdges
	}
	if v.pressed(ebiten.KeyC, cur) {
		v.showCoords = !v.showCoords
	}
	if v.pressed(ebiten.KeyR, cur) {
		v.restart()
	}
	v.prevKeys = cur
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	if v.startErr != nil {
		text.Draw(screen, "start failed: "+v.startErr.Error(), basicfont.Face7x13, borderWidth, borderWidth, hudColor)
		return
	}
	g := v.battle.Grid()
	radius := float32(v.scale * g.Layout().XOffset * 0.45)

	if v.showEdges {
		for _, e := range g.Edges() {
			x0, y0 := v.toScreen(g.Layout().HexToWorld(e[0]))
			x1, y1 := v.toScreen(g.Layout().HexToWorld(e[1]))
			vector.StrokeLine(screen, x0, y0, x1, y1, 1, edgeColor, true)
		}
	}

	occ := v.battle.Occupancy()
	for _, c := range g.Coords() {
		tile, _ := g.Tile(c)
		x, y := v.toScreen(g.Layout().HexToWorld(c))
		fill := leftZone
		if tile.Zone == game.ZoneRight {
			fill = rightZone
		}
		vector.DrawFilledCircle(screen, x, y, radius, fill, true)
		if tile.Castle {
			vector.StrokeCircle(screen, x, y, radius, 3, castleColor, true)
		}
		if _, ok := occ.ReservedBy(c); ok {
			vector.StrokeCircle(screen, x, y, radius*0.8, 1, reservedRing, true)
		}
		if v.showCoords {
			text.Draw(screen, c.String(), basicfont.Face7x13, int(x)-17, int(y)+int(radius)+12, hudColor)
		}
	}

	for _, u := range v.battle.Units() {
		if !u.Alive {
			continue
		}
		pos, ok := v.mover.shown[u.ID]
		if !ok {
			pos = u.Position
		}
		x, y := v.toScreen(pos)
		col := leftColor
		if u.Team == game.TeamRight {
			col = rightColor
		}
		vector.DrawFilledCircle(screen, x, y, radius*0.55, col, true)
		text.Draw(screen, fmt.Sprintf("%s %d", u.Label, u.Health), basicfont.Face7x13, int(x)-14, int(y)-int(radius*0.6)-4, hudColor)
	}

	v.drawHUD(screen)
}

func (v *Viewer) drawHUD(screen *ebiten.Image) {
	status := fmt.Sprintf("turn %d/%d  left %d  right %d",
		v.battle.Turn(), v.battle.MaxTurns(), v.battle.Alive(game.TeamLeft), v.battle.Alive(game.TeamRight))
	if v.paused {
		status += "  [paused]"
	}
	text.Draw(screen, status, basicfont.Face7x13, borderWidth, 24, hudColor)
	text.Draw(screen, "space pause  . step  r restart  n edges  c coords", basicfont.Face7x13, borderWidth, 40, hudColor)
	if v.result != nil {
		text.Draw(screen, v.result.String(), basicfont.Face7x13, v.width/2-140, 24, castleColor)
	}
}

func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.width, v.height
}
