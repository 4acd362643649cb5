package viewer

import "github.com/Garsondee/hexbattle/internal/game"

// glide animates one unit from its shown position to a destination over a
// fixed number of frames.
type glide struct {
	from, to game.Vec3
	frames   int
	elapsed  int
}

func (g *glide) done() bool { return g.elapsed >= g.frames }

// step advances one frame and returns the interpolated position.
func (g *glide) step() game.Vec3 {
	if g.elapsed < g.frames {
		g.elapsed++
	}
	t := 1.0
	if g.frames > 0 {
		t = float64(g.elapsed) / float64(g.frames)
	}
	return game.Vec3{
		X: g.from.X + (g.to.X-g.from.X)*t,
		Y: g.from.Y + (g.to.Y-g.from.Y)*t,
		Z: g.from.Z + (g.to.Z-g.from.Z)*t,
	}
}

// mover owns the displayed positions and reports finished glides back to
// the battle, standing in for a physics layer.
type mover struct {
	shown  map[game.UnitID]game.Vec3
	glides map[game.UnitID]*glide
	frames int
	report func(id game.UnitID, pos game.Vec3)
}

func newMover(frames int, report func(game.UnitID, game.Vec3)) *mover {
	if frames < 1 {
		frames = 1
	}
	return &mover{
		shown:  make(map[game.UnitID]game.Vec3),
		glides: make(map[game.UnitID]*glide),
		frames: frames,
		report: report,
	}
}

func (m *mover) place(id game.UnitID, pos game.Vec3) {
	m.shown[id] = pos
	delete(m.glides, id)
}

func (m *mover) moveTo(id game.UnitID, to game.Vec3) {
	m.glides[id] = &glide{from: m.shown[id], to: to, frames: m.frames}
}

func (m *mover) remove(id game.UnitID) {
	delete(m.shown, id)
	delete(m.glides, id)
}

// advance steps every glide by one frame.
func (m *mover) advance() {
	for id, g := range m.glides {
		m.shown[id] = g.step()
		if g.done() {
			delete(m.glides, id)
			m.report(id, g.to)
		}
	}
}

// settle completes every glide at once. It runs before each tick so the
// battle always sees units on their destinations.
func (m *mover) settle() {
	for id, g := range m.glides {
		m.shown[id] = g.to
		delete(m.glides, id)
		m.report(id, g.to)
	}
}

func (m *mover) moving() int { return len(m.glides) }
